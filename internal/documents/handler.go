package documents

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"payroll-portal/payroll-portal-backend/internal/auth"
)

const maxUploadBytes = 15 << 20

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("/upload", h.Upload)
		docs.GET("", h.List)
		docs.GET("/export", h.Export)
		docs.GET("/:id/url", h.GetPdfUrl)
		docs.POST("/:id/sign", h.Sign)
	}
}

func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds the upload size limit"})
		return
	}

	employeeID, err := strconv.Atoi(c.PostForm("employee_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id must be an integer"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	result, err := h.service.Upload(c.Request.Context(), UploadRequest{
		UserID:      c.GetString(auth.ContextUserID),
		EmployeeID:  employeeID,
		PeriodStart: c.PostForm("period_start"),
		PeriodEnd:   c.PostForm("period_end"),
		Content:     content,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Idempotent {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (h *Handler) Sign(c *gin.Context) {
	var req struct {
		Password             string `json:"password" binding:"required"`
		FullName             string `json:"full_name" binding:"required"`
		IdentificationNumber string `json:"identification_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Sign(c.Request.Context(), SignRequest{
		DocumentID:           c.Param("id"),
		UserID:               c.GetString(auth.ContextUserID),
		UserEmail:            c.GetString(auth.ContextUserEmail),
		Password:             req.Password,
		FullName:             req.FullName,
		IdentificationNumber: req.IdentificationNumber,
		IP:                   c.ClientIP(),
		UserAgent:            c.Request.UserAgent(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "document signed"})
}

func (h *Handler) GetPdfUrl(c *gin.Context) {
	ttlSeconds, err := strconv.Atoi(c.DefaultQuery("ttl", "300"))
	if err != nil || ttlSeconds < 1 || ttlSeconds > 3600 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ttl must be between 1 and 3600 seconds"})
		return
	}

	result, err := h.service.GetPdfUrl(c.Request.Context(),
		c.Param("id"),
		c.GetString(auth.ContextUserID),
		time.Duration(ttlSeconds)*time.Second)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) List(c *gin.Context) {
	var status *DocumentStatus
	if raw := c.Query("status"); raw != "" {
		s := DocumentStatus(raw)
		switch s {
		case StatusPending, StatusSigned, StatusInvalidated:
			status = &s
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.service.ListByUserAndStatus(c.Request.Context(),
		c.GetString(auth.ContextUserID), status, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Export(c *gin.Context) {
	content, err := h.service.ExportToExcel(c.Request.Context(), c.GetString(auth.ContextUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("documents-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// respondError maps the error taxonomy to HTTP status codes. Internal
// failures are logged and reported without their underlying detail.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		mismatchErr   *MismatchError
		invariantErr  *InvariantViolationError
		authErr       *auth.Error
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &mismatchErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": mismatchErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.Is(err, ErrAlreadySigned):
		c.JSON(http.StatusConflict, gin.H{"error": ErrAlreadySigned.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authErr.Error()})
	case errors.As(err, &invariantErr):
		h.logger.Error("Data integrity fault", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal data inconsistency"})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
