package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"payroll-portal/payroll-portal-backend/internal/auth"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UploadResult), args.Error(1)
}

func (m *MockService) Sign(ctx context.Context, req SignRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockService) GetPdfUrl(ctx context.Context, documentID, userID string, ttl time.Duration) (*PdfUrlResult, error) {
	args := m.Called(ctx, documentID, userID, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PdfUrlResult), args.Error(1)
}

func (m *MockService) ListByUserAndStatus(ctx context.Context, userID string, status *DocumentStatus, page, limit int) (*DocumentPage, error) {
	args := m.Called(ctx, userID, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DocumentPage), args.Error(1)
}

func (m *MockService) ExportToExcel(ctx context.Context, userID string) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newTestRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextUserID, "user-123")
		c.Set(auth.ContextUserEmail, "u@example.com")
	})
	handler := NewHandler(service, zap.NewNop())
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &ValidationError{Msg: "invalid period start"}, http.StatusBadRequest},
		{"mismatch", &MismatchError{Msg: "employee id does not match"}, http.StatusBadRequest},
		{"not found", &NotFoundError{Resource: "Document"}, http.StatusNotFound},
		{"already signed", ErrAlreadySigned, http.StatusConflict},
		{"wrong password", &auth.Error{Reason: auth.ReasonWrongPassword}, http.StatusUnauthorized},
		{"invariant violation", &InvariantViolationError{Msg: "missing signed path"}, http.StatusInternalServerError},
		{"store failure", &StoreError{Op: "insert document"}, http.StatusInternalServerError},
		{"storage failure", &StorageError{Op: "upload"}, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := new(MockService)
			service.On("Sign", mock.Anything, mock.AnythingOfType("documents.SignRequest")).Return(tc.err)

			body, _ := json.Marshal(gin.H{
				"password":              "hunter2!",
				"full_name":             "Maria Lopez",
				"identification_number": "CC-1020304050",
			})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/doc-1/sign", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			newTestRouter(service).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestSignHandlerBuildsRequestFromContext(t *testing.T) {
	service := new(MockService)
	var captured SignRequest
	service.On("Sign", mock.Anything, mock.AnythingOfType("documents.SignRequest")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(SignRequest) }).
		Return(nil)

	body, _ := json.Marshal(gin.H{
		"password":              "hunter2!",
		"full_name":             "Maria Lopez",
		"identification_number": "CC-1020304050",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/doc-1/sign", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent/1.0")
	rec := httptest.NewRecorder()

	newTestRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "doc-1", captured.DocumentID)
	assert.Equal(t, "user-123", captured.UserID)
	assert.Equal(t, "u@example.com", captured.UserEmail)
	assert.Equal(t, "test-agent/1.0", captured.UserAgent)
}

func TestGetPdfUrlValidatesTTL(t *testing.T) {
	service := new(MockService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1/url?ttl=99999", nil)
	rec := httptest.NewRecorder()
	newTestRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "GetPdfUrl", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	service := new(MockService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents?status=ARCHIVED", nil)
	rec := httptest.NewRecorder()
	newTestRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPassesFilters(t *testing.T) {
	service := new(MockService)
	signed := StatusSigned
	service.On("ListByUserAndStatus", mock.Anything, "user-123", &signed, 2, 5).
		Return(&DocumentPage{Data: []Document{}, Meta: Pagination{Page: 2, Limit: 5}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents?status=SIGNED&page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	newTestRouter(service).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}
