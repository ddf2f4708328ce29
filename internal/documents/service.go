package documents

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"payroll-portal/payroll-portal-backend/internal/auth"
	"payroll-portal/payroll-portal-backend/pkg/dates"
	"payroll-portal/payroll-portal-backend/pkg/pdf"
	"payroll-portal/payroll-portal-backend/pkg/security"
)

// CredentialVerifier re-authenticates the signer. The session token alone is
// not proof of current password possession, so signing asks again.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (*auth.Account, error)
}

type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
	Sign(ctx context.Context, req SignRequest) error
	GetPdfUrl(ctx context.Context, documentID, userID string, ttl time.Duration) (*PdfUrlResult, error)
	ListByUserAndStatus(ctx context.Context, userID string, status *DocumentStatus, page, limit int) (*DocumentPage, error)
	ExportToExcel(ctx context.Context, userID string) ([]byte, error)
}

type documentService struct {
	repo     Repository
	scoped   ScopedRepository
	storage  *StorageProvider
	renderer pdf.Renderer
	verifier CredentialVerifier
	logger   *zap.Logger
}

func NewService(repo Repository, scoped ScopedRepository, storage *StorageProvider, renderer pdf.Renderer, verifier CredentialVerifier, logger *zap.Logger) Service {
	return &documentService{
		repo:     repo,
		scoped:   scoped,
		storage:  storage,
		renderer: renderer,
		verifier: verifier,
		logger:   logger,
	}
}

// Upload registers a payroll PDF for one user and period. Identical retries
// are idempotent: the same (user, period, content hash) returns the original
// document and performs no writes.
func (s *documentService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	internalStart, err := dates.ToInternal(req.PeriodStart)
	if err != nil {
		return nil, &ValidationError{Msg: "invalid period start", Err: err}
	}
	internalEnd, err := dates.ToInternal(req.PeriodEnd)
	if err != nil {
		return nil, &ValidationError{Msg: "invalid period end", Err: err}
	}

	profile, err := s.repo.GetUserProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &NotFoundError{Resource: "User"}
	}
	if profile.EmployeeID != req.EmployeeID {
		return nil, &MismatchError{Msg: "employee id does not match the user's profile"}
	}

	startValue, _ := dates.ComparableValue(req.PeriodStart)
	endValue, _ := dates.ComparableValue(req.PeriodEnd)
	if startValue >= endValue {
		return nil, &ValidationError{Msg: "period start must be before period end"}
	}

	originalHash := security.Digest(req.Content)

	existing, err := s.repo.GetByIdempotencyKey(ctx, req.UserID, internalStart, internalEnd, originalHash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.Info("Upload matched existing document",
			zap.String("document_id", existing.ID),
			zap.String("user_id", req.UserID))
		return &UploadResult{
			DocumentID:  existing.ID,
			Status:      existing.Status,
			PeriodStart: req.PeriodStart,
			PeriodEnd:   req.PeriodEnd,
			Idempotent:  true,
		}, nil
	}

	doc := &Document{
		ID:           uuid.New().String(),
		UserID:       req.UserID,
		EmployeeID:   req.EmployeeID,
		PeriodStart:  internalStart,
		PeriodEnd:    internalEnd,
		Status:       StatusPending,
		OriginalHash: originalHash,
		CreatedAt:    time.Now(),
		IsActive:     true,
	}
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	// The new row must exist before its predecessors point at it.
	if err := s.repo.SupersedeDocuments(ctx, req.UserID, internalStart, internalEnd, doc.ID); err != nil {
		return nil, err
	}

	key := s.storage.OriginalKey(req.UserID, doc.ID)
	if err := s.storage.Upload(ctx, key, req.Content); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateDocumentPath(ctx, doc.ID, key); err != nil {
		s.rollbackObject(ctx, key, "upload path update")
		return nil, err
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID),
		zap.String("user_id", req.UserID),
		zap.String("period_start", req.PeriodStart),
		zap.String("period_end", req.PeriodEnd))

	return &UploadResult{
		DocumentID:  doc.ID,
		Status:      StatusPending,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	}, nil
}

// Sign appends the visual signature block, stores the signed PDF and commits
// the signature row plus the status update. If the commit fails the signed
// object is discarded so storage and the record store never disagree.
func (s *documentService) Sign(ctx context.Context, req SignRequest) error {
	doc, err := s.scoped.GetDocumentByID(ctx, req.DocumentID, req.UserID)
	if err != nil {
		return err
	}
	if doc == nil {
		return &NotFoundError{Resource: "Document"}
	}
	if doc.Status == StatusSigned {
		return ErrAlreadySigned
	}

	if _, err := s.verifier.VerifyPassword(ctx, req.UserEmail, req.Password); err != nil {
		return err
	}

	original, err := s.storage.Download(ctx, doc.PdfOriginalPath)
	if err != nil {
		return err
	}
	originalHash := security.Digest(original)

	signedAt := time.Now()
	signedContent, err := s.renderer.AppendSignatureBlock(ctx, original, pdf.SignaturePayload{
		FullName:             req.FullName,
		IdentificationNumber: req.IdentificationNumber,
		SigningTime:          signedAt,
		IPAddress:            req.IP,
		OriginalHash:         originalHash,
	})
	if err != nil {
		return err
	}
	signedHash := security.Digest(signedContent)

	signedKey := s.storage.SignedKey(req.UserID, doc.ID)
	if err := s.storage.Upload(ctx, signedKey, signedContent); err != nil {
		return err
	}

	sig := &Signature{
		ID:                   uuid.New().String(),
		DocumentID:           doc.ID,
		Name:                 req.FullName,
		IdentificationNumber: req.IdentificationNumber,
		IP:                   req.IP,
		UserAgent:            req.UserAgent,
		HashSign:             signedHash,
		SignedAt:             signedAt,
	}
	if err := s.repo.CreateSignature(ctx, sig); err != nil {
		s.rollbackObject(ctx, signedKey, "signature insert")
		return err
	}

	if err := s.repo.MarkDocumentSigned(ctx, doc.ID, signedHash, signedAt, signedKey); err != nil {
		s.rollbackObject(ctx, signedKey, "signed status update")
		return err
	}

	s.logger.Info("Document signed",
		zap.String("document_id", doc.ID),
		zap.String("user_id", req.UserID),
		zap.String("ip", req.IP))
	return nil
}

// GetPdfUrl issues a time-limited download URL for the signed PDF when the
// document is signed, the original otherwise.
func (s *documentService) GetPdfUrl(ctx context.Context, documentID, userID string, ttl time.Duration) (*PdfUrlResult, error) {
	doc, err := s.scoped.GetDocumentByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &NotFoundError{Resource: "Document"}
	}

	key := doc.PdfOriginalPath
	pdfType := PdfTypeOriginal
	if doc.Status == StatusSigned {
		if doc.PdfSignedPath == nil || *doc.PdfSignedPath == "" {
			return nil, &InvariantViolationError{Msg: "signed document " + doc.ID + " has no signed pdf path"}
		}
		key = *doc.PdfSignedPath
		pdfType = PdfTypeSigned
	} else if key == "" {
		// Upload never completed; the caller must retry the upload.
		return nil, &NotFoundError{Resource: "Document PDF"}
	}

	url, err := s.storage.SignedURL(ctx, key, ttl)
	if err != nil {
		return nil, err
	}

	return &PdfUrlResult{
		DocumentID: doc.ID,
		URL:        url,
		ExpiresAt:  time.Now().Add(ttl),
		PdfType:    pdfType,
	}, nil
}

func (s *documentService) ListByUserAndStatus(ctx context.Context, userID string, status *DocumentStatus, page, limit int) (*DocumentPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	docs, total, err := s.repo.ListByUserAndStatus(ctx, userID, status, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &DocumentPage{
		Data: docs,
		Meta: Pagination{
			Total:       total,
			Page:        page,
			Limit:       limit,
			TotalPages:  totalPages,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// rollbackObject best-effort deletes an uploaded object after a later step
// failed. The root cause is what the caller sees; a failed delete is logged
// and never masks it.
func (s *documentService) rollbackObject(ctx context.Context, key, failedStep string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Rollback delete failed, object orphaned",
			zap.String("key", key),
			zap.String("failed_step", failedStep),
			zap.Error(err))
		return
	}
	s.logger.Info("Rolled back uploaded object",
		zap.String("key", key),
		zap.String("failed_step", failedStep))
}
