package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository is the privileged record-store view. It bypasses row-level
// ownership and backs the workflow's writes and cross-user reads.
type Repository interface {
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
	GetByIdempotencyKey(ctx context.Context, userID, periodStart, periodEnd, originalHash string) (*Document, error)
	CreateDocument(ctx context.Context, doc *Document) error
	UpdateDocumentPath(ctx context.Context, id, path string) error
	SupersedeDocuments(ctx context.Context, userID, periodStart, periodEnd, excludeID string) error
	CreateSignature(ctx context.Context, sig *Signature) error
	MarkDocumentSigned(ctx context.Context, id, signedHash string, signedAt time.Time, signedPath string) error
	ListByUserAndStatus(ctx context.Context, userID string, status *DocumentStatus, page, limit int) ([]Document, int, error)
	DeleteOrphanedPending(ctx context.Context, cutoff time.Time) (int64, error)
}

// ScopedRepository is the ownership-scoped view used for user-initiated
// reads. A document owned by another user reads as absent, never as an
// error, so existence is not leaked.
type ScopedRepository interface {
	GetDocumentByID(ctx context.Context, id, userID string) (*Document, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

type scopedPostgresRepository struct {
	db *sqlx.DB
}

func NewScopedRepository(db *sqlx.DB) ScopedRepository {
	return &scopedPostgresRepository{db: db}
}

func (r *postgresRepository) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile
	err := r.db.GetContext(ctx, &profile,
		"SELECT user_id, employee_id, email, full_name FROM users WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get user profile", Err: err}
	}
	return &profile, nil
}

func (r *postgresRepository) GetByIdempotencyKey(ctx context.Context, userID, periodStart, periodEnd, originalHash string) (*Document, error) {
	var doc Document
	err := r.db.GetContext(ctx, &doc, `
		SELECT * FROM documents
		WHERE user_id = $1 AND period_start = $2 AND period_end = $3
		  AND original_hash = $4 AND is_active`,
		userID, periodStart, periodEnd, originalHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "idempotency lookup", Err: err}
	}
	return &doc, nil
}

func (r *postgresRepository) CreateDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			id, user_id, employee_id, period_start, period_end,
			pdf_original_path, status, original_hash, created_at, is_active
		) VALUES (
			:id, :user_id, :employee_id, :period_start, :period_end,
			:pdf_original_path, :status, :original_hash, :created_at, :is_active
		)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return &StoreError{Op: "insert document", Err: err}
	}
	return nil
}

func (r *postgresRepository) UpdateDocumentPath(ctx context.Context, id, path string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET pdf_original_path = $2 WHERE id = $1", id, path)
	if err != nil {
		return &StoreError{Op: "update document path", Err: err}
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &StoreError{Op: "update document path", Err: fmt.Errorf("document %s has no row", id)}
	}
	return nil
}

// SupersedeDocuments retires every other active document for the same user
// and period. superseded_by is written once and never overwritten; a signed
// document keeps its SIGNED status for the audit trail.
func (r *postgresRepository) SupersedeDocuments(ctx context.Context, userID, periodStart, periodEnd, excludeID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET superseded_by = $4,
		    is_active = FALSE,
		    status = CASE WHEN status = 'SIGNED' THEN status ELSE 'INVALIDATED' END
		WHERE user_id = $1 AND period_start = $2 AND period_end = $3
		  AND id <> $4 AND is_active AND superseded_by IS NULL`,
		userID, periodStart, periodEnd, excludeID)
	if err != nil {
		return &StoreError{Op: "supersede documents", Err: err}
	}
	return nil
}

func (r *postgresRepository) CreateSignature(ctx context.Context, sig *Signature) error {
	query := `
		INSERT INTO signatures (
			id, document_id, name, identification_number, ip, user_agent, hash_sign, signed_at
		) VALUES (
			:id, :document_id, :name, :identification_number, :ip, :user_agent, :hash_sign, :signed_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, sig); err != nil {
		return &StoreError{Op: "insert signature", Err: err}
	}
	return nil
}

func (r *postgresRepository) MarkDocumentSigned(ctx context.Context, id, signedHash string, signedAt time.Time, signedPath string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE documents
		SET status = 'SIGNED', signed_hash = $2, signed_at = $3, pdf_signed_path = $4
		WHERE id = $1`,
		id, signedHash, signedAt, signedPath)
	if err != nil {
		return &StoreError{Op: "mark document signed", Err: err}
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return &StoreError{Op: "mark document signed", Err: fmt.Errorf("document %s has no row", id)}
	}
	return nil
}

func (r *postgresRepository) ListByUserAndStatus(ctx context.Context, userID string, status *DocumentStatus, page, limit int) ([]Document, int, error) {
	whereClause := " WHERE user_id = $1"
	args := []interface{}{userID}
	if status != nil {
		whereClause += " AND status = $2"
		args = append(args, *status)
	}

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents"+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, &StoreError{Op: "count documents", Err: err}
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	query := fmt.Sprintf("SELECT * FROM documents%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	docs := []Document{}
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, 0, &StoreError{Op: "list documents", Err: err}
	}
	return docs, total, nil
}

// DeleteOrphanedPending removes PENDING rows whose storage upload never
// completed (empty original path) and that are older than cutoff. A retried
// upload recreates them; they are unreachable otherwise.
func (r *postgresRepository) DeleteOrphanedPending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE status = 'PENDING' AND pdf_original_path = '' AND created_at < $1`,
		cutoff)
	if err != nil {
		return 0, &StoreError{Op: "delete orphaned documents", Err: err}
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

func (r *scopedPostgresRepository) GetDocumentByID(ctx context.Context, id, userID string) (*Document, error) {
	var doc Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND user_id = $2", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "get document", Err: err}
	}
	return &doc, nil
}
