package documents

import (
	"time"
)

type DocumentStatus string

const (
	StatusPending     DocumentStatus = "PENDING"
	StatusSigned      DocumentStatus = "SIGNED"
	StatusInvalidated DocumentStatus = "INVALIDATED"
)

type PdfType string

const (
	PdfTypeOriginal PdfType = "original"
	PdfTypeSigned   PdfType = "signed"
)

// Document is one payroll period's cuenta de cobro for a user/employee pair.
// Period dates are stored in the internal MM-DD-YYYY representation. The
// signed-only fields stay nil until the signing workflow commits.
type Document struct {
	ID              string         `json:"id" db:"id"`
	UserID          string         `json:"user_id" db:"user_id"`
	EmployeeID      int            `json:"employee_id" db:"employee_id"`
	PeriodStart     string         `json:"period_start" db:"period_start"`
	PeriodEnd       string         `json:"period_end" db:"period_end"`
	PdfOriginalPath string         `json:"pdf_original_path" db:"pdf_original_path"`
	PdfSignedPath   *string        `json:"pdf_signed_path,omitempty" db:"pdf_signed_path"`
	Status          DocumentStatus `json:"status" db:"status"`
	OriginalHash    string         `json:"original_hash" db:"original_hash"`
	SignedHash      *string        `json:"signed_hash,omitempty" db:"signed_hash"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	SignedAt        *time.Time     `json:"signed_at,omitempty" db:"signed_at"`
	SupersededBy    *string        `json:"superseded_by,omitempty" db:"superseded_by"`
	IsActive        bool           `json:"is_active" db:"is_active"`
}

// Signature is the immutable audit record of one signing event.
type Signature struct {
	ID                   string    `json:"id" db:"id"`
	DocumentID           string    `json:"document_id" db:"document_id"`
	Name                 string    `json:"name" db:"name"`
	IdentificationNumber string    `json:"identification_number" db:"identification_number"`
	IP                   string    `json:"ip" db:"ip"`
	UserAgent            string    `json:"user_agent" db:"user_agent"`
	HashSign             string    `json:"hash_sign" db:"hash_sign"`
	SignedAt             time.Time `json:"signed_at" db:"signed_at"`
}

// UserProfile is the read-only slice of the users relation the workflow
// needs: employee pairing for upload checks, email for re-authentication.
type UserProfile struct {
	UserID     string `db:"user_id"`
	EmployeeID int    `db:"employee_id"`
	Email      string `db:"email"`
	FullName   string `db:"full_name"`
}

type UploadRequest struct {
	UserID      string
	EmployeeID  int
	PeriodStart string // external DD-MM-YYYY
	PeriodEnd   string // external DD-MM-YYYY
	Content     []byte
}

type UploadResult struct {
	DocumentID  string         `json:"document_id"`
	Status      DocumentStatus `json:"status"`
	PeriodStart string         `json:"period_start"`
	PeriodEnd   string         `json:"period_end"`
	Idempotent  bool           `json:"idempotent,omitempty"`
}

type SignRequest struct {
	DocumentID           string
	UserID               string
	UserEmail            string
	Password             string
	FullName             string
	IdentificationNumber string
	IP                   string
	UserAgent            string
}

type PdfUrlResult struct {
	DocumentID string    `json:"document_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	PdfType    PdfType   `json:"pdf_type"`
}

// Pagination is the deterministic page metadata returned by list queries.
type Pagination struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"total_pages"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

type DocumentPage struct {
	Data []Document `json:"data"`
	Meta Pagination `json:"pagination"`
}
