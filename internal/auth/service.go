package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Reason tags a credential-verification failure so callers branch on a code
// instead of matching error prose.
type Reason string

const (
	ReasonWrongPassword Reason = "wrong_password"
	ReasonUnavailable   Reason = "unavailable"
)

// Error is the typed result of a failed verification.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	if e.Reason == ReasonWrongPassword {
		return "wrong email or password"
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Account is the identity returned by a successful verification.
type Account struct {
	UserID     string `db:"user_id"`
	Email      string `db:"email"`
	FullName   string `db:"full_name"`
	EmployeeID int    `db:"employee_id"`
}

type credentialRow struct {
	Account
	PasswordHash string `db:"password_hash"`
}

// Service verifies credentials against the users relation and issues JWTs.
type Service struct {
	db        *sqlx.DB
	logger    *zap.Logger
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(db *sqlx.DB, logger *zap.Logger, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		db:        db,
		logger:    logger,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// VerifyPassword checks email/password possession. An unknown email and a
// wrong password both report ReasonWrongPassword; everything else is
// ReasonUnavailable.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (*Account, error) {
	var row credentialRow
	err := s.db.GetContext(ctx, &row,
		"SELECT user_id, email, full_name, employee_id, password_hash FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &Error{Reason: ReasonWrongPassword}
	}
	if err != nil {
		return nil, &Error{Reason: ReasonUnavailable, Err: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, &Error{Reason: ReasonWrongPassword}
		}
		return nil, &Error{Reason: ReasonUnavailable, Err: err}
	}

	return &row.Account, nil
}

// IssueToken returns a signed bearer token for a verified account.
func (s *Service) IssueToken(account *Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.UserID,
		"email": account.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
