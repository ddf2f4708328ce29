package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(sqlx.NewDb(db, "sqlmock"), zap.NewNop(), "test-secret", time.Hour), dbMock
}

func credentialRows(t *testing.T, password string) *sqlmock.Rows {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"user_id", "email", "full_name", "employee_id", "password_hash"}).
		AddRow("user-123", "u@example.com", "Maria Lopez", 456, string(hash))
}

func TestVerifyPassword(t *testing.T) {
	service, dbMock := newTestService(t)

	dbMock.ExpectQuery(`SELECT user_id, email, full_name, employee_id, password_hash FROM users`).
		WithArgs("u@example.com").
		WillReturnRows(credentialRows(t, "hunter2!"))

	account, err := service.VerifyPassword(context.Background(), "u@example.com", "hunter2!")

	assert.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "user-123", account.UserID)
	assert.Equal(t, 456, account.EmployeeID)
}

func TestVerifyPasswordWrongPassword(t *testing.T) {
	service, dbMock := newTestService(t)

	dbMock.ExpectQuery(`SELECT user_id, email, full_name, employee_id, password_hash FROM users`).
		WithArgs("u@example.com").
		WillReturnRows(credentialRows(t, "hunter2!"))

	_, err := service.VerifyPassword(context.Background(), "u@example.com", "not-the-password")

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonWrongPassword, authErr.Reason)
}

func TestVerifyPasswordUnknownEmail(t *testing.T) {
	service, dbMock := newTestService(t)

	dbMock.ExpectQuery(`SELECT user_id, email, full_name, employee_id, password_hash FROM users`).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "full_name", "employee_id", "password_hash"}))

	_, err := service.VerifyPassword(context.Background(), "ghost@example.com", "anything")

	// An unknown email reads exactly like a wrong password.
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonWrongPassword, authErr.Reason)
}

func TestVerifyPasswordStoreUnavailable(t *testing.T) {
	service, dbMock := newTestService(t)

	dbMock.ExpectQuery(`SELECT user_id, email, full_name, employee_id, password_hash FROM users`).
		WithArgs("u@example.com").
		WillReturnError(errors.New("connection refused"))

	_, err := service.VerifyPassword(context.Background(), "u@example.com", "hunter2!")

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, ReasonUnavailable, authErr.Reason)
}

func TestIssueTokenRoundTrip(t *testing.T) {
	service, _ := newTestService(t)

	token, err := service.IssueToken(&Account{UserID: "user-123", Email: "u@example.com"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)

	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-123", claims["sub"])
	assert.Equal(t, "u@example.com", claims["email"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}
