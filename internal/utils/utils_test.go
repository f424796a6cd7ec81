package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindStatusCodes(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{NewValidationError("title is required"), http.StatusBadRequest},
		{NewUniquenessError("dup"), http.StatusBadRequest},
		{NewConflictError("category has existing tasks"), http.StatusBadRequest},
		{NewNoOpError("no changes"), http.StatusBadRequest},
		{NewNotFoundError("task not found"), http.StatusNotFound},
		{NewAuthError("invalid credentials"), http.StatusUnauthorized},
		{NewAuthorizationError("admin required"), http.StatusForbidden},
		{NewTooManyRequestsError("slow down"), http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, KindOf(tt.err).StatusCode(), tt.err.Error())
	}
}

func TestAppErrorIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("delete: %w", NewNotFoundError("task %s not found", "x"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestHandleErrorHidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)

	HandleError(c, errors.New("no such table: tasks"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "no such table")
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestHandleErrorWritesKindStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/categories/1", nil)

	HandleError(c, NewConflictError("category has existing tasks"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"code":400,"error":"category has existing tasks"}`, w.Body.String())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, IsBcryptHash(hash))
	assert.False(t, IsBcryptHash("s3cret!"))
	assert.NoError(t, CheckPassword("s3cret!", hash))
	assert.Error(t, CheckPassword("wrong", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "HS256", time.Hour)

	token, err := m.GenerateToken("u-1", "alice", "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)

	other := NewJWTManager("other-secret", "HS256", time.Hour)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("secret", "HS256", -time.Minute)

	token, err := m.GenerateToken("u-1", "alice", "user")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

type signupProbe struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(signupProbe{Username: "alice_1", Email: "a@x.com"}))

	err := ValidateStruct(signupProbe{Username: "a!", Email: "nope"})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "username")
	assert.Contains(t, err.Error(), "email must be a valid email address")
}
