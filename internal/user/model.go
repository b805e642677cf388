package user

import (
	"net/http"
	"time"

	"github.com/bookwell/booking-platform-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already in use")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}
