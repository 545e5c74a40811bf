package autherrors

import (
	"net/http"

	"github.com/patwikx/rgroup-lms-sub000/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.CodeUnauthorized, "invalid email or password", http.StatusUnauthorized)
	ErrInvalidToken       = apperror.New(apperror.CodeUnauthorized, "invalid token", http.StatusUnauthorized)
	ErrTokenExpired       = apperror.New(apperror.CodeUnauthorized, "token has expired", http.StatusUnauthorized)
	ErrInvalidRefreshToken = apperror.New(apperror.CodeUnauthorized, "invalid refresh token", http.StatusUnauthorized)
	ErrTokenGeneration    = apperror.New(apperror.CodeInternalError, "could not generate token", http.StatusInternalServerError)

	ErrForbidden     = apperror.New(apperror.CodeForbidden, "you do not have permission to perform this action", http.StatusForbidden)
	ErrInvalidUserID = apperror.New(apperror.CodeInvalidInput, "invalid user id", http.StatusBadRequest)
	ErrUserNotFound  = apperror.New(apperror.CodeNotFound, "user not found", http.StatusNotFound)
	ErrUserInactive  = apperror.New(apperror.CodeForbidden, "this account has been deactivated", http.StatusForbidden)

	ErrEmailAlreadyRegistered = apperror.New(apperror.CodeConflict, "email is already registered", http.StatusConflict)
)
