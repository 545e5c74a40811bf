package apperror

import (
	"errors"
	"net/http"
)

// HTTPError is the transport-facing shape of a failure. Handlers pass it to the
// response envelope instead of exposing raw errors.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP maps any error to an HTTPError. Domain errors keep their code and
// status; everything else collapses to a generic 500 so infrastructure details
// never leak to clients.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}
	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: ErrInternal.Message,
	}
}
