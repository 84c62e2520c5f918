package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRoomFull     = fmt.Errorf("room is full")
	ErrRoomNotFound = fmt.Errorf("room not found")
	ErrNotInRoom    = fmt.Errorf("not in any room")
	ErrDelivery     = fmt.Errorf("message delivery failed")
	ErrResponder    = fmt.Errorf("responder stream failed")
	ErrWorkerPanic  = fmt.Errorf("worker panic")

	ErrOnlyCensoredFiles = fmt.Errorf("censored directory contains directories")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
)

// MapToHTTPStatus translates domain errors into HTTP status codes for the
// REST surface. Unknown errors are reported as internal failures so that
// nothing leaks implementation detail to callers.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRoomFull):
		return http.StatusConflict
	case errors.Is(err, ErrNotInRoom):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
