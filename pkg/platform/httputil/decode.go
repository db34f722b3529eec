package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "checklist/pkg/domain-errors"
)

var (
	errEmptyBody    = dErrors.New(dErrors.CodeBadRequest, "request body is required")
	errBodyTooLarge = dErrors.New(dErrors.CodeBadRequest, "request body too large")
	errInvalidBody  = dErrors.New(dErrors.CodeBadRequest, "invalid request body")
)

// DecodeJSON decodes a JSON request body into T. On failure it writes a
// bad_request response and returns nil, false.
//
//	req, ok := httputil.DecodeJSON[LoginRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, classifyDecodeError(err))
		return nil, false
	}
	return &req, true
}

// classifyDecodeError separates an empty body and a body cut off by the
// BodyLimit middleware from plain malformed JSON.
func classifyDecodeError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return errEmptyBody
	case errors.As(err, &maxBytes):
		return errBodyTooLarge
	default:
		return errInvalidBody
	}
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that trim/case-fold input.
type Normalizable interface {
	Normalize()
}

// PrepareRequest normalizes then validates a request.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare combines DecodeJSON with PrepareRequest. Validation
// failures that are not domain errors are reported as validation_error.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		if _, isDomain := dErrors.CodeOf(err); !isDomain {
			err = dErrors.New(dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}

	return req, true
}
