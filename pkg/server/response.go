package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	perrors "github.com/matzehuels/vpypenode/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps an error to its HTTP status and wire code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "CANCELLED"
	}

	code := perrors.GetCode(err)
	switch code {
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidParam,
		perrors.ErrCodeInvalidFormat, perrors.ErrCodeInvalidPreset:
		return http.StatusBadRequest, string(code)
	case perrors.ErrCodeNotFound, perrors.ErrCodeNodeNotFound, perrors.ErrCodeFileNotFound:
		return http.StatusNotFound, string(code)
	case perrors.ErrCodeToolNotFound, perrors.ErrCodeScriptImport:
		return http.StatusServiceUnavailable, string(code)
	case perrors.ErrCodeExternalTool, perrors.ErrCodeOutputMissing:
		return http.StatusBadGateway, string(code)
	case perrors.ErrCodeUnsupported:
		return http.StatusNotImplemented, string(code)
	}
	return http.StatusInternalServerError, string(perrors.ErrCodeInternal)
}

// message drops the code prefix of structured errors but keeps their cause.
func message(err error) string {
	var e *perrors.Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return perrors.UserMessage(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: code, Error: msg, RequestID: RequestID(r.Context())})
}
