package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/middleware"
)

// statusByCode maps error codes to HTTP status codes.
var statusByCode = map[string]int{
	"E001": http.StatusNotFound,
	"E002": http.StatusUnprocessableEntity,
	"E003": http.StatusUnprocessableEntity,
	"E004": http.StatusUnprocessableEntity,
	"E005": http.StatusUnprocessableEntity,
	"E020": http.StatusNotFound,
	"E021": http.StatusNotFound,
	"E022": http.StatusNotFound,
	"E040": http.StatusBadGateway,
	"E041": http.StatusServiceUnavailable,
	"E121": http.StatusBadRequest,
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	fe, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	if status, ok := statusByCode[fe.Code]; ok {
		return status
	}
	if fe.Category == errors.CategoryLookup {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// errorBody is the JSON body of a failed request.
type errorBody struct {
	Error errors.Payload `json:"error"`
}

// writeError renders err as JSON with the matching status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	fe, ok := errors.As(err)
	if !ok {
		fe = errors.New("E120").Wrap(err)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	if s.metrics != nil {
		s.metrics.RecordError(r, err)
	}
	middleware.RecordError(r.Context(), err)

	s.writeJSON(w, r, status, errorBody{Error: fe.Payload()})
}

// writeJSON encodes v with status. A value that cannot be encoded is
// answered with a 500 instead.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.writeError(w, r, errors.New("E120").
			WithDetail("The response could not be encoded as JSON.").
			Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Debug("response write failed", "path", r.URL.Path, "error", err)
	}
}
