package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/park285/chess-room/internal/game"
	"github.com/park285/chess-room/internal/obslog"
	"github.com/park285/chess-room/pkg/roomdto"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(code, message string, retryable bool) roomdto.ErrorResponse {
	return roomdto.ErrorResponse{Status: "error", Code: code, Message: message, Retryable: retryable}
}

var kindStatus = map[game.Kind]int{
	game.KindNotFound:     http.StatusNotFound,
	game.KindUnauthorized: http.StatusForbidden,
	game.KindInvalidInput: http.StatusBadRequest,
	game.KindIllegalMove:  http.StatusUnprocessableEntity,
	game.KindConflict:     http.StatusConflict,
	game.KindTransient:    http.StatusServiceUnavailable,
}

// writeError maps err to a status and a catalog message. Anything that is
// not a *game.Error is a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var gerr *game.Error
	if !errors.As(err, &gerr) {
		obslog.L().Error("http_internal_error", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			errorBody("Internal", s.cat.Text("errors.Internal", nil, "Server error."), false))
		return
	}
	status, ok := kindStatus[gerr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	detail := ""
	if gerr.Code == game.CodeIllegalMove {
		detail = gerr.Message
	}
	msg := s.cat.Error(string(gerr.Code), detail, gerr.Message)
	if gerr.Retryable() {
		obslog.L().Warn("http_transient_error", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorBody(string(gerr.Code), msg, gerr.Retryable()))
}

const maxBodyBytes = 1 << 16

// decodeBody reads a JSON body into v; an empty body leaves v untouched.
// Decode failures are reported under code.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, code game.Code) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return game.Wrap(code, err, "malformed request body")
	}
	return nil
}
