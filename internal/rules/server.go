package rules

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/chess-room/internal/obslog"
)

// Handler serves impl as the HTTP rules service that Remote speaks to.
func Handler(impl Rules, timeout time.Duration) fasthttp.RequestHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return func(rc *fasthttp.RequestCtx) {
		if !rc.IsPost() {
			rc.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
			return
		}
		var req wireRequest
		if err := json.Unmarshal(rc.PostBody(), &req); err != nil {
			rc.Error("invalid json", fasthttp.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var (
			out any
			err error
		)
		switch string(rc.Path()) {
		case "/validate":
			var v Validation
			v, err = impl.ValidateMove(ctx, req.FEN, MoveRequest{From: req.From, To: req.To, Promotion: req.Promotion})
			out = fromValidation(v)
		case "/status":
			out, err = impl.Status(ctx, req.FEN)
		default:
			rc.Error("not found", fasthttp.StatusNotFound)
			return
		}
		if err != nil {
			obslog.L().Warn("rules_service_error", zap.ByteString("path", rc.Path()), zap.Error(err))
			rc.Error("rules unavailable", fasthttp.StatusServiceUnavailable)
			return
		}

		body, err := json.Marshal(out)
		if err != nil {
			rc.Error("encode failed", fasthttp.StatusInternalServerError)
			return
		}
		rc.SetContentType("application/json")
		rc.SetBody(body)
	}
}
