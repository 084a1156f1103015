package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/chess-room/internal/backoff"
)

// Remote talks to a rules service over HTTP. Both endpoints are pure
// functions of their input so every call is retried.
type Remote struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

var remoteBackoff = backoff.Policy{Base: 50 * time.Millisecond, Max: 400 * time.Millisecond}

type RemoteOption func(*Remote)

func WithRemoteRetry(max int) RemoteOption {
	return func(r *Remote) { r.retryMax = max }
}

// WithRemoteDial replaces the client dialer, mainly for in-memory listeners.
func WithRemoteDial(dial fasthttp.DialFunc) RemoteOption {
	return func(r *Remote) { r.http.Dial = dial }
}

func NewRemote(baseURL string, timeout time.Duration, opts ...RemoteOption) *Remote {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	r := &Remote{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout, MaxConnsPerHost: 32},
		defaultTimeout: timeout,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) ValidateMove(ctx context.Context, fen string, mv MoveRequest) (Validation, error) {
	req := wireRequest{Op: "validate", FEN: fen, From: mv.From, To: mv.To, Promotion: mv.Promotion}
	var out wireValidation
	if err := r.doJSON(ctx, "/validate", req, &out); err != nil {
		if errors.Is(err, errBadOutput) {
			return invalid(fen, "Invalid output from rules service"), nil
		}
		return Validation{}, err
	}
	return out.toValidation(fen), nil
}

func (r *Remote) Status(ctx context.Context, fen string) (Status, error) {
	var out Status
	if err := r.doJSON(ctx, "/status", wireRequest{Op: "status", FEN: fen}, &out); err != nil {
		if errors.Is(err, errBadOutput) {
			return closedStatus(fen), nil
		}
		return Status{}, err
	}
	if out.Turn != "w" && out.Turn != "b" {
		out.Turn = sideToMove(fen)
	}
	return out, nil
}

func (r *Remote) doJSON(ctx context.Context, path string, in any, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(r.baseURL + path)
	req.Header.SetContentType("application/json")

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req.SetBody(payload)

	attempts := r.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		err := r.http.DoDeadline(req, resp, r.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("%w: request failed: %v", ErrUnavailable, err)
		} else {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				if err := json.Unmarshal(resp.Body(), out); err != nil {
					return errBadOutput
				}
				return nil
			}
			lastErr = fmt.Errorf("%w: rules service status=%d body=%q", ErrUnavailable, status, bodySnippet(resp.Body()))
			if !retryableStatus(status) {
				return lastErr
			}
		}
		if attempt == attempts {
			break
		}
		if sleepErr := backoff.Sleep(ctx, remoteBackoff.Delay(attempt)); sleepErr != nil {
			return lastErr
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: unknown error", ErrUnavailable)
	}
	return lastErr
}

func (r *Remote) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(r.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

// retryableStatus reports whether a second try may get a different answer:
// overload and gateway failures only.
func retryableStatus(code int) bool {
	switch code {
	case fasthttp.StatusTooManyRequests,
		fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable,
		fasthttp.StatusGatewayTimeout:
		return true
	}
	return false
}

// bodySnippet keeps error messages short: the first line of the body, at
// most 200 bytes.
func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
