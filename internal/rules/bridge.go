package rules

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-room/internal/obslog"
)

// Bridge runs an external rules script once per call. The script reads one
// JSON request on stdin and prints one JSON object on stdout.
type Bridge struct {
	argv    []string
	timeout time.Duration
}

func NewBridge(command string, timeout time.Duration) (*Bridge, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("RULES_BRIDGE_COMMAND is required for bridge rules backend")
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("bridge executable %q: %w", argv[0], err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Bridge{argv: argv, timeout: timeout}, nil
}

func (b *Bridge) ValidateMove(ctx context.Context, fen string, mv MoveRequest) (Validation, error) {
	req := wireRequest{Op: "validate", FEN: fen, From: mv.From, To: mv.To, Promotion: mv.Promotion}
	var out wireValidation
	if err := b.call(ctx, req, &out); err != nil {
		if errors.Is(err, errBadOutput) {
			return invalid(fen, "Invalid output from validation script"), nil
		}
		return Validation{}, err
	}
	return out.toValidation(fen), nil
}

func (b *Bridge) Status(ctx context.Context, fen string) (Status, error) {
	var out Status
	if err := b.call(ctx, wireRequest{Op: "status", FEN: fen}, &out); err != nil {
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

func (b *Bridge) call(ctx context.Context, req wireRequest, out any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode bridge request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, b.argv[0], b.argv[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		obslog.L().Warn("rules_bridge_exec_error",
			zap.String("op", req.Op),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err),
		)
		if callCtx.Err() != nil {
			return fmt.Errorf("%w: bridge %s: %v", ErrUnavailable, req.Op, callCtx.Err())
		}
		return fmt.Errorf("%w: bridge %s: %v", ErrUnavailable, req.Op, err)
	}

	line := lastLine(stdout.String())
	if line == "" {
		return errBadOutput
	}
	if err := json.Unmarshal([]byte(line), out); err != nil {
		obslog.L().Warn("rules_bridge_bad_output", zap.String("op", req.Op), zap.String("output", line))
		return errBadOutput
	}
	return nil
}

// lastLine picks the final non-empty stdout line so scripts may log above it.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
