package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrUnavailable marks a collaborator that could not be reached at all.
// A rejected move is never reported through this error.
var ErrUnavailable = errors.New("rules collaborator unavailable")

// errBadOutput is returned internally when a bridge or remote answered with
// something that is not a well-formed result.
var errBadOutput = errors.New("invalid output from rules collaborator")

// MoveRequest is a coordinate move, promotion piece passed through verbatim.
type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// UCI returns the move in long algebraic form (e2e4, e7e8q).
func (m MoveRequest) UCI() string {
	return strings.ToLower(strings.TrimSpace(m.From) + strings.TrimSpace(m.To) + strings.TrimSpace(m.Promotion))
}

type MoveInfo struct {
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Stalemate bool   `json:"stalemate"`
	Draw      bool   `json:"draw"`
	Captured  string `json:"captured,omitempty"`
	Promotion bool   `json:"promotion"`
}

// Validation is the result of ValidateMove. NewPosition is the input FEN
// when Valid is false.
type Validation struct {
	Valid       bool     `json:"valid"`
	NewPosition string   `json:"new_fen"`
	Reason      string   `json:"reason"`
	Info        MoveInfo `json:"move_info"`
}

type Status struct {
	Turn                  string `json:"turn"`
	InCheck               bool   `json:"in_check"`
	InCheckmate           bool   `json:"in_checkmate"`
	InStalemate           bool   `json:"in_stalemate"`
	InDraw                bool   `json:"in_draw"`
	InsufficientMaterial  bool   `json:"insufficient_material"`
	InThreefoldRepetition bool   `json:"in_threefold_repetition"`
	GameOver              bool   `json:"game_over"`
}

// Rules evaluates chess positions. Implementations fail closed on malformed
// positions (Valid=false, zero Status) and return an error only when the
// collaborator itself is unavailable.
type Rules interface {
	ValidateMove(ctx context.Context, fen string, mv MoveRequest) (Validation, error)
	Status(ctx context.Context, fen string) (Status, error)
}

func invalid(fen, reason string) Validation {
	return Validation{Valid: false, NewPosition: fen, Reason: reason}
}

// closedStatus is the status reported when a collaborator's answer cannot be
// trusted. The turn comes from the position itself, or stays empty so the
// caller keeps its own flip.
func closedStatus(fen string) Status { return Status{Turn: sideToMove(fen)} }

func sideToMove(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return ""
	}
	switch fields[1] {
	case "w", "b":
		return fields[1]
	default:
		return ""
	}
}

// Backend names accepted by New.
const (
	BackendNative = "native"
	BackendBridge = "bridge"
	BackendRemote = "remote"
)

type Config struct {
	Backend       string
	BridgeCommand string
	RemoteURL     string
	Timeout       time.Duration
}

// New selects the rules implementation named by cfg.Backend.
func New(cfg Config) (Rules, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNative:
		return NewNative(), nil
	case BackendBridge:
		return NewBridge(cfg.BridgeCommand, timeout)
	case BackendRemote:
		if strings.TrimSpace(cfg.RemoteURL) == "" {
			return nil, fmt.Errorf("RULES_REMOTE_URL is required for remote rules backend")
		}
		return NewRemote(cfg.RemoteURL, timeout), nil
	default:
		return nil, fmt.Errorf("unknown rules backend: %s", cfg.Backend)
	}
}

// wireRequest is the JSON request understood by bridge scripts and the
// remote rules service.
type wireRequest struct {
	Op        string `json:"op"`
	FEN       string `json:"fen"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

// wireValidation tolerates chess.js style payloads where promotion is the
// promoted piece letter instead of a boolean.
type wireValidation struct {
	Valid    bool   `json:"valid"`
	NewFEN   string `json:"new_fen"`
	Reason   string `json:"reason"`
	MoveInfo struct {
		Check     bool     `json:"check"`
		Checkmate bool     `json:"checkmate"`
		Stalemate bool     `json:"stalemate"`
		Draw      bool     `json:"draw"`
		Captured  flexText `json:"captured"`
		Promotion flexBool `json:"promotion"`
	} `json:"move_info"`
}

func (w wireValidation) toValidation(fen string) Validation {
	if !w.Valid {
		reason := strings.TrimSpace(w.Reason)
		if reason == "" {
			reason = "Illegal move"
		}
		return invalid(fen, reason)
	}
	if strings.TrimSpace(w.NewFEN) == "" {
		return invalid(fen, errBadOutput.Error())
	}
	return Validation{
		Valid:       true,
		NewPosition: w.NewFEN,
		Info: MoveInfo{
			Check:     w.MoveInfo.Check,
			Checkmate: w.MoveInfo.Checkmate,
			Stalemate: w.MoveInfo.Stalemate,
			Draw:      w.MoveInfo.Draw,
			Captured:  string(w.MoveInfo.Captured),
			Promotion: bool(w.MoveInfo.Promotion),
		},
	}
}

func fromValidation(v Validation) wireValidation {
	var w wireValidation
	w.Valid = v.Valid
	w.NewFEN = v.NewPosition
	w.Reason = v.Reason
	w.MoveInfo.Check = v.Info.Check
	w.MoveInfo.Checkmate = v.Info.Checkmate
	w.MoveInfo.Stalemate = v.Info.Stalemate
	w.MoveInfo.Draw = v.Info.Draw
	w.MoveInfo.Captured = flexText(v.Info.Captured)
	w.MoveInfo.Promotion = flexBool(v.Info.Promotion)
	return w
}

type flexBool bool

func (b *flexBool) UnmarshalJSON(raw []byte) error {
	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		*b = flexBool(asBool)
		return nil
	}
	var asText string
	if err := json.Unmarshal(raw, &asText); err == nil {
		*b = flexBool(strings.TrimSpace(asText) != "")
		return nil
	}
	*b = false
	return nil
}

// flexText accepts a piece letter, null, or the boolean emitted by the
// legacy fallback validator.
type flexText string

func (t *flexText) UnmarshalJSON(raw []byte) error {
	var asText string
	if err := json.Unmarshal(raw, &asText); err == nil {
		*t = flexText(strings.ToLower(strings.TrimSpace(asText)))
		return nil
	}
	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil && asBool {
		*t = "?"
		return nil
	}
	*t = ""
	return nil
}
