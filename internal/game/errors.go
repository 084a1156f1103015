package game

import (
	"errors"
	"fmt"
)

// Kind groups error codes by how a caller should react to them.
type Kind string

const (
	KindNotFound     Kind = "NotFound"
	KindUnauthorized Kind = "Unauthorized"
	KindInvalidInput Kind = "InvalidInput"
	KindIllegalMove  Kind = "IllegalMove"
	KindConflict     Kind = "Conflict"
	KindTransient    Kind = "Transient"
)

// Code identifies a specific failure. Codes double as message catalog keys.
type Code string

const (
	CodeGameNotFound     Code = "GameNotFound"
	CodeWrongTurn        Code = "WrongTurn"
	CodeNotAPlayer       Code = "NotAPlayer"
	CodeGameNotActive    Code = "GameNotActive"
	CodeInvalidColor     Code = "InvalidColor"
	CodeInvalidMove      Code = "InvalidMove"
	CodeIllegalMove      Code = "IllegalMove"
	CodeColorUnavailable Code = "ColorUnavailable"
	CodeAlreadyPlayer    Code = "AlreadyPlayer"
	CodeNoReservation    Code = "NoReservation"
	CodeSlotTaken        Code = "SlotTaken"
	CodeColorsChosen     Code = "ColorsChosen"
	CodeStoreBusy        Code = "StoreBusy"
	CodeRulesUnavailable Code = "RulesUnavailable"
)

var codeKinds = map[Code]Kind{
	CodeGameNotFound:     KindNotFound,
	CodeWrongTurn:        KindUnauthorized,
	CodeNotAPlayer:       KindUnauthorized,
	CodeGameNotActive:    KindConflict,
	CodeInvalidColor:     KindInvalidInput,
	CodeInvalidMove:      KindInvalidInput,
	CodeIllegalMove:      KindIllegalMove,
	CodeColorUnavailable: KindConflict,
	CodeAlreadyPlayer:    KindConflict,
	CodeNoReservation:    KindConflict,
	CodeSlotTaken:        KindConflict,
	CodeColorsChosen:     KindConflict,
	CodeStoreBusy:        KindTransient,
	CodeRulesUnavailable: KindTransient,
}

type Error struct {
	Kind    Kind
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether the same request may succeed later unchanged.
func (e *Error) Retryable() bool { return e.Kind == KindTransient }

// Is matches on Code so sentinels like ErrWrongTurn work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Errorf builds an Error for code with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Kind: kindOf(code), Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error for code that keeps cause in the chain.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{Kind: kindOf(code), Code: code, Message: message, cause: cause}
}

func kindOf(code Code) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindTransient
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or "" when err is not an *Error.
func CodeOf(err error) Code {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

var (
	ErrGameNotFound     = Errorf(CodeGameNotFound, "game not found")
	ErrWrongTurn        = Errorf(CodeWrongTurn, "not your turn")
	ErrNotAPlayer       = Errorf(CodeNotAPlayer, "not a player in this game")
	ErrGameNotActive    = Errorf(CodeGameNotActive, "game is not active")
	ErrInvalidColor     = Errorf(CodeInvalidColor, "invalid color")
	ErrInvalidMove      = Errorf(CodeInvalidMove, "invalid move data")
	ErrColorUnavailable = Errorf(CodeColorUnavailable, "color is not available")
	ErrAlreadyPlayer    = Errorf(CodeAlreadyPlayer, "already playing in this game")
	ErrNoReservation    = Errorf(CodeNoReservation, "no active reservation")
	ErrSlotTaken        = Errorf(CodeSlotTaken, "color already taken")
	ErrColorsChosen     = Errorf(CodeColorsChosen, "a player has already chosen a color")
	ErrStoreBusy        = Errorf(CodeStoreBusy, "game is busy, try again")
)
