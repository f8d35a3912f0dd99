package game

import (
	"errors"
	"fmt"
)

// ErrorKind groups rejection codes by how a caller should react.
type ErrorKind int

const (
	// KindValidation: the action was malformed or illegal for the seat. State unchanged.
	KindValidation ErrorKind = iota + 1
	// KindState: the request does not fit the table or hand right now. State unchanged.
	KindState
	// KindConflict: a duplicate or out-of-order request.
	KindConflict
	// KindFatal: an integrity check failed. The hand is aborted and the table frozen.
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindConflict:
		return "conflict"
	case KindFatal:
		return "fatal"
	}
	return "unknown"
}

func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is a typed rejection. Two errors match under errors.Is when their
// codes are equal, so the package sentinels can be compared against errors
// that carry extra detail.
type Error struct {
	Kind ErrorKind `json:"kind"`
	Code string    `json:"code"`
	Msg  string    `json:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code
	}
	return e.Code + ": " + e.Msg
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) withf(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Msg: fmt.Sprintf(format, args...)}
}

func newError(kind ErrorKind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Validation errors
var (
	ErrRaiseTooSmall   = newError(KindValidation, "RAISE_TOO_SMALL")
	ErrNotEnoughChips  = newError(KindValidation, "NOT_ENOUGH_CHIPS")
	ErrCannotCheck     = newError(KindValidation, "CANNOT_CHECK")
	ErrNothingToCall   = newError(KindValidation, "NOTHING_TO_CALL")
	ErrRaiseNotAllowed = newError(KindValidation, "RAISE_NOT_ALLOWED")
	ErrInvalidAction   = newError(KindValidation, "INVALID_ACTION")
	ErrInvalidSeat     = newError(KindValidation, "INVALID_SEAT")
	ErrInvalidPlayer   = newError(KindValidation, "INVALID_PLAYER")
	ErrBuyInTooLow     = newError(KindValidation, "BUY_IN_TOO_LOW")
	ErrBuyInTooHigh    = newError(KindValidation, "BUY_IN_TOO_HIGH")
)

// State errors
var (
	ErrNotYourTurn      = newError(KindState, "NOT_YOUR_TURN")
	ErrHandNotActive    = newError(KindState, "HAND_NOT_ACTIVE")
	ErrHandInProgress   = newError(KindState, "HAND_IN_PROGRESS")
	ErrNotEnoughPlayers = newError(KindState, "NOT_ENOUGH_PLAYERS")
	ErrRoomFull         = newError(KindState, "ROOM_FULL")
	ErrAlreadySeated    = newError(KindState, "ALREADY_SEATED")
	ErrSeatTaken        = newError(KindState, "SEAT_TAKEN")
	ErrNotSeated        = newError(KindState, "NOT_SEATED")
	ErrTableFrozen      = newError(KindState, "TABLE_FROZEN")
	ErrTableNotFrozen   = newError(KindState, "TABLE_NOT_FROZEN")
	ErrWrongTable       = newError(KindState, "WRONG_TABLE")
	ErrStaleTimeout     = newError(KindState, "STALE_TIMEOUT")
)

// Conflict errors
var (
	ErrStaleSequence = newError(KindConflict, "STALE_SEQUENCE")
)

// Fatal errors
var (
	ErrChipConservation = newError(KindFatal, "CHIP_CONSERVATION")
	ErrPotMismatch      = newError(KindFatal, "POT_MISMATCH")
	ErrDeckFailure      = newError(KindFatal, "DECK_FAILURE")
)

// KindOf returns the kind of a typed error found in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsFatal reports whether err aborted a hand.
func IsFatal(err error) bool {
	return KindOf(err) == KindFatal
}
