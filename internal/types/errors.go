// internal/types/errors.go
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every failure a workflow can report.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindUpload
	KindPrecondition
	KindSigningMismatch
	KindUserCancelled
	KindSubmissionRejected
	KindTimedOut
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpload:
		return "upload"
	case KindPrecondition:
		return "precondition"
	case KindSigningMismatch:
		return "signing_mismatch"
	case KindUserCancelled:
		return "user_cancelled"
	case KindSubmissionRejected:
		return "submission_rejected"
	case KindTimedOut:
		return "timed_out"
	case KindFailed:
		return "failed"
	default:
		return "internal"
	}
}

// Reason narrows a precondition failure.
type Reason string

const (
	ReasonAlreadyRevoked  Reason = "already_revoked"
	ReasonNotAuthorized   Reason = "not_authorized"
	ReasonInvalidShare    Reason = "invalid_share"
	ReasonAccountExists   Reason = "account_exists"
	ReasonImmutable       Reason = "immutable"
	ReasonNotFound        Reason = "not_found"
	ReasonNetworkMismatch Reason = "network_mismatch"
)

// Error carries a Kind, the operation that failed and the raw cause.
type Error struct {
	Kind   Kind
	Reason Reason
	Op     string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Reason != "" {
		b.WriteString(" (")
		b.WriteString(string(e.Reason))
		b.WriteString(")")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind, and by reason when the sentinel sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrUpload             = &Error{Kind: KindUpload}
	ErrPrecondition       = &Error{Kind: KindPrecondition}
	ErrAlreadyRevoked     = &Error{Kind: KindPrecondition, Reason: ReasonAlreadyRevoked}
	ErrNotAuthorized      = &Error{Kind: KindPrecondition, Reason: ReasonNotAuthorized}
	ErrInvalidShare       = &Error{Kind: KindPrecondition, Reason: ReasonInvalidShare}
	ErrSigningMismatch    = &Error{Kind: KindSigningMismatch}
	ErrUserCancelled      = &Error{Kind: KindUserCancelled}
	ErrSubmissionRejected = &Error{Kind: KindSubmissionRejected}
	ErrTimedOut           = &Error{Kind: KindTimedOut}
	ErrFailed             = &Error{Kind: KindFailed}
)

func NewValidationError(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NewUploadError(op string, err error) *Error {
	return &Error{Kind: KindUpload, Op: op, Err: err}
}

func NewPreconditionError(op string, reason Reason, format string, args ...interface{}) *Error {
	return &Error{Kind: KindPrecondition, Reason: reason, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NewSigningMismatch(op, format string, args ...interface{}) *Error {
	return &Error{Kind: KindSigningMismatch, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func NewUserCancelled(op, reason string, err error) *Error {
	return &Error{Kind: KindUserCancelled, Op: op, Msg: reason, Err: err}
}

func NewSubmissionRejected(op, reason string, err error) *Error {
	return &Error{Kind: KindSubmissionRejected, Op: op, Msg: reason, Err: err}
}

func NewTimedOut(op, signature string) *Error {
	return &Error{Kind: KindTimedOut, Op: op, Msg: "no terminal status for " + signature}
}

func NewFailed(op, signature string, err error) *Error {
	return &Error{Kind: KindFailed, Op: op, Msg: "transaction " + signature + " failed", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// UserMessage maps an error to a short text suitable for end users.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred"
	}

	switch e.Kind {
	case KindValidation:
		return "Invalid input: " + e.Msg
	case KindUpload:
		return "Failed to upload to storage"
	case KindPrecondition:
		switch e.Reason {
		case ReasonAlreadyRevoked:
			return "Authority has already been revoked"
		case ReasonNotAuthorized:
			return "Your wallet is not the current authority"
		case ReasonInvalidShare:
			return "Creator share must be between 0 and 100"
		case ReasonAccountExists:
			return "Mint account already exists"
		case ReasonImmutable:
			return "Token metadata is immutable"
		case ReasonNetworkMismatch:
			return "Wallet RPC endpoint is on a different network"
		}
		return "Operation is not allowed: " + e.Msg
	case KindSigningMismatch:
		return "Transaction signers do not match"
	case KindUserCancelled:
		return "Transaction cancelled by user"
	case KindSubmissionRejected:
		if strings.Contains(e.Msg, "insufficient_funds") {
			return "Insufficient funds for transaction"
		}
		return "Transaction was rejected by the network"
	case KindTimedOut:
		return "Transaction confirmation timed out, check the signature before retrying"
	case KindFailed:
		return "Transaction failed on chain"
	}
	return "An unexpected error occurred"
}
