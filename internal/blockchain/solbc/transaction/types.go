// internal/blockchain/solbc/transaction/types.go
package transaction

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	ErrInvalidSignature   = errors.New("invalid transaction signature")
	ErrInvalidBlockhash   = errors.New("invalid blockhash")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrMessageAltered     = errors.New("transaction message changed during signing")
)

type Config struct {
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration
	SendMaxElapsed      time.Duration
	SkipPreflight       bool
	Commitment          rpc.CommitmentType
}

// DefaultConfig mirrors the launcher defaults: confirmed commitment, 60s
// confirmation budget polled every 500ms.
func DefaultConfig() Config {
	return Config{
		ConfirmationTimeout: 60 * time.Second,
		PollInterval:        500 * time.Millisecond,
		SendMaxElapsed:      10 * time.Second,
		Commitment:          rpc.CommitmentConfirmed,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ConfirmationTimeout <= 0 {
		c.ConfirmationTimeout = d.ConfirmationTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.SendMaxElapsed <= 0 {
		c.SendMaxElapsed = d.SendMaxElapsed
	}
	if c.Commitment == "" {
		c.Commitment = d.Commitment
	}
	return c
}

// Outcome is the terminal state of a broadcast transaction.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
)

// Unsigned is an assembled message that still needs signatures.
type Unsigned struct {
	Tx           *solana.Transaction
	Payer        solana.PublicKey
	Blockhash    solana.Hash
	Instructions []solana.Instruction
	HasFee       bool
}

// SubmissionResult is created once a transaction has been broadcast and is
// never modified afterwards.
type SubmissionResult struct {
	Signature solana.Signature
	Outcome   Outcome
	Slot      uint64
	// Err holds the raw execution error when Outcome is OutcomeFailed.
	Err error
}

// Status is a point-in-time view of a signature, used for later reconciliation.
type Status struct {
	Signature     string
	Status        string
	Confirmations uint64
	Slot          uint64
	Error         string
	Timestamp     time.Time
}
