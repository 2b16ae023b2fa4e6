// internal/workflow/outcome.go
package workflow

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/types"
)

// State is a workflow's terminal state.
type State string

const (
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Outcome is what a workflow reports back to its caller.
type Outcome struct {
	WorkflowID string
	Operation  string
	Network    string
	State      State

	Signature   solana.Signature
	Slot        uint64
	Mint        solana.PublicKey
	MetadataURI string
	ImageURI    string
	// RawSupply is the minted amount in base units (create only).
	RawSupply uint64

	// Err is the typed error for failed and cancelled outcomes.
	Err error
}

// Kind returns the error kind, or KindInternal for success.
func (o *Outcome) Kind() types.Kind {
	return types.KindOf(o.Err)
}

// Submitted reports whether a transaction was broadcast.
func (o *Outcome) Submitted() bool {
	return !o.Signature.IsZero()
}
