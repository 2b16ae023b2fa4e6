package main

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/rovshanmuradov/token-launcher/internal/workflow"
	"github.com/stretchr/testify/assert"
)

func TestViewOf(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	v := viewOf(&workflow.Outcome{
		Operation: "create_token",
		State:     workflow.StateSucceeded,
		Signature: solana.Signature{1},
		Mint:      mint,
		RawSupply: 10000,
	})
	assert.Equal(t, mint.String(), v.Mint)
	assert.Equal(t, solana.Signature{1}.String(), v.Signature)
	assert.Empty(t, v.ErrorKind)

	v = viewOf(&workflow.Outcome{
		Operation: "revoke_authority",
		State:     workflow.StateFailed,
		Err:       types.NewPreconditionError("revoke_authority", types.ReasonAlreadyRevoked, "already revoked"),
	})
	assert.Empty(t, v.Signature, "nothing was broadcast")
	assert.Empty(t, v.Mint)
	assert.Equal(t, "precondition", v.ErrorKind)
	assert.NotEmpty(t, v.Message)
}

func TestReport_ExitCodes(t *testing.T) {
	assert.Equal(t, 2, report(types.NewUserCancelled("op", "User rejected the request", nil)))
	assert.Equal(t, 3, report(types.NewTimedOut("op", "sig")))
	assert.Equal(t, 1, report(types.NewValidationError("op", "bad")))
}
