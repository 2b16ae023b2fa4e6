package transaction

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/blockchaintest"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBuilder_FeeFirst(t *testing.T) {
	client := blockchaintest.NewClient()
	b := NewBuilder(client, zaptest.NewLogger(t))
	payer := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	fee := system.NewTransferInstruction(100000000, payer, treasury).Build()
	op1 := system.NewCreateAccountInstruction(1, 82, solana.TokenProgramID, payer, mint).Build()
	op2 := system.NewTransferInstruction(1, payer, mint).Build()

	u, err := b.Build(context.Background(), payer, fee, []solana.Instruction{op1, op2})
	require.NoError(t, err)

	require.Len(t, u.Instructions, 3)
	assert.True(t, u.HasFee)
	assert.Same(t, fee, u.Instructions[0])
	assert.Same(t, op1, u.Instructions[1])
	assert.Same(t, op2, u.Instructions[2])

	compiled := u.Tx.Message.Instructions
	require.Len(t, compiled, 3)
	assert.Equal(t, solana.SystemProgramID, u.Tx.Message.AccountKeys[compiled[0].ProgramIDIndex])
	assert.Equal(t, payer, u.Tx.Message.AccountKeys[0], "payer is the fee payer")
	assert.Equal(t, u.Blockhash, u.Tx.Message.RecentBlockhash)

	signers := RequiredSigners(u.Tx)
	assert.Equal(t, []solana.PublicKey{payer, mint}, signers)
}

func TestBuilder_NoFee(t *testing.T) {
	client := blockchaintest.NewClient()
	b := NewBuilder(client, zaptest.NewLogger(t))
	payer := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	op := system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build()

	u, err := b.Build(context.Background(), payer, nil, []solana.Instruction{op})
	require.NoError(t, err)
	assert.False(t, u.HasFee)
	require.Len(t, u.Instructions, 1)

	for _, key := range u.Tx.Message.AccountKeys {
		assert.NotEqual(t, treasury, key)
	}
}

func TestBuilder_RequiresOperations(t *testing.T) {
	client := blockchaintest.NewClient()
	b := NewBuilder(client, zaptest.NewLogger(t))
	payer := solana.NewWallet().PublicKey()
	fee := system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build()

	_, err := b.Build(context.Background(), payer, fee, nil)
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Zero(t, client.BlockhashCalls, "no blockhash is fetched for an invalid request")
}

func TestBuilder_FreshBlockhashPerBuild(t *testing.T) {
	client := blockchaintest.NewClient()
	b := NewBuilder(client, zaptest.NewLogger(t))
	payer := solana.NewWallet().PublicKey()
	op := system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build()

	first, err := b.Build(context.Background(), payer, nil, []solana.Instruction{op})
	require.NoError(t, err)
	second, err := b.Build(context.Background(), payer, nil, []solana.Instruction{op})
	require.NoError(t, err)

	assert.NotEqual(t, first.Blockhash, second.Blockhash)
	assert.Equal(t, 2, client.BlockhashCalls)
}
