package approval

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/spltoken"
	"github.com/rovshanmuradov/token-launcher/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTx(t *testing.T, payer, treasury solana.PublicKey) *solana.Transaction {
	t.Helper()
	mint := solana.NewWallet().PublicKey()
	tx, err := solana.NewTransaction([]solana.Instruction{
		system.NewTransferInstruction(100000000, payer, treasury).Build(),
		spltoken.RevokeAuthority(mint, payer, spltoken.AuthorityMint),
	}, solana.Hash{1, 2, 3}, solana.TransactionPayer(payer))
	require.NoError(t, err)
	return tx
}

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.FromBytes(solana.NewWallet().PrivateKey)
	require.NoError(t, err)
	return w
}

func TestDescribe(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()

	s := Describe(newTx(t, payer, treasury), treasury)
	assert.Equal(t, payer, s.Payer)
	assert.Equal(t, uint64(100000000), s.FeeLamports)
	assert.Equal(t, "0.1", s.FeeAmount().String())
	assert.Equal(t, []string{"Service fee", "SPL Token"}, s.Instructions)
	assert.Equal(t, 1, s.Signers)
}

func TestDescribe_TransferElsewhereIsNotFee(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	s := Describe(newTx(t, payer, solana.NewWallet().PublicKey()), solana.NewWallet().PublicKey())
	assert.Zero(t, s.FeeLamports)
	assert.Equal(t, "System", s.Instructions[0])
}

func TestModelUpdate(t *testing.T) {
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		approved bool
		reason   string
	}{
		{"y approves", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true, ""},
		{"enter approves", tea.KeyMsg{Type: tea.KeyEnter}, true, ""},
		{"n rejects", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false, reasonRejected},
		{"esc rejects", tea.KeyMsg{Type: tea.KeyEsc}, false, reasonRejected},
		{"ctrl+c closes", tea.KeyMsg{Type: tea.KeyCtrlC}, false, reasonClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel("Approve", Summary{})
			assert.NotEmpty(t, m.View())

			next, cmd := m.Update(tt.msg)
			require.NotNil(t, cmd)
			d := next.(Model).Decision()
			assert.Equal(t, tt.approved, d.Approved)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Empty(t, next.(Model).View())
		})
	}
}

func TestModelUpdate_IgnoresOtherKeys(t *testing.T) {
	m := NewModel("Approve", Summary{})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.Equal(t, reasonClosed, next.(Model).Decision().Reason, "undecided prompt counts as closed")
}

func TestSigner_Approved(t *testing.T) {
	w := testWallet(t)
	treasury := solana.NewWallet().PublicKey()
	tx := newTx(t, w.PublicKey(), treasury)

	var seen Summary
	s := NewSigner(w, treasury, zaptest.NewLogger(t), WithPrompt(func(_ context.Context, _ string, summary Summary) (Decision, error) {
		seen = summary
		return Decision{Approved: true}, nil
	}))

	require.NoError(t, s.SignTransaction(context.Background(), tx))
	assert.Equal(t, w.PublicKey(), s.PublicKey())
	assert.Equal(t, uint64(100000000), seen.FeeLamports)
	require.Len(t, tx.Signatures, 1)
	assert.False(t, tx.Signatures[0].IsZero())
}

func TestSigner_Rejected(t *testing.T) {
	w := testWallet(t)
	tx := newTx(t, w.PublicKey(), solana.NewWallet().PublicKey())

	s := NewSigner(w, solana.PublicKey{}, zaptest.NewLogger(t), WithPrompt(func(context.Context, string, Summary) (Decision, error) {
		return Decision{Reason: reasonRejected}, nil
	}))

	err := s.SignTransaction(context.Background(), tx)
	var rejected *wallet.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, reasonRejected, rejected.Reason)
	assert.Empty(t, tx.Signatures)
}

func TestSigner_ContextCancelled(t *testing.T) {
	w := testWallet(t)
	tx := newTx(t, w.PublicKey(), solana.NewWallet().PublicKey())
	ctx, cancel := context.WithCancel(context.Background())

	s := NewSigner(w, solana.PublicKey{}, zaptest.NewLogger(t), WithPrompt(func(ctx context.Context, _ string, _ Summary) (Decision, error) {
		cancel()
		<-ctx.Done()
		return Decision{}, tea.ErrProgramKilled
	}))

	err := s.SignTransaction(ctx, tx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSigner_PromptFailureIsRejection(t *testing.T) {
	w := testWallet(t)
	tx := newTx(t, w.PublicKey(), solana.NewWallet().PublicKey())
	noTTY := errors.New("could not open a new TTY: open /dev/tty: no such device or address")

	s := NewSigner(w, solana.PublicKey{}, zaptest.NewLogger(t), WithPrompt(func(context.Context, string, Summary) (Decision, error) {
		return Decision{}, noTTY
	}))

	err := s.SignTransaction(context.Background(), tx)
	var rejected *wallet.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.ErrorIs(t, err, noTTY, "raw prompt error is kept as the cause")
	assert.Empty(t, tx.Signatures)
}
