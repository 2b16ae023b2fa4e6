package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/blockchaintest"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/rovshanmuradov/token-launcher/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type rejectingSigner struct {
	pub solana.PublicKey
}

func (s rejectingSigner) PublicKey() solana.PublicKey { return s.pub }

func (s rejectingSigner) SignTransaction(context.Context, *solana.Transaction) error {
	return &wallet.RejectedError{Reason: "User rejected the request"}
}

type blockingSigner struct {
	pub solana.PublicKey
}

func (s blockingSigner) PublicKey() solana.PublicKey { return s.pub }

func (s blockingSigner) SignTransaction(ctx context.Context, _ *solana.Transaction) error {
	<-ctx.Done()
	return ctx.Err()
}

type failingSigner struct {
	pub solana.PublicKey
	err error
}

func (s failingSigner) PublicKey() solana.PublicKey { return s.pub }

func (s failingSigner) SignTransaction(context.Context, *solana.Transaction) error {
	return s.err
}

// tamperingSigner signs, then swaps the blockhash.
type tamperingSigner struct {
	w *wallet.Wallet
}

func (s tamperingSigner) PublicKey() solana.PublicKey { return s.w.PublicKey() }

func (s tamperingSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	tx.Message.RecentBlockhash = solana.Hash{9, 9, 9}
	return s.w.SignTransaction(ctx, tx)
}

type fixture struct {
	client  *blockchaintest.Client
	builder *Builder
	manager *Manager
	payer   *wallet.Wallet
	mint    solana.PrivateKey
	reg     *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	client := blockchaintest.NewClient()
	payer, err := wallet.FromBytes(solana.NewWallet().PrivateKey)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()

	cfg := Config{
		ConfirmationTimeout: 200 * time.Millisecond,
		PollInterval:        10 * time.Millisecond,
		SendMaxElapsed:      50 * time.Millisecond,
	}
	return &fixture{
		client:  client,
		builder: NewBuilder(client, logger),
		manager: NewManager(client, logger, cfg, NewMetrics(reg)),
		payer:   payer,
		mint:    solana.NewWallet().PrivateKey,
		reg:     reg,
	}
}

func (f *fixture) build(t *testing.T) *Unsigned {
	t.Helper()
	fee := system.NewTransferInstruction(10000000, f.payer.PublicKey(), solana.NewWallet().PublicKey()).Build()
	create := system.NewCreateAccountInstruction(1461600, 82, solana.TokenProgramID, f.payer.PublicKey(), f.mint.PublicKey()).Build()
	u, err := f.builder.Build(context.Background(), f.payer.PublicKey(), fee, []solana.Instruction{create})
	require.NoError(t, err)
	return u
}

func TestSignAndSubmit_Confirmed(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)

	res, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, f.payer)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	assert.False(t, res.Signature.IsZero())
	assert.Equal(t, uint64(100), res.Slot)

	sent := f.client.LastSent()
	require.NotNil(t, sent)
	require.Len(t, sent.Signatures, 2)
	assert.Equal(t, sent.Signatures[0], res.Signature, "fee payer signature identifies the transaction")
	assert.NoError(t, f.manager.validator.ValidateSignatures(sent))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.manager.metrics.submissions.WithLabelValues(string(OutcomeConfirmed))))
}

func TestSignAndSubmit_LocalKeyNotRequired(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)

	_, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{solana.NewWallet().PrivateKey}, f.payer)
	assert.ErrorIs(t, err, types.ErrSigningMismatch)
	assert.Zero(t, f.client.SentCount(), "nothing is broadcast after a signing mismatch")
}

func TestSignAndSubmit_MissingLocalSignature(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)

	_, err := f.manager.SignAndSubmit(context.Background(), u, nil, f.payer)
	assert.ErrorIs(t, err, types.ErrSigningMismatch)
	assert.Zero(t, f.client.SentCount())
}

func TestSignAndSubmit_WalletRejects(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)

	_, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, rejectingSigner{pub: f.payer.PublicKey()})
	assert.ErrorIs(t, err, types.ErrUserCancelled)
	assert.Equal(t, "Transaction cancelled by user", types.UserMessage(err))
	assert.Zero(t, f.client.SentCount())
}

func TestSignAndSubmit_SigningCancelledByContext(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.manager.SignAndSubmit(ctx, u, []solana.PrivateKey{f.mint}, blockingSigner{pub: f.payer.PublicKey()})
	assert.ErrorIs(t, err, types.ErrUserCancelled)
	assert.Zero(t, f.client.SentCount())
}

func TestSignAndSubmit_WalletAltersMessage(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)

	_, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, tamperingSigner{w: f.payer})
	assert.ErrorIs(t, err, types.ErrSigningMismatch)
	assert.Zero(t, f.client.SentCount())
}

func TestSignAndSubmit_WrongWallet(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	other, err := wallet.FromBytes(solana.NewWallet().PrivateKey)
	require.NoError(t, err)

	_, err = f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, other)
	assert.ErrorIs(t, err, types.ErrSigningMismatch)
}

func TestSignAndSubmit_Rejected(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	rpcErr := &jsonrpc.RPCError{Code: -32002, Message: "Transaction simulation failed: Blockhash not found"}
	f.client.SendFunc = func(*solana.Transaction) (solana.Signature, error) { return solana.Signature{}, rpcErr }

	_, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, f.payer)
	assert.ErrorIs(t, err, types.ErrSubmissionRejected)
	assert.ErrorIs(t, err, rpcErr, "raw RPC error is preserved")
	assert.Contains(t, err.Error(), "blockhash_not_found")
	assert.Equal(t, 1, f.client.SentCount(), "rpc rejections are not retried")
}

func TestSignAndSubmit_TransportErrorRetried(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	calls := 0
	f.client.SendFunc = func(tx *solana.Transaction) (solana.Signature, error) {
		calls++
		if calls == 1 {
			return solana.Signature{}, errors.New("connection reset by peer")
		}
		return tx.Signatures[0], nil
	}
	f.manager.config.SendMaxElapsed = 5 * time.Second

	res, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, f.payer)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	assert.Equal(t, 2, calls)
}

func TestSignAndSubmit_TransportErrorsExhaustedPollsSignature(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	f.client.SendFunc = func(*solana.Transaction) (solana.Signature, error) {
		return solana.Signature{}, errors.New("read tcp: connection reset by peer")
	}

	res, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, f.payer)
	require.NoError(t, err, "the transaction landed although every response was lost")
	require.NotNil(t, res)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	assert.Equal(t, u.Tx.Signatures[0], res.Signature)
	_, statusCalls := f.client.Calls()
	assert.Positive(t, statusCalls)
	assert.Zero(t, testutil.ToFloat64(f.manager.metrics.rejections.WithLabelValues("unknown")))
}

func TestSignAndSubmit_TransportErrorsExhaustedNeverLandedIsTimedOut(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	f.client.SendFunc = func(*solana.Transaction) (solana.Signature, error) {
		return solana.Signature{}, errors.New("read tcp: connection reset by peer")
	}
	f.client.StatusFunc = func(solana.Signature, int) (*rpc.SignatureStatusesResult, error) {
		return nil, nil
	}

	res, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, f.payer)
	require.Error(t, err)
	assert.Equal(t, types.KindTimedOut, types.KindOf(err))
	assert.NotErrorIs(t, err, types.ErrSubmissionRejected)
	require.NotNil(t, res)
	assert.Equal(t, OutcomeTimedOut, res.Outcome)
	assert.Equal(t, u.Tx.Signatures[0], res.Signature, "signature is reported so the outcome can be resolved later")
}

func TestSignAndSubmit_WalletFailureIsCancelled(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	cause := errors.New("hardware wallet disconnected")

	_, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, failingSigner{pub: f.payer.PublicKey(), err: cause})
	assert.Equal(t, types.KindUserCancelled, types.KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Zero(t, f.client.SentCount())
}

func TestSignAndSubmit_FailedOnChain(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	f.client.StatusFunc = func(solana.Signature, int) (*rpc.SignatureStatusesResult, error) {
		return &rpc.SignatureStatusesResult{
			Slot:               77,
			ConfirmationStatus: rpc.ConfirmationStatusProcessed,
			Err:                map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 1}}},
		}, nil
	}

	res, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, f.payer)
	require.Error(t, err)
	assert.Equal(t, types.KindFailed, types.KindOf(err))
	require.NotNil(t, res)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestSignAndSubmit_TimedOut(t *testing.T) {
	f := newFixture(t)
	u := f.build(t)
	f.client.StatusFunc = func(solana.Signature, int) (*rpc.SignatureStatusesResult, error) {
		return nil, nil
	}

	res, err := f.manager.SignAndSubmit(context.Background(), u, []solana.PrivateKey{f.mint}, f.payer)
	require.Error(t, err)
	assert.Equal(t, types.KindTimedOut, types.KindOf(err))
	assert.NotEqual(t, types.KindFailed, types.KindOf(err))
	require.NotNil(t, res)
	assert.Equal(t, OutcomeTimedOut, res.Outcome)
	assert.False(t, res.Signature.IsZero(), "signature is reported so the caller can check later")
}

func TestMonitor_TransientPollErrorsAreTolerated(t *testing.T) {
	f := newFixture(t)
	f.client.StatusFunc = func(_ solana.Signature, call int) (*rpc.SignatureStatusesResult, error) {
		if call < 3 {
			return nil, errors.New("429 too many requests")
		}
		return &rpc.SignatureStatusesResult{Slot: 5, ConfirmationStatus: rpc.ConfirmationStatusFinalized}, nil
	}

	res, err := f.manager.Monitor().AwaitConfirmation(context.Background(), solana.Signature{1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, res.Outcome)
	_, statusCalls := f.client.Calls()
	assert.GreaterOrEqual(t, statusCalls, 3)
}

func TestMonitor_GetTransactionStatus(t *testing.T) {
	f := newFixture(t)

	st, err := f.manager.Monitor().GetTransactionStatus(context.Background(), solana.Signature{1})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", st.Status)

	f.client.StatusFunc = func(solana.Signature, int) (*rpc.SignatureStatusesResult, error) { return nil, nil }
	st, err = f.manager.Monitor().GetTransactionStatus(context.Background(), solana.Signature{1})
	require.NoError(t, err)
	assert.Equal(t, "pending", st.Status)
}
