package workflow

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/token-launcher/internal/config"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/rovshanmuradov/token-launcher/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReconciler_ResolvesUnknownOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	landed := solana.Signature{1}
	reverted := solana.Signature{2}
	stillUnknown := solana.Signature{3}
	otherNetwork := solana.Signature{4}

	seed := []struct {
		sig     solana.Signature
		network string
		status  string
	}{
		{landed, config.NetworkDevnet, models.StatusTimedOut},
		{reverted, config.NetworkDevnet, models.StatusTimedOut},
		{stillUnknown, config.NetworkDevnet, models.StatusPending},
		{otherNetwork, config.NetworkMainnet, models.StatusTimedOut},
	}
	for _, s := range seed {
		require.NoError(t, f.journal.Record(ctx, &models.Submission{
			Signature: s.sig.String(),
			Network:   s.network,
			Operation: "create_token",
			Status:    s.status,
		}))
	}

	f.client.StatusFunc = func(sig solana.Signature, _ int) (*rpc.SignatureStatusesResult, error) {
		switch sig {
		case landed:
			return &rpc.SignatureStatusesResult{Slot: 42, ConfirmationStatus: rpc.ConfirmationStatusFinalized}, nil
		case reverted:
			return &rpc.SignatureStatusesResult{
				Slot:               43,
				ConfirmationStatus: rpc.ConfirmationStatusConfirmed,
				Err:                map[string]interface{}{"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 1}}},
			}, nil
		}
		return nil, nil
	}

	r := NewReconciler(f.journal, f.events, zaptest.NewLogger(t), 2)
	report, err := r.Run(ctx, f.binding, 0)
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{Checked: 3, Confirmed: 1, Failed: 1, Pending: 1}, report)

	row, err := f.journal.Get(ctx, landed.String())
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, row.Status)
	assert.Equal(t, uint64(42), row.Slot)

	row, err = f.journal.Get(ctx, reverted.String())
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, row.Status)
	assert.NotEmpty(t, row.ErrorMessage)

	row, err = f.journal.Get(ctx, stillUnknown.String())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, row.Status)

	row, err = f.journal.Get(ctx, otherNetwork.String())
	require.NoError(t, err)
	assert.Equal(t, models.StatusTimedOut, row.Status, "other networks are left alone")

	resolved := 0
	for _, e := range f.events.events {
		if e.Type() == events.SubmissionResolved {
			resolved++
		}
	}
	assert.Equal(t, 2, resolved)
	assert.Zero(t, f.client.SentCount(), "reconcile never resubmits")
}

func TestReconciler_InvalidSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.journal.Record(ctx, &models.Submission{
		Signature: "not-a-signature",
		Network:   config.NetworkDevnet,
		Status:    models.StatusTimedOut,
	}))

	_, err := NewReconciler(f.journal, nil, zaptest.NewLogger(t), 0).Run(ctx, f.binding, 0)
	assert.Error(t, err)
}
