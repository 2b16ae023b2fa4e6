// internal/workflow/reconcile.go
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc"
	soltx "github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/rovshanmuradov/token-launcher/internal/storage"
	"github.com/rovshanmuradov/token-launcher/internal/storage/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultReconcileConcurrency = 4

// ReconcileReport summarizes one reconcile pass.
type ReconcileReport struct {
	Checked   int
	Confirmed int
	Failed    int
	Pending   int
}

// Reconciler re-queries journaled submissions whose outcome was unknown and
// records their final status. It never resubmits.
type Reconciler struct {
	journal     storage.Journal
	events      events.Publisher
	logger      *zap.Logger
	concurrency int
}

func NewReconciler(journal storage.Journal, publisher events.Publisher, logger *zap.Logger, concurrency int) *Reconciler {
	if concurrency <= 0 {
		concurrency = defaultReconcileConcurrency
	}
	return &Reconciler{
		journal:     journal,
		events:      publisher,
		logger:      logger.Named("reconciler"),
		concurrency: concurrency,
	}
}

// Run checks every timed-out or pending submission on binding's network.
func (r *Reconciler) Run(ctx context.Context, binding solbc.Binding, limit int) (*ReconcileReport, error) {
	var rows []*models.Submission
	for _, status := range []string{models.StatusTimedOut, models.StatusPending} {
		found, err := r.journal.ListByStatus(ctx, status, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s submissions: %w", status, err)
		}
		for _, row := range found {
			if row.Network == binding.Profile.Name {
				rows = append(rows, row)
			}
		}
	}

	monitor := soltx.NewMonitor(binding.Client, r.logger, soltx.DefaultConfig())
	report := &ReconcileReport{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			status, err := r.resolve(gctx, monitor, row)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			report.Checked++
			switch status {
			case models.StatusConfirmed:
				report.Confirmed++
			case models.StatusFailed:
				report.Failed++
			default:
				report.Pending++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	r.logger.Info("Reconcile finished",
		zap.String("network", binding.Profile.Name),
		zap.Int("checked", report.Checked),
		zap.Int("confirmed", report.Confirmed),
		zap.Int("failed", report.Failed),
		zap.Int("pending", report.Pending))
	return report, nil
}

func (r *Reconciler) resolve(ctx context.Context, monitor *soltx.Monitor, row *models.Submission) (string, error) {
	sig, err := solana.SignatureFromBase58(row.Signature)
	if err != nil {
		return "", fmt.Errorf("journal holds invalid signature %q: %w", row.Signature, err)
	}
	st, err := monitor.GetTransactionStatus(ctx, sig)
	if err != nil {
		return "", err
	}

	var status string
	switch st.Status {
	case "confirmed", "finalized":
		status = models.StatusConfirmed
	case "failed":
		status = models.StatusFailed
	default:
		return row.Status, nil
	}

	if err := r.journal.UpdateStatus(ctx, row.Signature, status, st.Error, st.Slot); err != nil {
		return "", fmt.Errorf("failed to update %s: %w", row.Signature, err)
	}
	r.logger.Info("Submission resolved",
		zap.String("signature", row.Signature),
		zap.String("operation", row.Operation),
		zap.String("status", status))

	if r.events != nil {
		if err := r.events.Publish(events.SubmissionResolvedEvent{
			BaseEvent: events.NewBase(events.SubmissionResolved),
			Signature: row.Signature,
			Status:    status,
			Slot:      st.Slot,
		}); err != nil {
			r.logger.Warn("Failed to publish event", zap.Error(err))
		}
	}
	return status, nil
}
