// Package workflow runs the launcher's token operations: each one validates
// its input, optionally stores assets off-chain, builds a single transaction
// and drives it through signing, submission and confirmation.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc"
	soltx "github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/rovshanmuradov/token-launcher/internal/storage"
	"github.com/rovshanmuradov/token-launcher/internal/storage/models"
	"github.com/rovshanmuradov/token-launcher/internal/transaction"
	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/rovshanmuradov/token-launcher/internal/wallet"
	"go.uber.org/zap"
)

// Options wires a Service. Signer, Assets and Logger are required.
type Options struct {
	Signer  wallet.Signer
	Assets  *assets.Orchestrator
	Session *solbc.Session
	Journal storage.Journal
	Events  events.Publisher
	Metrics *soltx.Metrics
	Tx      soltx.Config
	// MaxRetries bounds resubmissions of a rejected create transaction.
	MaxRetries int
	// SkipNetworkCheck disables the genesis hash check before each workflow.
	SkipNetworkCheck bool
	Logger           *zap.Logger
}

// Service executes workflow commands. It holds no per-workflow state.
type Service struct {
	opts   Options
	bus    *CommandBus
	logger *zap.Logger
}

func NewService(opts Options) (*Service, error) {
	if opts.Signer == nil {
		return nil, errors.New("workflow: signer is required")
	}
	if opts.Assets == nil {
		return nil, errors.New("workflow: asset orchestrator is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("workflow: logger is required")
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	s := &Service{
		opts:   opts,
		bus:    NewCommandBus(opts.Logger),
		logger: opts.Logger.Named("workflow"),
	}
	s.bus.register(CreateTokenCommand{}, s.createToken)
	s.bus.register(RevokeAuthorityCommand{}, s.revokeAuthority)
	s.bus.register(UpdateMetadataCommand{}, s.updateMetadata)
	s.bus.register(AddCreatorCommand{}, s.addCreator)
	return s, nil
}

// Commands lists the supported command types.
func (s *Service) Commands() []string {
	return s.bus.RegisteredCommands()
}

// Execute runs cmd against a snapshot of the session's active network.
func (s *Service) Execute(ctx context.Context, cmd Command) (*Outcome, error) {
	if s.opts.Session == nil {
		return nil, errors.New("workflow: no network session configured")
	}
	return s.ExecuteOn(ctx, s.opts.Session.Current(), cmd)
}

// ExecuteOn runs cmd against binding. The returned Outcome is never nil;
// for failed and cancelled workflows the error is also returned.
func (s *Service) ExecuteOn(ctx context.Context, binding solbc.Binding, cmd Command) (*Outcome, error) {
	ex := s.newExecution(binding, cmd.GetType())
	ex.publish(events.WorkflowStartedEvent{
		BaseEvent:  events.NewBase(events.WorkflowStarted),
		WorkflowID: ex.id,
		Operation:  ex.op,
		Network:    binding.Profile.Name,
		Wallet:     s.opts.Signer.PublicKey().String(),
	})
	ex.step(events.StepValidating)

	out, err := s.bus.Send(ctx, ex, cmd)
	return s.finish(ex, out, err)
}

func (s *Service) finish(ex *execution, out *Outcome, err error) (*Outcome, error) {
	if out == nil {
		out = &Outcome{}
	}
	out.WorkflowID = ex.id
	out.Operation = ex.op
	out.Network = ex.binding.Profile.Name
	if out.Mint.IsZero() {
		out.Mint = ex.mint
	}
	if out.Signature.IsZero() {
		out.Signature = ex.signature
	}

	if err == nil {
		out.State = StateSucceeded
		ex.logger.Info("Workflow succeeded",
			zap.String("signature", out.Signature.String()),
			zap.String("mint", out.Mint.String()))
		ex.publish(events.WorkflowCompletedEvent{
			BaseEvent:   events.NewBase(events.WorkflowCompleted),
			WorkflowID:  ex.id,
			Operation:   ex.op,
			Network:     out.Network,
			Signature:   out.Signature.String(),
			Mint:        out.Mint.String(),
			MetadataURI: out.MetadataURI,
		})
		return out, nil
	}

	out.Err = err
	if types.KindOf(err) == types.KindUserCancelled {
		out.State = StateCancelled
		ex.logger.Info("Workflow cancelled", zap.Error(err))
		ex.publish(events.WorkflowCancelledEvent{
			BaseEvent:  events.NewBase(events.WorkflowCancelled),
			WorkflowID: ex.id,
			Operation:  ex.op,
			Reason:     types.UserMessage(err),
		})
		return out, err
	}

	out.State = StateFailed
	ex.logger.Error("Workflow failed",
		zap.String("kind", types.KindOf(err).String()),
		zap.Error(err))
	failed := events.WorkflowFailedEvent{
		BaseEvent:  events.NewBase(events.WorkflowFailed),
		WorkflowID: ex.id,
		Operation:  ex.op,
		Kind:       types.KindOf(err).String(),
		Error:      err.Error(),
	}
	if out.Submitted() {
		failed.Signature = out.Signature.String()
	}
	ex.publish(failed)
	return out, err
}

// execution is the per-invocation state of one workflow.
type execution struct {
	svc     *Service
	id      string
	op      string
	binding solbc.Binding
	fees    transaction.FeePolicy
	builder *soltx.Builder
	manager *soltx.Manager
	assets  *assets.Orchestrator
	logger  *zap.Logger

	mint        solana.PublicKey
	metadataURI string
	signature   solana.Signature
	networkOK   bool
}

func (s *Service) newExecution(binding solbc.Binding, op string) *execution {
	id := uuid.New().String()
	logger := s.logger.With(
		zap.String("operation", op),
		zap.String("workflow_id", id),
		zap.String("network", binding.Profile.Name),
	)

	ex := &execution{
		svc:     s,
		id:      id,
		op:      op,
		binding: binding,
		fees:    transaction.NewFeePolicy(binding.Profile),
		builder: soltx.NewBuilder(binding.Client, logger),
		logger:  logger,
	}
	ex.manager = soltx.NewManager(binding.Client, logger, s.opts.Tx, s.opts.Metrics).WithProgress(ex.onProgress)
	ex.assets = s.opts.Assets.Observe(func(assetType string) {
		if assetType == assets.AssetTypeImage {
			ex.step(events.StepUploadingImage)
			return
		}
		ex.step(events.StepUploadingMetadata)
	})
	return ex
}

func (ex *execution) payer() solana.PublicKey {
	return ex.svc.opts.Signer.PublicKey()
}

func (ex *execution) step(step events.Step) {
	ex.logger.Info(step.Message(), zap.String("step", string(step)))
	ex.publish(events.StepEvent{
		BaseEvent:  events.NewBase(events.WorkflowStep),
		WorkflowID: ex.id,
		Operation:  ex.op,
		Step:       step,
		Message:    step.Message(),
	})
}

func (ex *execution) publish(event events.Event) {
	if ex.svc.opts.Events == nil {
		return
	}
	if err := ex.svc.opts.Events.Publish(event); err != nil {
		ex.logger.Warn("Failed to publish event", zap.String("event_type", string(event.Type())), zap.Error(err))
	}
}

func (ex *execution) onProgress(stage soltx.Stage, sig solana.Signature) {
	switch stage {
	case soltx.StageSigning:
		ex.step(events.StepSigning)
	case soltx.StageSending:
		ex.step(events.StepSending)
	case soltx.StageConfirming:
		ex.signature = sig
		ex.step(events.StepConfirming)
		ex.journal(context.Background(), sig, models.StatusPending, "", 0)
	}
}

// checkNetwork verifies the endpoint once per execution.
func (ex *execution) checkNetwork(ctx context.Context) error {
	if ex.svc.opts.SkipNetworkCheck || ex.networkOK {
		return nil
	}
	if err := solbc.CheckNetwork(ctx, ex.binding.Client, ex.binding.Profile); err != nil {
		if errors.Is(err, solbc.ErrNetworkMismatch) {
			return types.NewPreconditionError(ex.op, types.ReasonNetworkMismatch, "%v", err)
		}
		return fmt.Errorf("%s: %w", ex.op, err)
	}
	ex.networkOK = true
	return nil
}

// submit builds the transaction with the operation fee first and runs it
// through the signing pipeline.
func (ex *execution) submit(ctx context.Context, ops []solana.Instruction, local []solana.PrivateKey) (*soltx.SubmissionResult, error) {
	if err := ex.checkNetwork(ctx); err != nil {
		return nil, err
	}

	ex.step(events.StepBuilding)
	payer := ex.payer()
	fee, err := ex.fees.Instruction(transaction.Operation(ex.op), payer)
	if err != nil {
		return nil, err
	}
	unsigned, err := ex.builder.Build(ctx, payer, fee, ops)
	if err != nil {
		return nil, err
	}

	result, err := ex.manager.SignAndSubmit(ctx, unsigned, local, ex.svc.opts.Signer)
	if result != nil {
		ex.signature = result.Signature
		ex.journalResult(result, err)
	}
	return result, err
}

func (ex *execution) journalResult(result *soltx.SubmissionResult, err error) {
	status := models.StatusConfirmed
	errMsg := ""
	switch result.Outcome {
	case soltx.OutcomeFailed:
		status = models.StatusFailed
		if err != nil {
			errMsg = err.Error()
		}
	case soltx.OutcomeTimedOut:
		status = models.StatusTimedOut
	}
	ex.journal(context.Background(), result.Signature, status, errMsg, result.Slot)
}

// journal records the submission. Journal failures are logged; the on-chain
// outcome stands either way.
func (ex *execution) journal(ctx context.Context, sig solana.Signature, status, errMsg string, slot uint64) {
	j := ex.svc.opts.Journal
	if j == nil || sig.IsZero() {
		return
	}
	err := j.Record(ctx, &models.Submission{
		Signature:     sig.String(),
		Network:       ex.binding.Profile.Name,
		Operation:     ex.op,
		WalletAddress: ex.payer().String(),
		Mint:          keyString(ex.mint),
		MetadataURI:   ex.metadataURI,
		Status:        status,
		ErrorMessage:  errMsg,
		Slot:          slot,
	})
	if err != nil {
		ex.logger.Error("Failed to journal submission",
			zap.String("signature", sig.String()),
			zap.String("status", status),
			zap.Error(err))
	}
}

func keyString(pk solana.PublicKey) string {
	if pk.IsZero() {
		return ""
	}
	return pk.String()
}

func outcomeFrom(result *soltx.SubmissionResult) *Outcome {
	if result == nil {
		return &Outcome{}
	}
	return &Outcome{Signature: result.Signature, Slot: result.Slot}
}
