// Package approval asks a human to confirm a transaction in the terminal
// before the wrapped signer signs it.
package approval

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/wallet"
	"go.uber.org/zap"
)

// PromptFunc shows summary and blocks until the user decides or ctx ends.
type PromptFunc func(ctx context.Context, title string, summary Summary) (Decision, error)

// Signer wraps another signer behind an approval prompt.
type Signer struct {
	inner    wallet.Signer
	treasury solana.PublicKey
	title    string
	prompt   PromptFunc
	logger   *zap.Logger
}

type Option func(*Signer)

// WithIO runs the prompt on the given terminal streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Signer) { s.prompt = TerminalPrompt(in, out) }
}

// WithPrompt replaces the terminal prompt.
func WithPrompt(p PromptFunc) Option {
	return func(s *Signer) { s.prompt = p }
}

// WithTitle sets the heading shown above the summary.
func WithTitle(title string) Option {
	return func(s *Signer) { s.title = title }
}

func NewSigner(inner wallet.Signer, treasury solana.PublicKey, logger *zap.Logger, opts ...Option) *Signer {
	s := &Signer{
		inner:    inner,
		treasury: treasury,
		title:    "Approve transaction",
		prompt:   TerminalPrompt(os.Stdin, os.Stdout),
		logger:   logger.Named("approval"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Signer) PublicKey() solana.PublicKey {
	return s.inner.PublicKey()
}

// SignTransaction prompts, then delegates to the wrapped signer on approval.
func (s *Signer) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	summary := Describe(tx, s.treasury)
	decision, err := s.prompt(ctx, s.title, summary)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Warn("approval prompt failed", zap.Error(err))
		return &wallet.RejectedError{Reason: "approval prompt failed", Err: err}
	}
	if !decision.Approved {
		s.logger.Info("transaction rejected", zap.String("reason", decision.Reason))
		return &wallet.RejectedError{Reason: decision.Reason}
	}

	s.logger.Debug("transaction approved",
		zap.String("payer", summary.Payer.String()),
		zap.Uint64("fee_lamports", summary.FeeLamports))
	return s.inner.SignTransaction(ctx, tx)
}

// TerminalPrompt runs the bubbletea prompt on in/out.
func TerminalPrompt(in io.Reader, out io.Writer) PromptFunc {
	return func(ctx context.Context, title string, summary Summary) (Decision, error) {
		p := tea.NewProgram(NewModel(title, summary),
			tea.WithContext(ctx),
			tea.WithInput(in),
			tea.WithOutput(out),
		)
		final, err := p.Run()
		if err != nil {
			return Decision{}, err
		}
		m, ok := final.(Model)
		if !ok {
			return Decision{}, fmt.Errorf("unexpected prompt model %T", final)
		}
		return m.Decision(), nil
	}
}
