package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "token-launcher",
		Usage: "Create and manage SPL tokens on Solana",
		Description: `Mints fungible tokens with Metaplex metadata, revokes mint and freeze
authorities, and updates token metadata. Every operation is a single
transaction that also carries the platform fee.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Commands: []*cli.Command{
			createCommand(),
			revokeCommand(),
			updateMetadataCommand(),
			addCreatorCommand(),
			checkNetworkCommand(),
			statusCommand(),
			reconcileCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML or JSON config file",
				EnvVars: []string{"TOKEN_LAUNCHER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "network",
				Aliases: []string{"n"},
				Usage:   "Network profile to use (devnet or mainnet)",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Sign without the approval prompt",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Keep uploaded assets in memory instead of the configured store",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output results as JSON",
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		os.Exit(report(err))
	}
}

// report prints err for the user and returns the process exit code.
func report(err error) int {
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		fmt.Fprintln(os.Stderr, err.Error())
		return exit.ExitCode()
	}

	switch types.KindOf(err) {
	case types.KindInternal:
		fmt.Fprintln(os.Stderr, "Error:", err)
	case types.KindUserCancelled:
		fmt.Fprintln(os.Stderr, types.UserMessage(err))
		return 2
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n  %v\n", types.UserMessage(err), err)
	}
	if types.KindOf(err) == types.KindTimedOut {
		fmt.Fprintln(os.Stderr, "The transaction may still land. Run `token-launcher status <signature>` or `token-launcher reconcile` later instead of retrying.")
		return 3
	}
	return 1
}
