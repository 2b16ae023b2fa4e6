package main

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc"
	soltx "github.com/rovshanmuradov/token-launcher/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/token-launcher/internal/storage"
	"github.com/rovshanmuradov/token-launcher/internal/workflow"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func checkNetworkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-network",
		Usage: "Verify that the RPC endpoint serves the selected network",
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			binding := rt.session.Current()
			err := solbc.CheckNetwork(c.Context, binding.Client, binding.Profile)

			result := map[string]interface{}{
				"network":      binding.Profile.Name,
				"rpc_url":      binding.Profile.RPCURL,
				"genesis_hash": binding.Profile.GenesisHash.String(),
				"ok":           err == nil,
			}
			if err != nil {
				result["error"] = err.Error()
			}
			if c.Bool("json") {
				printJSON(result)
			} else if err == nil {
				fmt.Printf("✓ %s at %s matches genesis %s\n", binding.Profile.Name, binding.Profile.RPCURL, binding.Profile.GenesisHash)
			}

			if errors.Is(err, solbc.ErrNetworkMismatch) {
				return cli.Exit(fmt.Sprintf("✗ %v", err), 1)
			}
			return err
		}),
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show the journaled and live status of a submitted transaction",
		ArgsUsage: "SIGNATURE",
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			if c.NArg() < 1 {
				return fmt.Errorf("signature is required")
			}
			sig, err := solana.SignatureFromBase58(c.Args().Get(0))
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}

			result := map[string]interface{}{"signature": sig.String()}
			row, err := rt.journal.Get(c.Context, sig.String())
			switch {
			case err == nil:
				result["journal"] = row
			case errors.Is(err, storage.ErrNotFound):
				rt.log.Debug("Signature not in journal", zap.String("signature", sig.String()))
			default:
				return err
			}

			binding := rt.session.Current()
			monitor := soltx.NewMonitor(binding.Client, rt.log.Logger, soltx.DefaultConfig())
			live, err := monitor.GetTransactionStatus(c.Context, sig)
			if err != nil {
				return err
			}
			result["network"] = binding.Profile.Name
			result["live"] = live

			if c.Bool("json") {
				printJSON(result)
				return nil
			}
			fmt.Printf("Signature: %s\n", sig)
			if row != nil {
				fmt.Printf("Journal:   %s (%s, %s)\n", row.Status, row.Operation, row.Network)
			}
			fmt.Printf("Live:      %s", live.Status)
			if live.Slot > 0 {
				fmt.Printf(" at slot %d", live.Slot)
			}
			if live.Error != "" {
				fmt.Printf(" (%s)", live.Error)
			}
			fmt.Println()
			return nil
		}),
	}
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "Resolve journaled transactions whose outcome was unknown",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 100, Usage: "Maximum rows per status to check"},
			&cli.IntFlag{Name: "concurrency", Value: 4, Usage: "Parallel status lookups"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			r := workflow.NewReconciler(rt.journal, rt.bus, rt.log.Logger, c.Int("concurrency"))
			report, err := r.Run(c.Context, rt.session.Current(), c.Int("limit"))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				printJSON(report)
				return nil
			}
			fmt.Printf("Checked %d: %d confirmed, %d failed, %d still pending\n",
				report.Checked, report.Confirmed, report.Failed, report.Pending)
			return nil
		}),
	}
}
