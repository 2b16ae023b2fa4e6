package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/token-launcher/internal/blockchain/programs/spltoken"
	"github.com/rovshanmuradov/token-launcher/internal/workflow"
	"github.com/urfave/cli/v2"
)

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new token with metadata and an initial supply",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Usage: "Load the request from a YAML file"},
			&cli.StringFlag{Name: "name", Usage: "Token name (up to 32 bytes)"},
			&cli.StringFlag{Name: "symbol", Usage: "Token symbol (up to 10 bytes)"},
			&cli.UintFlag{Name: "decimals", Value: 9, Usage: "Decimal places (0-9)"},
			&cli.StringFlag{Name: "supply", Value: "0", Usage: "Initial supply in whole tokens"},
			&cli.StringFlag{Name: "description", Usage: "Token description"},
			&cli.StringFlag{Name: "website", Usage: "Project website"},
			&cli.StringFlag{Name: "image", Usage: "Path to the token image"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			cmd, err := createFromFlags(c)
			if err != nil {
				return err
			}
			return execute(c, rt, cmd)
		}),
	}
}

func createFromFlags(c *cli.Context) (workflow.CreateTokenCommand, error) {
	if path := c.String("from"); path != "" {
		return workflow.LoadCreateRequest(path)
	}
	if c.Uint("decimals") > 255 {
		return workflow.CreateTokenCommand{}, fmt.Errorf("decimals out of range: %d", c.Uint("decimals"))
	}

	cmd := workflow.CreateTokenCommand{
		Name:        c.String("name"),
		Symbol:      c.String("symbol"),
		Description: c.String("description"),
		Website:     c.String("website"),
		Decimals:    uint8(c.Uint("decimals")),
		Supply:      c.String("supply"),
	}
	if path := c.String("image"); path != "" {
		img, err := workflow.LoadImage(path)
		if err != nil {
			return workflow.CreateTokenCommand{}, err
		}
		cmd.Image = img
	}
	return cmd, nil
}

func revokeCommand() *cli.Command {
	return &cli.Command{
		Name:      "revoke",
		Usage:     "Permanently revoke the mint or freeze authority of a token",
		ArgsUsage: "MINT_ADDRESS",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "authority", Aliases: []string{"a"}, Value: string(spltoken.AuthorityMint), Usage: "Authority to revoke: mint or freeze"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			mint, err := addressArg(c, 0, "mint address")
			if err != nil {
				return err
			}
			kind, err := spltoken.ParseAuthorityKind(c.String("authority"))
			if err != nil {
				return err
			}
			return execute(c, rt, workflow.RevokeAuthorityCommand{Mint: mint, Kind: kind})
		}),
	}
}

func updateMetadataCommand() *cli.Command {
	return &cli.Command{
		Name:      "update-metadata",
		Usage:     "Update some of a token's descriptive fields",
		ArgsUsage: "MINT_ADDRESS",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "New token name"},
			&cli.StringFlag{Name: "symbol", Usage: "New token symbol"},
			&cli.StringFlag{Name: "description", Usage: "New description"},
			&cli.StringFlag{Name: "website", Usage: "New website"},
			&cli.StringFlag{Name: "image", Usage: "Path to a new image"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			mint, err := addressArg(c, 0, "mint address")
			if err != nil {
				return err
			}

			cmd := workflow.UpdateMetadataCommand{
				Mint:        mint,
				Name:        optionalString(c, "name"),
				Symbol:      optionalString(c, "symbol"),
				Description: optionalString(c, "description"),
				Website:     optionalString(c, "website"),
			}
			if c.IsSet("image") {
				img, err := workflow.LoadImage(c.String("image"))
				if err != nil {
					return err
				}
				cmd.Image = &img
			}
			return execute(c, rt, cmd)
		}),
	}
}

func addCreatorCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-creator",
		Usage:     "Split creator attribution between your wallet and another address",
		ArgsUsage: "MINT_ADDRESS CREATOR_ADDRESS",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "share", Aliases: []string{"s"}, Required: true, Usage: "Creator's share in percent; you keep the rest"},
		},
		Action: withRuntime(func(c *cli.Context, rt *runtime) error {
			mint, err := addressArg(c, 0, "mint address")
			if err != nil {
				return err
			}
			creator, err := addressArg(c, 1, "creator address")
			if err != nil {
				return err
			}
			return execute(c, rt, workflow.AddCreatorCommand{Mint: mint, Creator: creator, Share: c.Int("share")})
		}),
	}
}

func execute(c *cli.Context, rt *runtime, cmd workflow.Command) error {
	svc, err := rt.service(c)
	if err != nil {
		return err
	}
	out, err := svc.Execute(c.Context, cmd)
	if out != nil {
		printOutcome(c, out)
	}
	return err
}

func addressArg(c *cli.Context, i int, what string) (solana.PublicKey, error) {
	if c.NArg() <= i {
		return solana.PublicKey{}, fmt.Errorf("%s is required", what)
	}
	pk, err := solana.PublicKeyFromBase58(c.Args().Get(i))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s: %w", what, err)
	}
	return pk, nil
}

func optionalString(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}
