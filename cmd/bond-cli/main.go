package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
	"github.com/WillShirley13/testudo-bonds/rpc"
)

// ledgerClient is the part of rpc.Client the commands use.
type ledgerClient interface {
	Submit(ctx context.Context, tx *types.Transaction) (*rpc.SubmitResult, error)
	Head(ctx context.Context) (*rpc.HeadView, error)
	Config(ctx context.Context) (*rpc.ConfigView, error)
	Owner(ctx context.Context, wallet crypto.Address) (*rpc.OwnerView, error)
	Position(ctx context.Context, wallet crypto.Address, index uint8) (*rpc.PositionView, error)
	Preview(ctx context.Context, wallet crypto.Address, index uint8) (*bonds.ClaimPreview, error)
}

var (
	rpcEndpoint = defaultRPCEndpoint()
	programID   = strings.TrimSpace(os.Getenv("TESTUDO_PROGRAM_ID"))

	newLedgerClient = func(endpoint string) ledgerClient { return rpc.NewClient(endpoint, nil) }
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	args, err := applyGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage())
		return 1
	}

	switch args[0] {
	case "generate-key":
		return runGenerateKey(args[1:], stdout, stderr)
	case "init-config":
		return runInitConfig(args[1:], stdout, stderr)
	case "create-owner":
		return runCreateOwner(args[1:], stdout, stderr)
	case "open-bond":
		return runOpenBond(args[1:], stdout, stderr)
	case "claim":
		return runClaim(args[1:], stdout, stderr)
	case "update-config":
		return runUpdateConfig(args[1:], stdout, stderr)
	case "config":
		return runShowConfig(args[1:], stdout, stderr)
	case "owner":
		return runShowOwner(args[1:], stdout, stderr)
	case "bond":
		return runShowBond(args[1:], stdout, stderr)
	case "preview":
		return runPreview(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage())
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, usage())
		return 1
	}
}

func usage() string {
	return strings.TrimSpace(`Usage:
  bond-cli [--rpc URL] [--program ADDRESS] <command> [flags]

Commands:
  generate-key   Create a new key file
  init-config    Create the ledger configuration (authority, treasury and team sign)
  create-owner   Create the owner record for a wallet
  open-bond      Deposit into a new bond position
  claim          Claim rewards from a position
  update-config  Replace configuration fields (authority signs)
  config         Show the ledger configuration
  owner          Show a wallet's owner record
  bond           Show a bond position
  preview        Show what a claim would settle now
`)
}

func defaultRPCEndpoint() string {
	if v := strings.TrimSpace(os.Getenv("TESTUDO_RPC_URL")); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// applyGlobalFlags strips --rpc and --program from args wherever they appear.
func applyGlobalFlags(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		handled := false
		for _, name := range []string{"rpc", "program"} {
			target := &rpcEndpoint
			if name == "program" {
				target = &programID
			}
			switch {
			case arg == "--"+name:
				if i+1 >= len(args) {
					return nil, fmt.Errorf("missing value for --%s", name)
				}
				*target = args[i+1]
				i++
				handled = true
			case strings.HasPrefix(arg, "--"+name+"="):
				*target = strings.TrimPrefix(arg, "--"+name+"=")
				handled = true
			}
		}
		if !handled {
			out = append(out, arg)
		}
	}
	return out, nil
}

func programAddress() (crypto.Address, error) {
	if programID == "" {
		return crypto.Address{}, errors.New("program id required: pass --program or set TESTUDO_PROGRAM_ID")
	}
	return crypto.ParseAddress(programID)
}

func parseAddressFlag(name, value string) (crypto.Address, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return crypto.Address{}, fmt.Errorf("--%s is required", name)
	}
	addr, err := crypto.ParseAddress(trimmed)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("--%s: %w", name, err)
	}
	return addr, nil
}

func loadKeyFlag(name, path string) (*crypto.PrivateKey, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	key, err := crypto.LoadKeyFile(trimmed)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return key, nil
}

func fail(stderr io.Writer, err error) int {
	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.Code >= 0 {
		fmt.Fprintf(stderr, "Error: %s (code %d: %s)\n", rpcErr.Message, rpcErr.Code, bonds.ErrorCode(rpcErr.Code))
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func writeJSON(stdout io.Writer, v interface{}) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// submit signs ins with keys against the node's newest commit and posts it.
func submit(ctx context.Context, client ledgerClient, ins bonds.Instruction, keys ...*crypto.PrivateKey) (*rpc.SubmitResult, error) {
	data, err := bonds.Encode(ins)
	if err != nil {
		return nil, err
	}
	head, err := client.Head(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch head: %w", err)
	}
	tx := &types.Transaction{RecentCommit: head.Hash, Instruction: data, Accounts: ins.Accounts()}
	for _, key := range keys {
		if err := tx.Sign(key); err != nil {
			return nil, err
		}
	}
	return client.Submit(ctx, tx)
}
