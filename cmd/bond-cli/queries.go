package main

import (
	"context"
	"fmt"
	"io"
)

func runShowConfig(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("config", stderr)
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	view, err := newLedgerClient(rpcEndpoint).Config(context.Background())
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, view)
	return 0
}

func runShowOwner(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("owner", stderr)
	walletFlag := fs.String("wallet", "", "wallet address")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	wallet, err := parseAddressFlag("wallet", *walletFlag)
	if err != nil {
		return fail(stderr, err)
	}
	view, err := newLedgerClient(rpcEndpoint).Owner(context.Background(), wallet)
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, view)
	return 0
}

func runShowBond(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("bond", stderr)
	walletFlag := fs.String("wallet", "", "wallet address")
	index := fs.Uint("index", 0, "bond index")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if *index > 255 {
		fmt.Fprintln(stderr, "Error: --index must be between 0 and 255")
		return 1
	}
	wallet, err := parseAddressFlag("wallet", *walletFlag)
	if err != nil {
		return fail(stderr, err)
	}
	view, err := newLedgerClient(rpcEndpoint).Position(context.Background(), wallet, uint8(*index))
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, view)
	return 0
}

func runPreview(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("preview", stderr)
	walletFlag := fs.String("wallet", "", "wallet address")
	index := fs.Uint("index", 0, "bond index")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if *index > 255 {
		fmt.Fprintln(stderr, "Error: --index must be between 0 and 255")
		return 1
	}
	wallet, err := parseAddressFlag("wallet", *walletFlag)
	if err != nil {
		return fail(stderr, err)
	}
	preview, err := newLedgerClient(rpcEndpoint).Preview(context.Background(), wallet, uint8(*index))
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, preview)
	return 0
}
