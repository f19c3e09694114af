package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/WillShirley13/testudo-bonds/crypto"
	"github.com/WillShirley13/testudo-bonds/native/bonds"
)

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string, stderr io.Writer) bool {
	if err := fs.Parse(args); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(stderr, "Error: unexpected positional arguments")
		return false
	}
	return true
}

func runGenerateKey(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("generate-key", stderr)
	out := fs.String("out", "wallet.json", "path of the key file to write")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return fail(stderr, err)
	}
	if err := crypto.SaveKeyFile(*out, key); err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "Wrote %s\nAddress: %s\nBase58:  %s\n", *out, key.Address(), key.Address().Base58())
	return 0
}

func runInitConfig(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("init-config", stderr)
	authorityPath := fs.String("authority", "", "authority key file")
	treasuryPath := fs.String("treasury", "", "treasury wallet key file")
	teamPath := fs.String("team", "", "team wallet key file")
	mintFlag := fs.String("mint", "", "value mint address")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	program, err := programAddress()
	if err != nil {
		return fail(stderr, err)
	}
	mint, err := parseAddressFlag("mint", *mintFlag)
	if err != nil {
		return fail(stderr, err)
	}
	keys := make([]*crypto.PrivateKey, 0, 3)
	for _, kf := range []struct{ name, path string }{
		{"authority", *authorityPath},
		{"treasury", *treasuryPath},
		{"team", *teamPath},
	} {
		key, err := loadKeyFlag(kf.name, kf.path)
		if err != nil {
			return fail(stderr, err)
		}
		keys = append(keys, key)
	}

	op, err := bonds.BuildInitializeConfig(program, keys[0].Address(), keys[1].Address(), keys[2].Address(), mint)
	if err != nil {
		return fail(stderr, err)
	}
	res, err := submit(context.Background(), newLedgerClient(rpcEndpoint), op, keys...)
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, res)
	return 0
}

func runCreateOwner(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("create-owner", stderr)
	keyPath := fs.String("key", "", "wallet key file")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	program, err := programAddress()
	if err != nil {
		return fail(stderr, err)
	}
	wallet, err := loadKeyFlag("key", *keyPath)
	if err != nil {
		return fail(stderr, err)
	}
	op, err := bonds.BuildOpenOwner(program, wallet.Address())
	if err != nil {
		return fail(stderr, err)
	}
	res, err := submit(context.Background(), newLedgerClient(rpcEndpoint), op, wallet)
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, res)
	return 0
}

func runOpenBond(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("open-bond", stderr)
	keyPath := fs.String("key", "", "wallet key file")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	program, err := programAddress()
	if err != nil {
		return fail(stderr, err)
	}
	wallet, err := loadKeyFlag("key", *keyPath)
	if err != nil {
		return fail(stderr, err)
	}

	ctx := context.Background()
	client := newLedgerClient(rpcEndpoint)
	cfg, err := client.Config(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	owner, err := client.Owner(ctx, wallet.Address())
	if err != nil {
		return fail(stderr, err)
	}
	op, err := bonds.BuildOpenBond(program, wallet.Address(), owner.Owner, cfg.Config)
	if err != nil {
		return fail(stderr, err)
	}
	res, err := submit(ctx, client, op, wallet)
	if err != nil {
		return fail(stderr, err)
	}
	fmt.Fprintf(stdout, "Opened bond %d\n", owner.Owner.NextBondIndex)
	writeJSON(stdout, res)
	return 0
}

func runClaim(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("claim", stderr)
	keyPath := fs.String("key", "", "wallet key file")
	index := fs.Uint("index", 0, "bond index")
	autoCompound := fs.Bool("auto-compound", false, "reinvest part of the reward into a new bond")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if *index > 255 {
		fmt.Fprintln(stderr, "Error: --index must be between 0 and 255")
		return 1
	}
	program, err := programAddress()
	if err != nil {
		return fail(stderr, err)
	}
	wallet, err := loadKeyFlag("key", *keyPath)
	if err != nil {
		return fail(stderr, err)
	}

	ctx := context.Background()
	client := newLedgerClient(rpcEndpoint)
	cfg, err := client.Config(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	owner, err := client.Owner(ctx, wallet.Address())
	if err != nil {
		return fail(stderr, err)
	}
	op, err := bonds.BuildClaim(program, wallet.Address(), uint8(*index), *autoCompound, owner.Owner, cfg.Config)
	if err != nil {
		return fail(stderr, err)
	}
	res, err := submit(ctx, client, op, wallet)
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, res)
	return 0
}

func runUpdateConfig(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("update-config", stderr)
	keyPath := fs.String("key", "", "authority key file")
	pause := fs.Bool("pause", false, "pause bond operations")
	unpause := fs.Bool("unpause", false, "resume bond operations")
	rate := fs.Uint64("rate", 0, "daily emission rate in smallest units")
	limit := fs.Uint64("cap", 0, "maximum emission per bond in smallest units")
	penalty := fs.Int("penalty", -1, "early claim penalty in basis points")
	split := fs.String("split", "", "deposit split as pool,treasury,team basis points")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if *pause && *unpause {
		fmt.Fprintln(stderr, "Error: --pause and --unpause are mutually exclusive")
		return 1
	}
	program, err := programAddress()
	if err != nil {
		return fail(stderr, err)
	}
	authority, err := loadKeyFlag("key", *keyPath)
	if err != nil {
		return fail(stderr, err)
	}

	ctx := context.Background()
	client := newLedgerClient(rpcEndpoint)
	current, err := client.Config(ctx)
	if err != nil {
		return fail(stderr, err)
	}
	next := *current.Config
	switch {
	case *pause:
		next.Paused = true
	case *unpause:
		next.Paused = false
	}
	if *rate > 0 {
		next.DailyEmissionRate = *rate
	}
	if *limit > 0 {
		next.MaxEmissionPerBond = *limit
	}
	if *penalty >= 0 {
		if *penalty > bonds.BasisPoints {
			fmt.Fprintf(stderr, "Error: --penalty must not exceed %d\n", bonds.BasisPoints)
			return 1
		}
		next.ClaimPenaltyBps = uint16(*penalty)
	}
	if *split != "" {
		weights, err := parseSplit(*split)
		if err != nil {
			return fail(stderr, err)
		}
		next.DepositSplit = weights
	}

	op, err := bonds.BuildReplaceConfig(program, authority.Address(), next)
	if err != nil {
		return fail(stderr, err)
	}
	res, err := submit(ctx, client, op, authority)
	if err != nil {
		return fail(stderr, err)
	}
	writeJSON(stdout, res)
	return 0
}

func parseSplit(raw string) ([3]uint16, error) {
	var out [3]uint16
	parts := strings.Split(raw, ",")
	if len(parts) != len(out) {
		return out, fmt.Errorf("--split needs three comma separated weights, got %q", raw)
	}
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 16)
		if err != nil {
			return out, fmt.Errorf("--split weight %d: %w", i, err)
		}
		out[i] = uint16(v)
	}
	return out, nil
}
