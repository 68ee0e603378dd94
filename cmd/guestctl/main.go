package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"wedding-guests/internal/config"
	impl "wedding-guests/internal/service/impl"
	"wedding-guests/internal/store"
	"wedding-guests/pkg/db"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "token":
		err = runToken(args)
	case "hash-password":
		err = runHashPassword(args)
	case "migrate":
		err = runMigrate(args)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  token          Mint an admin token with SIGNING_KEY")
	fmt.Fprintln(os.Stderr, "  hash-password  Print a bcrypt hash for ADMIN_PASSWORD_HASH")
	fmt.Fprintln(os.Stderr, "  migrate        Create or update the database schema")
	os.Exit(2)
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("subject", "admin", "token subject")
	ttl := fs.Duration("ttl", 0, "token lifetime (defaults to ACCESS_TTL)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	accessTTL := cfg.AccessTTL
	if *ttl > 0 {
		accessTTL = *ttl
	}
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  accessTTL,
		SigningKey: []byte(cfg.SigningKey),
	})
	tr, err := ts.Issue(context.Background(), *subject)
	if err != nil {
		return err
	}
	return printJSON(tr)
}

func runHashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	password := fs.String("password", "", "plaintext password")
	cost := fs.Int("cost", 10, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	hash, err := impl.NewPasswordServiceBcrypt(*cost).Hash(*password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func runMigrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	timeout := fs.Duration("timeout", time.Minute, "migration timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	gdb, err := db.OpenGorm(db.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := store.New(gdb).Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "schema up to date")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
