package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"salesdesk/internal/utils"
)

type tokenOptions struct {
	userID   string
	username string
	role     string
	ttl      time.Duration
	secret   string
}

func newTokenCmd() *cobra.Command {
	opts := &tokenOptions{}
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.secret == "" {
				_ = godotenv.Load()
				opts.secret = os.Getenv("JWT_SECRET")
			}
			return runToken(cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.userID, "user", "", "user id")
	f.StringVar(&opts.username, "name", "", "username")
	f.StringVar(&opts.role, "role", "", "role claim")
	f.DurationVar(&opts.ttl, "ttl", 24*time.Hour, "token lifetime")
	f.StringVar(&opts.secret, "secret", "", "signing secret (default $JWT_SECRET)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func runToken(w io.Writer, opts *tokenOptions) error {
	if opts.secret == "" {
		return errors.New("no signing secret: set JWT_SECRET or pass --secret")
	}
	if opts.ttl <= 0 {
		return errors.New("--ttl must be positive")
	}
	userID := opts.userID
	if userID == "" {
		userID = opts.username
	}
	tok, exp, err := utils.GenerateToken([]byte(opts.secret), userID, opts.username, opts.role, opts.ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, tok)
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
	return nil
}
