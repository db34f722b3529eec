// Package main mints session cookies for local testing of the gateway.
// Tokens are signed with the dev key unless --key or SESSION_SIGNING_KEY says
// otherwise; they will not work against a deployment with a real key.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	jwttoken "checklist/internal/jwt_token"
	"checklist/internal/platform/config"
	sessionService "checklist/internal/session/service"
	"checklist/pkg/requestcontext"
)

const sessionIssuer = "checklist-gateway"

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Claims    map[string]string `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

type mintOptions struct {
	userID        string
	clientID      string
	upstreamToken string
	key           string
	ttl           time.Duration
	json          bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tokengen",
		Short: "Mint checklist gateway session cookies",
		Long: `tokengen - mint checklist gateway session cookies

WARNING: tokens use the dev signing key unless told otherwise.
         Only use for local development and testing.`,
		SilenceUsage: true,
	}
	root.AddCommand(newSessionCmd(), newExpiredCmd())
	return root
}

func newSessionCmd() *cobra.Command {
	opts := &mintOptions{}
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Mint a valid session token",
		Example: `  tokengen session --client-id acme
  tokengen session --client-id acme --user-id driver-7 --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mint(cmd.OutOrStdout(), time.Now(), opts)
		},
	}
	bindMintFlags(cmd, opts)
	return cmd
}

func newExpiredCmd() *cobra.Command {
	opts := &mintOptions{}
	cmd := &cobra.Command{
		Use:     "expired",
		Short:   "Mint an already expired session token (exercises hydration)",
		Example: `  tokengen expired --client-id acme --json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Issued far enough in the past that it is already expired, so the
			// gateway goes through session hydration.
			return mint(cmd.OutOrStdout(), time.Now().Add(-2*opts.ttl), opts)
		},
	}
	bindMintFlags(cmd, opts)
	return cmd
}

func bindMintFlags(cmd *cobra.Command, opts *mintOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.userID, "user-id", "", "User ID. Generated if empty.")
	f.StringVar(&opts.clientID, "client-id", "", "Tenant (client id) the session belongs to")
	f.StringVar(&opts.upstreamToken, "upstream-token", "dev-upstream-token", "Backend access token carried in the session")
	f.StringVar(&opts.key, "key", "", "Signing key. Defaults to SESSION_SIGNING_KEY or the dev key.")
	f.DurationVar(&opts.ttl, "ttl", 15*time.Minute, "Session lifetime")
	f.BoolVar(&opts.json, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("client-id")
}

func mint(out io.Writer, issuedAt time.Time, opts *mintOptions) error {
	if opts.clientID == "" {
		return errors.New("--client-id is required")
	}
	userID := opts.userID
	if userID == "" {
		userID = uuid.NewString()
	}
	key := opts.key
	if key == "" {
		key = config.Defaults().Session.SigningKey
		if env := os.Getenv("SESSION_SIGNING_KEY"); env != "" {
			key = env
		}
	}

	svc := jwttoken.NewJWTService(key, sessionIssuer, opts.ttl)
	ctx := requestcontext.WithTime(context.Background(), issuedAt)
	token, expiresAt, err := svc.IssueSession(ctx, userID, opts.clientID, opts.upstreamToken, opts.ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	cookie := fmt.Sprintf("%s=%s", sessionService.SessionCookie, token)
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tokenOutput{
			Token:     token,
			ExpiresAt: expiresAt,
			Claims: map[string]string{
				"user_id":   userID,
				"client_id": opts.clientID,
			},
			Usage: map[string]string{
				"cookie": cookie,
			},
		})
	}

	fmt.Fprintln(out, "Session Token")
	fmt.Fprintln(out, "=============")
	fmt.Fprintf(out, "User ID:    %s\n", userID)
	fmt.Fprintf(out, "Client ID:  %s\n", opts.clientID)
	fmt.Fprintf(out, "Expires At: %s\n", expiresAt.Format(time.RFC3339))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Token:")
	fmt.Fprintln(out, token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  curl --cookie \"%s\" http://localhost:8080/dashboard\n", cookie)
	return nil
}
