package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/juanjparedez/mundobl/internal/auth"
	"github.com/juanjparedez/mundobl/internal/models"
)

// newTokenCommand mints a token signed with the shared secret, for local
// administration without going through the identity provider.
func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		role    string
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.Role(strings.ToUpper(role))
			switch r {
			case models.RoleAdmin, models.RoleModerator, models.RoleVisitor:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			now := time.Now()
			tok, err := auth.NewVerifier(ctx.cfg.JWTSecret, ctx.cfg.JWTIssuer).Sign(&auth.Claims{
				Role: r,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   subject,
					IssuedAt:  jwt.NewNumericDate(now),
					ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role claim (ADMIN, MODERATOR, VISITOR)")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Subject claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
