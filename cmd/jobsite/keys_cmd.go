package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpggio/jobsite/internal/scope"
	"github.com/rpggio/jobsite/internal/sqlite"
)

type keyOutput struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
	}
	cmd.AddCommand(newKeysAddCmd())
	return cmd
}

func newKeysAddCmd() *cobra.Command {
	var (
		userID      string
		role        string
		token       string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an API key bound to a user and role",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := scope.ParseRole(role)
			if !ok {
				return fmt.Errorf("invalid --role %q: %w", role, scope.ErrUnknownRole)
			}
			role = string(parsed)
			if token == "" {
				token = uuid.NewString()
			}

			rt, err := openRuntime(os.Stderr, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := sqlite.NewAPIKeyRepository(rt.db).Add(cmd.Context(), token, userID, role, description); err != nil {
				return err
			}
			return writeJSON(keyOutput{UserID: userID, Role: role, Token: token})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id (required)")
	cmd.Flags().StringVar(&role, "role", "", "Role: executive, project-executive or project-manager (required)")
	cmd.Flags().StringVar(&token, "token", "", "Token value (default random)")
	cmd.Flags().StringVar(&description, "description", "", "Free-form note")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
