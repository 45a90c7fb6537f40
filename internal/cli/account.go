package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignupCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result AccountResult

			if err := client.Post("/api/v1/signup", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ProfileResult

			if err := client.Get("/api/v1/profile", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the username and password of the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"new_username": user,
				"new_password": pass,
			}
			var result AuthResult

			if err := client.Put("/api/v1/profile", req, &result); err != nil {
				return err
			}

			// The server reissues the session under the new username
			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "New username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "New password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newResetPasswordCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset an account's password to a fresh random one",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"username": user}
			var result ResetResult

			if err := client.Post("/api/v1/reset-password", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
