package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long: `Log in to the predicTCR service.

The password is read from --password or, if omitted, from standard input.

Example:
  predictcr login --email user@example.org`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		email, err := valueOrPrompt(email, "Email")
		if err != nil {
			return err
		}
		password, err = valueOrPrompt(password, "Password")
		if err != nil {
			return err
		}

		session, err := app.Auth.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", session.User.Email)
		if !app.Config.HasSecretKey() {
			fmt.Fprintln(cmd.ErrOrStderr(), "note: PREDICTCR_SECRET_KEY is not set, the session ends with this process")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app.Auth.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := app.requireLogin(); err != nil {
			return err
		}

		u := app.Sessions.User()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "email:       %s\n", u.Email)
		fmt.Fprintf(out, "admin:       %t\n", u.IsAdmin)
		fmt.Fprintf(out, "runner:      %t\n", u.IsRunner)
		fmt.Fprintf(out, "quota:       %d\n", u.Quota)
		fmt.Fprintf(out, "interval:    %d min\n", u.SubmissionIntervalMinutes)
		if exp, ok := app.Sessions.Expiry(); ok {
			fmt.Fprintf(out, "expires:     %s\n", exp.Local().Format(time.DateTime))
		}
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account",
	Long: `Register a new account. Passwords need at least eight characters
including an upper-case letter, a lower-case letter and a digit.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		email, err := valueOrPrompt(email, "Email")
		if err != nil {
			return err
		}
		password, err = valueOrPrompt(password, "Password")
		if err != nil {
			return err
		}

		msg, err := app.Auth.Signup(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate TOKEN",
	Short: "Activate a new account with the token from the activation email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.Auth.ActivateAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change or reset the account password",
}

var passwordChangeCmd = &cobra.Command{
	Use:   "change",
	Short: "Change the password of the logged-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		current, _ := cmd.Flags().GetString("current")
		next, _ := cmd.Flags().GetString("new")

		current, err := valueOrPrompt(current, "Current password")
		if err != nil {
			return err
		}
		next, err = valueOrPrompt(next, "New password")
		if err != nil {
			return err
		}

		msg, err := app.Auth.ChangePassword(cmd.Context(), current, next)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot EMAIL",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.Auth.RequestPasswordReset(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset EMAIL",
	Short: "Set a new password using an emailed reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		next, _ := cmd.Flags().GetString("new")

		token, err := valueOrPrompt(token, "Reset token")
		if err != nil {
			return err
		}
		next, err = valueOrPrompt(next, "New password")
		if err != nil {
			return err
		}

		msg, err := app.Auth.ResetPassword(cmd.Context(), args[0], token, next)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, signupCmd, activateCmd, passwordCmd)
	passwordCmd.AddCommand(passwordChangeCmd, passwordForgotCmd, passwordResetCmd)

	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringP("email", "e", "", "account email")
		c.Flags().StringP("password", "p", "", "account password (prompted when omitted)")
	}

	passwordChangeCmd.Flags().String("current", "", "current password (prompted when omitted)")
	passwordChangeCmd.Flags().String("new", "", "new password (prompted when omitted)")
	passwordResetCmd.Flags().String("token", "", "reset token from the email (prompted when omitted)")
	passwordResetCmd.Flags().String("new", "", "new password (prompted when omitted)")
}
