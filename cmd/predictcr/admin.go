package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative commands",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Cobra runs only the nearest PersistentPreRunE.
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		return app.requireAdmin()
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		users, err := app.Client.AdminUsers(cmd.Context())
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tACTIVATED\tENABLED\tQUOTA\tADMIN\tRUNNER")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%t\t%t\t%d\t%t\t%t\n", u.ID, u.Email, u.Activated, u.Enabled, u.Quota, u.IsAdmin, u.IsRunner)
		}
		return tw.Flush()
	},
}

var adminEnableCmd = &cobra.Command{
	Use:   "enable EMAIL",
	Short: "Enable a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.Client.EnableUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var adminDisableCmd = &cobra.Command{
	Use:   "disable EMAIL",
	Short: "Disable a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := app.Client.DisableUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var adminRunnerTokenCmd = &cobra.Command{
	Use:   "runner-token",
	Short: "Print a fresh token for a runner account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := app.Client.RunnerToken(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminUsersCmd, adminEnableCmd, adminDisableCmd, adminRunnerTokenCmd)
}
