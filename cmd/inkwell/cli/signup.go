package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSignupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Control the admin signup gate",
		Long:  "Enable, disable, or inspect the site-wide toggle that controls whether new admin registrations are accepted.",
	}

	cmd.AddCommand(newSignupStatusCmd())
	cmd.AddCommand(newSignupSetCmd("enable", true))
	cmd.AddCommand(newSignupSetCmd("disable", false))

	return cmd
}

func newSignupStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether admin signup is open",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			settings, err := st.GetSettings(cmdCtx())
			if err != nil {
				return fmt.Errorf("read settings: %w", err)
			}

			if settings.AllowAdminSignup {
				fmt.Println("Admin signup is OPEN.")
			} else {
				fmt.Println("Admin signup is CLOSED.")
			}
			return nil
		},
	}
}

func newSignupSetCmd(use string, allow bool) *cobra.Command {
	short := "Disable new admin registrations"
	if allow {
		short = "Enable new admin registrations"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			settings, err := st.GetSettings(cmdCtx())
			if err != nil {
				return fmt.Errorf("read settings: %w", err)
			}
			settings.AllowAdminSignup = allow
			if err := st.UpdateSettings(cmdCtx(), settings); err != nil {
				return fmt.Errorf("update settings: %w", err)
			}

			if allow {
				fmt.Println("Admin signup enabled.")
			} else {
				fmt.Println("Admin signup disabled.")
			}
			return nil
		},
	}
}
