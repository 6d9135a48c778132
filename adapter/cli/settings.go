package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/gestaches/internal/tasks/application/settings"
)

var errSettingsUnavailable = errors.New("settings service not configured")

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change preferences",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a setting, or every known setting",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.SettingsService == nil {
			return errSettingsUnavailable
		}
		keys := settings.KnownKeys()
		if len(args) == 1 {
			keys = args
		}
		return printSettings(cmd.Context(), cmd.OutOrStdout(), a.SettingsService, keys)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.SettingsService == nil {
			return errSettingsUnavailable
		}
		if err := a.SettingsService.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Setting saved.")
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Switch between the light and dark theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a == nil || a.SettingsService == nil {
			return errSettingsUnavailable
		}
		return toggleTheme(cmd.Context(), cmd.OutOrStdout(), a.SettingsService)
	},
}

func printSettings(ctx context.Context, w io.Writer, svc *settings.Service, keys []string) error {
	for _, key := range keys {
		value, found, err := svc.Get(ctx, key)
		if err != nil {
			return err
		}
		switch {
		case found:
			fmt.Fprintf(w, "%s = %s\n", key, value)
		case value != "":
			fmt.Fprintf(w, "%s = %s (default)\n", key, value)
		default:
			fmt.Fprintf(w, "%s is not set\n", key)
		}
	}
	return nil
}

func toggleTheme(ctx context.Context, w io.Writer, svc *settings.Service) error {
	theme, err := svc.ToggleTheme(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Theme: %s\n", theme)
	return nil
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(settingsCmd)
}
