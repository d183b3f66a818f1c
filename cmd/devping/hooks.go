package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vibe-Marketer/devping/internal/hook"
)

var hooksOpts struct {
	settingsPath string
	binary       string
}

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage assistant hook registration",
	Long: `Manage the hook entries in the assistant's settings file.

Installing adds "devping notify" commands for the Notification and
Stop hook events. Existing hooks from other tools are left alone.`,
}

var hooksInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register devping in the assistant's hook settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		installer, err := newInstaller()
		if err != nil {
			return err
		}
		if err := installer.Install(); err != nil {
			return fmt.Errorf("failed to install hooks: %w", err)
		}
		fmt.Println("Hooks installed.")
		return nil
	},
}

var hooksUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove devping from the assistant's hook settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		installer, err := newInstaller()
		if err != nil {
			return err
		}
		if err := installer.Uninstall(); err != nil {
			return fmt.Errorf("failed to uninstall hooks: %w", err)
		}
		fmt.Println("Hooks removed.")
		return nil
	},
}

var hooksStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether devping hooks are registered",
	RunE: func(cmd *cobra.Command, args []string) error {
		installer, err := newInstaller()
		if err != nil {
			return err
		}
		installed, err := installer.Installed()
		if err != nil {
			return fmt.Errorf("failed to check hook status: %w", err)
		}
		if installed {
			fmt.Println("Hooks are installed.")
		} else {
			fmt.Println("Hooks are not installed. Run: devping hooks install")
		}
		return nil
	},
}

func init() {
	hooksCmd.PersistentFlags().StringVar(&hooksOpts.settingsPath, "settings", "",
		"Path to the assistant settings file (default: ~/.claude/settings.json)")
	hooksCmd.PersistentFlags().StringVar(&hooksOpts.binary, "binary", "",
		"Hook command binary path (default: this executable)")

	hooksCmd.AddCommand(hooksInstallCmd)
	hooksCmd.AddCommand(hooksUninstallCmd)
	hooksCmd.AddCommand(hooksStatusCmd)
	rootCmd.AddCommand(hooksCmd)
}

func newInstaller() (*hook.Installer, error) {
	installer, err := hook.NewInstaller(hooksOpts.settingsPath, hooksOpts.binary, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create hook installer: %w", err)
	}
	return installer, nil
}
