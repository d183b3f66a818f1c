package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/Vibe-Marketer/devping/internal/config"
	"github.com/Vibe-Marketer/devping/internal/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := globalOpts.configPath
		if path == "" {
			var err error
			path, err = config.Path()
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := config.Default().Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := globalOpts.configPath
		if path == "" {
			var err error
			path, err = config.Path()
			if err != nil {
				return err
			}
		}
		fmt.Println(path)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one config value",
	Long: `Print the value of a single config key.

Keys use dotted notation matching the config file sections, e.g.
"display.position" or "timeouts.completion". Run without arguments to
list all keys.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, key := range cfg.Keys() {
				fmt.Println(key)
			}
			return nil
		}

		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value",
	Long: `Set a single config key and save the config file.

Examples:
  devping config set display.position bottom-right
  devping config set timeouts.completion 15s
  devping config set sounds.enabled false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}

		path := globalOpts.configPath
		if path == "" {
			var err error
			path, err = config.Path()
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available panel themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := theme.ListAvailableThemes()
		if err != nil {
			return fmt.Errorf("failed to list themes: %w", err)
		}
		for _, t := range themes {
			marker := " "
			if t.Name == cfg.Theme.Name {
				marker = "*"
			}
			source := "bundled"
			if !t.IsBundled {
				source = t.Path
			}
			fmt.Printf("%s %-16s %s\n", marker, t.Name, source)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configThemesCmd)
	rootCmd.AddCommand(configCmd)
}
