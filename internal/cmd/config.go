package cmd

import (
	"fmt"
	"strings"

	"github.com/Aftnet/NetMediaInfoLib/internal/config"
	"github.com/spf13/cobra"
)

// configFile is the path the active configuration was loaded from.
var configFile string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
	Long: `Show the active configuration. Values set through MEDIATAG_* environment
variables are included.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:       "set KEY VALUE",
	Short:     "Set a configuration value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: config.Keys(),
	RunE:      runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configFile)
	},
}

func init() {
	configCmd.AddCommand(configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	values := appConfig.Values()
	rows := make([][]string, 0, len(values))
	for _, key := range config.Keys() {
		value := values[key]
		if key == config.KeyTMDBAPIKey {
			value = maskSecret(value)
		}
		rows = append(rows, []string{key, value})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Value"}, rows, nil))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	// Reload so flag overrides are not persisted
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := cfg.SaveTo(configFile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], configFile)
	return nil
}

// maskSecret keeps the last four characters of s.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
