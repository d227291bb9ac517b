package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/Aftnet/NetMediaInfoLib/internal/config"
	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediatag",
	Short: "Tag movie and TV episode files with TMDB metadata",
	Long: `mediatag writes title, description, genres, cover art and series details
from The Movie Database into MP4/M4V and Matroska video files.

Existing tags are replaced. Files are rewritten atomically unless atomic_save
is disabled in the configuration.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var (
	cfgFile  string
	logLevel string
	workers  int

	// appConfig is loaded before any subcommand runs.
	appConfig *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mediatag/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "override the configured number of files tagged in parallel")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("workers") && workers > 0 {
		cfg.WorkerCount = workers
	}

	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	log.Initialize(cfg.EnableLogging, cfg.LogRetentionDays)

	appConfig = cfg
	configFile = path
	return nil
}
