package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docuchat/pkg/config"
	"docuchat/pkg/logger"
)

var (
	configPath string
	verbose    bool

	appConfig *config.Config
	appLogger *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docuchat",
	Short: "Document text extraction and search with a content-addressed cache",
	Long: "docuchat extracts text from PDF, DOCX, HTML and plain-text documents,\n" +
		"caches the result keyed by content fingerprint, and answers search\n" +
		"queries against a TF-IDF index of the extracted pages.\n\n" +
		"Scanned PDFs are OCRed page by page with progress reporting; pages\n" +
		"that fail recognition are tolerated and marked in search results.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Best effort: a missing .env file is not an error.
		_ = godotenv.Load()

		cfg, err := config.LoadWithEnvOverrides(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.EnableVerbose = true
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		appConfig = cfg
		appLogger = logger.NewLogger(cfg.LogLevel, cfg.EnableVerbose)
		return nil
	},
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the root command and reports failures on stderr.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML configuration file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose debug logging")
}
