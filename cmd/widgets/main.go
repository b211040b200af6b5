package main

import (
	"fmt"
	"io"
	"os"

	"github.com/shodgson/prosemirror-widgets/config"
	"github.com/shodgson/prosemirror-widgets/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "widgets",
	Short: "Resizable images and a slash palette for ProseMirror documents",
	Long: `widgets hosts the editor widgets outside a browser.

Documents are CommonMark files. Image sizes are kept in the alt text,
for example ![diagram|320x200](diagram.png).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		// The terminal editor owns the screen; logs only go to the file.
		console := cmd.ErrOrStderr()
		if cmd.Name() == editCmd.Name() {
			console = io.Discard
		}
		logger, err = logging.New(cfg.Logging, console, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "widgets.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(commandsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
