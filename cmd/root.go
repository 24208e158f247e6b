package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/meetpilot/internal/logging"
)

// rootCmd represents the base command for the meetpilot application
var rootCmd = &cobra.Command{
	Use:   "meetpilot",
	Short: "Negotiates and books meetings across several calendars",
	Long: `meetpilot finds a meeting time that fits every attendee. It learns each
attendee's routine from their recent calendar, asks a language model for
compatible slots, verifies them against live free/busy data, books the first
free one and emails the invitations.

It can run as:
  - A CLI (suggest, schedule)
  - An MCP (Model Context Protocol) server for AI assistants (serve)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

var (
	debugMode bool
	envFile   string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "meetpilot version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newLogger logs to stderr; stdout belongs to command output and the stdio transport.
func newLogger() *slog.Logger {
	return logging.NewLogger(os.Stderr, debugMode)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file read before the environment")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}
