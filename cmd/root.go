package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the beefewer application
var rootCmd = &cobra.Command{
	Use:   "beefewer",
	Short: "Archives Beeminder reminder emails for goals that already have data",
	Long: `beefewer archives Beeminder reminder emails in your Gmail inbox once the
goal they nag about already has data for the reminded day.

It can run as:
  - A one-shot CLI tool (default)
  - A periodic runner (watch)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(envFile)
	},
}

// version will be set by main
var version = "dev"

// debugMode enables debug logging for all commands
var debugMode bool

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "beefewer version %s\n" .Version}}`)

	// If no subcommand is provided, run the cleanup command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "cleanup")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
