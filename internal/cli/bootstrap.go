// Package cli provides CLI commands for the confer application.
package cli

import (
	gocontext "context"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/confer/internal/config"
	"github.com/example/confer/internal/ctxutil"
	"github.com/example/confer/internal/wire"
)

// globalActorID stores the actor recorded in audit entries for this invocation.
// Set once at startup by Bootstrap.
var globalActorID string

// Bootstrap loads configuration and resolves the acting user.
// Should be called once at CLI startup in PersistentPreRunE.
func Bootstrap(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	wire.Configure(cfg)

	actor, _ := cmd.Flags().GetString("as")
	switch {
	case actor != "":
		globalActorID = actor
	case cfg.Actor != "":
		globalActorID = cfg.Actor
	default:
		globalActorID = os.Getenv("USER")
	}
	return nil
}

// NewContext creates a context.Background() with the current actor ID embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	ctx := gocontext.Background()
	if globalActorID != "" {
		return ctxutil.WithActorID(ctx, globalActorID)
	}
	return ctx
}

// RootCmd returns the root command with every subcommand attached.
func RootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "confer",
		Short:   "confer - conference program reviewer management",
		Version: version,
		Long: `confer manages the reviewers of a conference program: inviting users,
recording their acceptance and track preferences, and keeping the reviewer
role in step with the reviewer lifecycle.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Bootstrap(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.confer/confer.yaml or ./confer.yaml)")
	rootCmd.PersistentFlags().String("as", "", "Actor recorded in the audit log")

	rootCmd.AddCommand(InitCmd())
	rootCmd.AddCommand(SeedCmd())
	rootCmd.AddCommand(ReviewerCmd())
	rootCmd.AddCommand(LogCmd())

	return rootCmd
}
