package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/confer/internal/ports/primary"
	"github.com/example/confer/internal/wire"
)

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "View the audit trail",
		Long:  "View and prune the audit trail of reviewer changes",
	}

	listCmd := &cobra.Command{
		Use:   "list [entity-id]",
		Short: "Show audit entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			actor, _ := cmd.Flags().GetString("actor")
			action, _ := cmd.Flags().GetString("action")
			entityType, _ := cmd.Flags().GetString("type")

			filters := primary.LogFilters{
				ActorID:    actor,
				Action:     action,
				EntityType: entityType,
				Limit:      limit,
			}
			if len(args) > 0 {
				filters.EntityID = args[0]
			}
			return wire.LogAdapter().List(NewContext(), filters)
		},
	}
	listCmd.Flags().IntP("limit", "n", 50, "Maximum entries to show")
	listCmd.Flags().String("actor", "", "Filter by actor")
	listCmd.Flags().String("action", "", "Filter by action (create, update, delete)")
	listCmd.Flags().String("type", "", "Filter by entity type")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			days, _ := cmd.Flags().GetInt("days")
			return wire.LogAdapter().Prune(NewContext(), days)
		},
	}
	pruneCmd.Flags().Int("days", 30, "Delete entries older than N days")

	logCmd.AddCommand(listCmd)
	logCmd.AddCommand(pruneCmd)
	return logCmd
}
