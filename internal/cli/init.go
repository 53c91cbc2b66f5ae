package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/confer/internal/db"
	"github.com/example/confer/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the confer database",
		Long:  `Create or upgrade the confer database schema for the configured driver.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			if d, _ := db.ParseDriver(cfg.Database.Driver); d == db.DriverSQLite {
				path := cfg.Database.Path
				if path == "" {
					defaultPath, err := db.DefaultPath()
					if err != nil {
						return fmt.Errorf("failed to get database path: %w", err)
					}
					path = defaultPath
				}
				fmt.Printf("Initializing confer database at %s\n", path)
			} else {
				fmt.Println("Initializing confer database on postgres")
			}

			// Database runs InitSchema on first connection
			if _, _, err := wire.Database(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  confer seed")
			fmt.Println("  confer reviewer create --user <username>")

			return nil
		},
	}
}

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [fixtures.yaml]",
		Short: "Load users, tracks and organizers",
		Long: `Load users, roles, tracks, audience levels and organizers from a YAML file.
Without a file the bundled development fixtures are used. Existing rows are kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, d, err := wire.Database()
			if err != nil {
				return err
			}

			var stats *db.SeedStats
			if len(args) == 1 {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read fixtures: %w", err)
				}
				stats, err = db.SeedFromYAML(database, d, data)
				if err != nil {
					return err
				}
			} else {
				stats, err = db.SeedFixtures(database, d)
				if err != nil {
					return err
				}
			}

			fmt.Printf("✓ Seeded %d user(s), %d role(s), %d track(s), %d audience level(s), %d organizer(s)\n",
				stats.Users, stats.Roles, stats.Tracks, stats.AudienceLevels, stats.Organizers)
			return nil
		},
	}
}
