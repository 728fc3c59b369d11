package main

import (
	"fmt"
	"strings"

	whcmd "warehouse/cmd"
	"warehouse/internal/adapters/out/postgres"
	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/kernel"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type connectFunc func() (whcmd.Config, *gorm.DB, error)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func newRootCmd(connect connectFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "whctl",
		Short:         "Warehouse administration",
		Long:          "whctl runs schema migrations, stale picking task sweeps and inventory lock changes against the warehouse database.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(migrateCmd(connect))
	rootCmd.AddCommand(sweepCmd(connect))
	rootCmd.AddCommand(lockCmd(connect, true))
	rootCmd.AddCommand(lockCmd(connect, false))
	return rootCmd
}

func migrateCmd(connect connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, db, err := connect()
			if err != nil {
				return err
			}
			if err = postgres.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Migrated %s\n", green("✓"), strings.Join(postgres.Tables, ", "))
			return nil
		},
	}
}

func sweepCmd(connect connectFunc) *cobra.Command {
	var (
		olderThanDays  int
		warehouse      string
		scenario       string
		includePicking bool
	)
	c := &cobra.Command{
		Use:   "sweep",
		Short: "Force-close stale picking tasks",
		Long: `Force-closes open and in-progress picking tasks created more than
--older-than-days ago whose units are no longer in picking cells.
Without --warehouse every warehouse is swept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var scope *kernel.UUID
			if warehouse != "" {
				id, err := kernel.UUIDFromString(warehouse)
				if err != nil {
					return fmt.Errorf("invalid --warehouse: %w", err)
				}
				scope = &id
			}
			var scenarioFilter *string
			if scenario != "" {
				scenarioFilter = &scenario
			}
			sweep, err := commands.NewCloseStaleTasksCommand(
				olderThanDays, scope, scenarioFilter, includePicking, kernel.SystemActor("whctl"),
			)
			if err != nil {
				return err
			}

			cfg, db, err := connect()
			if err != nil {
				return err
			}
			root := whcmd.NewCompositionRoot(cfg, db, nil, cfg.NewLogger())
			defer func() { _ = root.Close() }()

			result, err := root.CreateCloseStaleTasksCommandHandler().Handle(cmd.Context(), sweep)
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Closed %d of %d eligible tasks (%d scanned, cutoff %s)\n",
				green("✓"), result.Closed, result.Eligible, result.Scanned, result.Cutoff.Format("2006-01-02 15:04:05Z07:00"))
			for _, failure := range result.Failed {
				fmt.Fprintf(out, "%s task %s: %v\n", red("✗"), failure.Key, failure.Err)
			}
			if skipped := result.Eligible - result.Closed - len(result.Failed); skipped > 0 {
				fmt.Fprintf(out, "%s %d tasks changed state during the sweep and were left as is\n",
					yellow("!"), skipped)
			}
			return nil
		},
	}
	c.Flags().IntVar(&olderThanDays, "older-than-days", 0, "close tasks created more than this many days ago (1-3650)")
	c.Flags().StringVar(&warehouse, "warehouse", "", "restrict the sweep to one warehouse id")
	c.Flags().StringVar(&scenario, "scenario", "", "restrict the sweep to one scenario")
	c.Flags().BoolVar(&includePicking, "include-picking", false, "also close tasks whose units still sit in picking cells")
	_ = c.MarkFlagRequired("older-than-days")
	return c
}

func lockCmd(connect connectFunc, locked bool) *cobra.Command {
	var (
		warehouse string
		reason    string
	)
	use, short := "unlock", "Release the inventory lock of a warehouse"
	if locked {
		use, short = "lock", "Block all unit moves in a warehouse during an inventory count"
	}
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			warehouseID, err := kernel.UUIDFromString(warehouse)
			if err != nil {
				return fmt.Errorf("invalid --warehouse: %w", err)
			}

			cfg, db, err := connect()
			if err != nil {
				return err
			}
			root := whcmd.NewCompositionRoot(cfg, db, nil, cfg.NewLogger())
			defer func() { _ = root.Close() }()

			err = root.CreateLockRepository().Set(cmd.Context(), warehouseID, locked, reason, kernel.SystemActor("whctl"))
			if err != nil {
				return fmt.Errorf("failed to %s warehouse: %w", use, err)
			}

			state := green("unlocked")
			if locked {
				state = yellow("locked")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Warehouse %s is %s\n", green("✓"), warehouseID, state)
			return nil
		},
	}
	c.Flags().StringVar(&warehouse, "warehouse", "", "warehouse id")
	_ = c.MarkFlagRequired("warehouse")
	if locked {
		c.Flags().StringVar(&reason, "reason", "inventory count", "reason recorded with the lock")
	}
	return c
}
