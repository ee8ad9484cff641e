package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solris/commhub/internal/config"
	"github.com/solris/commhub/internal/web/db"
	"github.com/solris/commhub/internal/web/repository"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Clean up old data (expired sessions, dispatch history)",
	RunE:  runCleanup,
}

var (
	cleanupDispatchDays int
	cleanupDryRun       bool
)

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDispatchDays, "dispatch-days", 90, "Delete dispatch records older than N days")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Show what would be deleted without actually deleting")
	cleanupCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/commhub/config.yaml", "Path to configuration file")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if cleanupDryRun {
		fmt.Println("Dry run mode - no data will be deleted")
		fmt.Println()
	}

	if err := cleanupSessions(database); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -cleanupDispatchDays)
	if err := cleanupDispatches(database, cutoff); err != nil {
		return fmt.Errorf("failed to cleanup dispatch records: %w", err)
	}

	if !cleanupDryRun {
		fmt.Println("\nCleanup completed")
	}

	return nil
}

func cleanupSessions(database *db.DB) error {
	var count int
	err := database.QueryRow(`
		SELECT COUNT(*) FROM sessions WHERE expires_at <= ?`,
		time.Now(),
	).Scan(&count)
	if err != nil {
		return err
	}

	fmt.Printf("Expired sessions: %d\n", count)

	if !cleanupDryRun && count > 0 {
		deleted, err := repository.NewSessionRepository(database.DB).DeleteExpired()
		if err != nil {
			return err
		}
		fmt.Printf("  Deleted: %d\n", deleted)
	}

	return nil
}

func cleanupDispatches(database *db.DB, cutoff time.Time) error {
	var count int
	err := database.QueryRow(`
		SELECT COUNT(*) FROM dispatches WHERE created_at < ?`,
		cutoff,
	).Scan(&count)
	if err != nil {
		return err
	}

	fmt.Printf("Dispatch records older than %d days: %d\n", cleanupDispatchDays, count)

	if !cleanupDryRun && count > 0 {
		result, err := database.Exec(`DELETE FROM dispatches WHERE created_at < ?`, cutoff)
		if err != nil {
			return err
		}
		deleted, _ := result.RowsAffected()
		fmt.Printf("  Deleted: %d\n", deleted)
	}

	return nil
}
