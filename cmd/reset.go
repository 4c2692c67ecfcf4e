package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"irrigation_valve/internal/logger"
	"irrigation_valve/internal/repository"
	"irrigation_valve/internal/repository/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resetConfirmed bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase the persisted valve state; the next start uses factory defaults",
	Long: "Erase the persisted valve state. Run it while the daemon is stopped: " +
		"a running controller would write its in-memory state back on the next change.",
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "Confirm the erase")
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetConfirmed {
		return errors.New("refusing to erase without --yes")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.Get(cfg.LogLevel)

	conn, err := db.InitDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := repository.NewStateSQLite(conn).Erase(ctx); err != nil {
		return fmt.Errorf("erase state: %w", err)
	}
	log.Warnw("valve_state_erased", "db", cfg.DBPath)
	fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgYellow).Sprint("valve state erased; defaults apply on next start"))
	return nil
}
