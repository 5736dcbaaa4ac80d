package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/wolfman30/survey-assistant/internal/archive"
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List recent booking attempts from the archive database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _ := loadConfig(cmd)
		limit, _ := cmd.Flags().GetInt("limit")
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		records, err := archive.NewPGStore(pool).RecentBookings(ctx, limit)
		if err != nil {
			return fmt.Errorf("query bookings: %w", err)
		}
		printBookings(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	bookingsCmd.Flags().Int("limit", 20, "Maximum number of bookings to show")
}

func printBookings(out io.Writer, records []archive.BookingRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No bookings found.")
		return
	}

	fmt.Fprintf(out, "%-19s  %-20s  %-16s  %-16s  %-6s  %s\n",
		"Created", "Patient", "Provider", "Appointment", "OK", "Notified")
	fmt.Fprintln(out, strings.Repeat("─", 96))
	for _, r := range records {
		ok := "✓"
		if !r.Succeeded {
			ok = "✗"
		}
		notified := "no"
		if r.Notified {
			notified = "yes"
		}
		fmt.Fprintf(out, "%-19s  %-20s  %-16s  %-16s  %-6s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			truncate(r.PatientName, 20),
			truncate(r.Provider, 16),
			truncate(r.Appointment, 16),
			ok,
			notified,
		)
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
