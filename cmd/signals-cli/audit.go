package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PhelGc/signals-sync/internal/config"
	"github.com/PhelGc/signals-sync/internal/database"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [entry-id]",
		Short: "Lista los envíos registrados para una entrada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return fmt.Errorf("auditoría deshabilitada: falta DB_USERNAME")
			}

			db, err := database.NewClient(&database.Config{
				Host:     cfg.Database.Host,
				Port:     cfg.Database.Port,
				Username: cfg.Database.Username,
				Password: cfg.Database.Password,
				Database: cfg.Database.Database,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			limit, _ := cmd.Flags().GetInt("limit")
			rows, err := db.ListByEntry(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintf(out, "Sin envíos registrados para %s\n", args[0])
				return nil
			}
			for _, r := range rows {
				fmt.Fprintf(out, "%s  %-16s %-2s %-6s %-20s cualificada=%t escalada=%t  (%s)\n",
					r.CreatedAt.Format("2006-01-02 15:04:05"), r.Reviewer, r.Vote, r.Tier, r.Status,
					r.Qualified, r.Escalated, r.SubmissionID)
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 50, "Número máximo de envíos")

	return cmd
}
