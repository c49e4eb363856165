package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PhelGc/signals-sync/internal/config"
	"github.com/PhelGc/signals-sync/internal/funnel"
	"github.com/PhelGc/signals-sync/internal/storage"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las entradas del almacén de archivos con su tier, status y votos",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().StringP("dir", "d", "", "Directorio del almacén de archivos")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Storage.BasePath
	}
	store, err := storage.New(dir)
	if err != nil {
		return err
	}

	entries, err := store.GetAllEntries()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "Sin entradas en %s\n", dir)
		return nil
	}

	fmt.Fprintf(out, "%-24s %-7s %-20s %-10s %-24s %s\n",
		"ENTRADA", "TIER", "STATUS", "CUALIF.", "TIER 1", "TIER 2")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for _, e := range entries {
		h := e.History
		tier := h.Tier
		if tier == "" {
			tier = funnel.Tier1
		}
		fmt.Fprintf(out, "%-24s %-7s %-20s %-10t %-24s %s\n",
			e.ID, tier, h.Status, h.Qualified, ballot(h.Tier1), ballot(h.Tier2))
	}
	return nil
}

// ballot formato compacto "OK: a, b / KO: c"
func ballot(b funnel.Ballot) string {
	return fmt.Sprintf("OK: %s / KO: %s", joinOrDash(b.OK), joinOrDash(b.KO))
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
