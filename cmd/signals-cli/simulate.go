package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PhelGc/signals-sync/internal/config"
	"github.com/PhelGc/signals-sync/internal/signals"
	"github.com/PhelGc/signals-sync/internal/storage"
)

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate [file...]",
		Short: "Reproduce envíos en orden contra el almacén de archivos local",
		Long: `Procesa los envíos de cada archivo con el mismo motor que el webhook,
guardando el resultado en el almacén de archivos (STORAGE_BASE_PATH o --dir).
Los dominios desconocidos crean entradas nuevas.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSimulate,
	}

	cmd.Flags().StringP("mode", "m", "", "Modo del formulario (id, positional)")
	cmd.Flags().StringP("dir", "d", "", "Directorio del almacén de archivos")

	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	extractor, err := extractorFor(cmd, cfg)
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Storage.BasePath
	}
	store, err := storage.New(dir, storage.WithAutoCreate())
	if err != nil {
		return err
	}
	svc := signals.NewService(store)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-24s %-16s %-4s %-7s %-20s %-10s %s\n",
		"DOMINIO", "REVISOR", "VOTO", "TIER", "STATUS", "CUALIF.", "ESCALADA")
	fmt.Fprintln(out, strings.Repeat("-", 96))

	for _, path := range args {
		subs, err := readSubmissions(path)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			e, err := extractor.Extract(sub)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := svc.Process(cmd.Context(), e)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(out, "%-24s %-16s %-4s %-7s %-20s %-10t %t\n",
				res.Domain, res.Reviewer, res.Vote, res.Tier, res.Status, res.Qualified, res.Escalated)
		}
	}
	return nil
}
