package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PhelGc/signals-sync/internal/config"
	"github.com/PhelGc/signals-sync/internal/tally"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "signals-cli",
		Short:   "Herramientas de operación para Signals Sync",
		Version: Version,
	}

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// extractorFor usa el modo del flag si se indica, si no el de la configuración
func extractorFor(cmd *cobra.Command, cfg *config.Config) (tally.Extractor, error) {
	mode, _ := cmd.Flags().GetString("mode")
	if mode == "" {
		mode = cfg.Tally.Mode
	}
	return tally.Load(mode, cfg.Tally.QuestionMapPath)
}

// readSubmissions lee un archivo con un envío o con un array de envíos
func readSubmissions(path string) ([]tally.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		subs := make([]tally.Submission, 0, len(raws))
		for i, raw := range raws {
			sub, err := tally.ParseSubmission(raw)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
			}
			subs = append(subs, sub)
		}
		return subs, nil
	}

	sub, err := tally.ParseSubmission(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []tally.Submission{sub}, nil
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Muestra la evaluación normalizada de un envío del formulario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			extractor, err := extractorFor(cmd, cfg)
			if err != nil {
				return err
			}

			subs, err := readSubmissions(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			for _, sub := range subs {
				e, err := extractor.Extract(sub)
				if err != nil {
					return err
				}
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("mode", "m", "", "Modo del formulario (id, positional)")

	return cmd
}
