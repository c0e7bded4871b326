package main

import (
	"fmt"

	"github.com/Veraticus/ankiflow/internal/cli"
	"github.com/spf13/cobra"
)

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that Anki and AnkiConnect are reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, v, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(),
				cli.FormatSuccess(fmt.Sprintf("AnkiConnect %d at %s", v, cfg.Anki.URL)))
			return err
		},
	}
}
