package main

import (
	"fmt"

	"github.com/Veraticus/ankiflow/internal/cli"
	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/parser"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show how a file would be classified",
		Long: `Classify every line of a file with the chosen profile's rules and print
the resulting cards and the lines that could not be parsed. Anki is not contacted.`,
		Args: cobra.ExactArgs(1),
		RunE: runPreview,
	}

	cmd.Flags().StringP("profile", "p", string(model.ProfilePassive), "profile whose rules apply (passive or active)")

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	profileFlag, _ := cmd.Flags().GetString("profile")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := model.ParseProfileID(profileFlag)
	if err != nil {
		return common.NewUserError("Unknown profile", err)
	}
	profile, err := cfg.Profile(id)
	if err != nil {
		return err
	}

	lines, err := readLines(args[0])
	if err != nil {
		return common.NewUserError("Could not read input", err)
	}

	cards, unparsable := parser.ClassifyLines(profile.Classifier, lines)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderPreview(profile, cards, unparsable))
	return err
}
