package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/ankiflow/internal/cli"
	"github.com/Veraticus/ankiflow/internal/common"
	"github.com/Veraticus/ankiflow/internal/config"
	"github.com/Veraticus/ankiflow/internal/engine"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
	"github.com/Veraticus/ankiflow/internal/storage"
	"github.com/Veraticus/ankiflow/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import vocabulary files into Anki",
		Long: `Classify each line of the passive and active input files, add new cards
to their decks and list everything that needs attention.

By default an interactive screen shows each run and lets you resolve duplicates:
append the new meaning and reset the card, only reset it, open it in Anki's
editor, or dismiss it. With --no-tui the import runs headless and
--on-duplicate applies one resolution to every card already in Anki.`,
		RunE: runImport,
	}

	cmd.Flags().String("profile", "", "import only this profile (passive or active)")
	cmd.Flags().String("passive-file", "", "input file for the passive deck")
	cmd.Flags().String("active-file", "", "input file for the active deck")
	cmd.Flags().Bool("no-tui", false, "run without the interactive screen")
	cmd.Flags().String("on-duplicate", "skip", "with --no-tui: skip, reschedule or merge cards already in Anki")

	// Bind to viper
	_ = viper.BindPFlag("import.passive_file", cmd.Flags().Lookup("passive-file"))
	_ = viper.BindPFlag("import.active_file", cmd.Flags().Lookup("active-file"))

	return cmd
}

// pipeline is the wired import machinery for one command invocation.
type pipeline struct {
	journal  *storage.SQLiteJournal
	bus      *engine.Bus
	runner   *engine.Runner
	executor *engine.Executor
}

func newPipeline(ctx context.Context, cfg *config.Config, store service.CardStore) (*pipeline, error) {
	journal, err := storage.OpenJournal(ctx, cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	bus := engine.NewBus(cfg.Pipeline.EventBuffer)
	return &pipeline{
		journal:  journal,
		bus:      bus,
		runner:   engine.NewRunner(store, bus),
		executor: engine.NewExecutor(store, bus, cfg.Resolve.Separator, engine.WithActionLimit(cfg.Pipeline.ActionLimit)),
	}, nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	profileFlag, _ := cmd.Flags().GetString("profile")
	noTUI, _ := cmd.Flags().GetBool("no-tui")
	onDuplicate, _ := cmd.Flags().GetString("on-duplicate")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profiles, err := selectProfiles(cfg, profileFlag)
	if err != nil {
		return err
	}
	files, err := inputFiles(cfg, profiles)
	if err != nil {
		return err
	}
	action, err := parseOnDuplicate(onDuplicate, noTUI)
	if err != nil {
		return err
	}

	client, _, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx, cfg, client)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := p.journal.Close(); closeErr != nil {
			slog.Warn("Failed to close journal", "error", closeErr)
		}
	}()

	if noTUI {
		return runHeadless(ctx, cmd, cfg, p, profiles, files, action)
	}
	return runInteractive(ctx, cfg, p, profiles, files)
}

func parseOnDuplicate(value string, noTUI bool) (model.ActionKind, error) {
	if value == "" || value == "skip" {
		return "", nil
	}
	if !noTUI {
		return "", common.NewUserError("--on-duplicate only applies with --no-tui", nil)
	}
	kind, err := model.ParseActionKind(value)
	if err != nil || (kind != model.ActionMerge && kind != model.ActionReschedule) {
		return "", common.NewUserError(
			fmt.Sprintf("Invalid --on-duplicate %q (expected skip, reschedule or merge)", value), err)
	}
	return kind, nil
}

func runInteractive(ctx context.Context, cfg *config.Config, p *pipeline, profiles []model.DeckProfile, files map[model.ProfileID]string) error {
	restore, err := openLogFile(cfg.Logging.File)
	if err != nil {
		return err
	}
	defer restore()

	load := func(_ context.Context, id model.ProfileID) ([]string, error) {
		path, ok := files[id]
		if !ok {
			return nil, fmt.Errorf("profile %s was not selected for this import", id)
		}
		return readLines(path)
	}

	return tui.Run(ctx,
		tui.WithEngine(p.runner, p.executor, p.bus),
		tui.WithJournal(p.journal),
		tui.WithProfiles(profiles...),
		tui.WithLineLoader(load),
		tui.WithPollInterval(cfg.Pipeline.PollInterval),
		tui.WithAutoStart(true),
	)
}

func runHeadless(ctx context.Context, cmd *cobra.Command, cfg *config.Config, p *pipeline,
	profiles []model.DeckProfile, files map[model.ProfileID]string, action model.ActionKind,
) error {
	out := cmd.OutOrStdout()
	interrupts := cli.NewInterruptHandler(out)
	ctx = interrupts.HandleInterrupts(ctx)

	// Read every input before starting any run so a missing file imports nothing.
	inputs := make([][]string, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	for i, profile := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lines, err := readLines(files[profile.ID])
			if err != nil {
				return fmt.Errorf("%s input: %w", profile.ID, err)
			}
			inputs[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return common.NewUserError("Could not read input", err)
	}

	decks := make(map[model.ProfileID]string, len(profiles))
	refs := make([]model.RunRef, 0, len(profiles))
	for i, profile := range profiles {
		decks[profile.ID] = profile.DeckName
		ref, err := p.runner.Start(ctx, profile, inputs[i])
		if err != nil {
			return fmt.Errorf("failed to start %s import: %w", profile.ID, err)
		}
		slog.Info("Started import", "run", ref.String(), "deck", profile.DeckName, "lines", len(inputs[i]))
		refs = append(refs, ref)
	}

	watcher, err := cli.NewWatcher(cli.WatcherConfig{
		Bus:          p.bus,
		Executor:     p.executor,
		Journal:      p.journal,
		Writer:       out,
		Decks:        decks,
		OnDuplicate:  action,
		PollInterval: cfg.Pipeline.PollInterval,
		ShowProgress: isTerminal(),
	})
	if err != nil {
		return err
	}

	report, err := watcher.Watch(ctx, refs...)
	if err != nil {
		if interrupts.WasInterrupted() {
			// Started runs and actions still finish; wait so Anki is left consistent.
			events := p.bus.DrainWhile(cfg.Pipeline.PollInterval, func() {
				p.runner.Wait()
				p.executor.Wait()
			})
			if err := storage.RecordEvents(context.WithoutCancel(ctx), p.journal, events, decks, time.Now()); err != nil {
				slog.Warn("Failed to journal events after interrupt", "error", err)
			}
			return nil
		}
		return err
	}

	if len(report.Failures) > 0 {
		for profile, failure := range report.Failures {
			slog.Error("Import failed", "profile", profile, "error", failure)
		}
		return common.NewUserError(fmt.Sprintf("%d of %d imports failed", len(report.Failures), len(refs)), nil)
	}
	if report.ActionsFailed > 0 {
		return common.NewUserError(fmt.Sprintf("%d duplicate resolutions failed", report.ActionsFailed), nil)
	}
	return nil
}

func isTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
