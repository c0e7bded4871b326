package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/ankiflow/internal/engine"
	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
	"github.com/Veraticus/ankiflow/internal/storage"
	"github.com/schollz/progressbar/v3"
)

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Bus      *engine.Bus
	Executor *engine.Executor // required when OnDuplicate is set
	Journal  service.RunJournal
	Writer   io.Writer
	// Decks maps each profile to its deck name for summaries and the journal.
	Decks        map[model.ProfileID]string
	OnDuplicate  model.ActionKind // empty leaves duplicates alone
	PollInterval time.Duration
	ShowProgress bool
}

// Report is what a Watch call observed.
type Report struct {
	Results       map[model.ProfileID]model.PartitionResult
	Failures      map[model.ProfileID]error
	ActionsDone   int
	ActionsFailed int
}

// Watcher is the non-interactive consumer: it polls the bus on a fixed tick,
// prints progress and summaries and optionally resolves every store duplicate
// with one action.
type Watcher struct {
	cfg  WatcherConfig
	bars map[model.ProfileID]*progressbar.ProgressBar
	now  func() time.Time
}

// NewWatcher creates a watcher.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Bus == nil {
		return nil, fmt.Errorf("watcher needs an event bus")
	}
	if cfg.OnDuplicate != "" {
		if !cfg.OnDuplicate.Remote() {
			return nil, fmt.Errorf("unsupported duplicate action %q", cfg.OnDuplicate)
		}
		if cfg.Executor == nil {
			return nil, fmt.Errorf("duplicate action %q needs an executor", cfg.OnDuplicate)
		}
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	return &Watcher{
		cfg:  cfg,
		bars: make(map[model.ProfileID]*progressbar.ProgressBar),
		now:  time.Now,
	}, nil
}

// watchState is owned by the Watch loop.
type watchState struct {
	report  *Report
	runs    map[model.RunRef]bool
	actions map[model.ItemID]bool
}

// Watch consumes events until every run in runs has ended and every action it
// started has reported. Events of other runs are ignored.
func (w *Watcher) Watch(ctx context.Context, runs ...model.RunRef) (*Report, error) {
	state := &watchState{
		report: &Report{
			Results:  make(map[model.ProfileID]model.PartitionResult),
			Failures: make(map[model.ProfileID]error),
		},
		runs:    make(map[model.RunRef]bool, len(runs)),
		actions: make(map[model.ItemID]bool),
	}
	for _, ref := range runs {
		state.runs[ref] = true
	}

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for len(state.runs) > 0 || len(state.actions) > 0 {
		select {
		case <-ctx.Done():
			return state.report, ctx.Err()
		case <-ticker.C:
		}

		for _, event := range w.cfg.Bus.Drain() {
			w.handle(ctx, state, event)
		}
	}

	return state.report, nil
}

func (w *Watcher) handle(ctx context.Context, state *watchState, event model.ImportEvent) {
	switch e := event.(type) {
	case model.Progress:
		if state.runs[e.Run] {
			w.progress(e)
		}

	case model.Complete:
		if !state.runs[e.Run] {
			return
		}
		delete(state.runs, e.Run)
		w.finishBar(e.Run.Profile)
		state.report.Results[e.Run.Profile] = e.Partition
		w.println(RenderSummary(w.cfg.Decks[e.Run.Profile], e.Partition))
		w.recordRun(ctx, e)
		w.resolveDuplicates(ctx, state, e.Partition)

	case model.Error:
		if !state.runs[e.Run] {
			return
		}
		delete(state.runs, e.Run)
		w.finishBar(e.Run.Profile)
		state.report.Failures[e.Run.Profile] = e.Err
		w.println(FormatError(fmt.Sprintf("%s import failed: %s", e.Run.Profile, e.Message)))
		w.recordRun(ctx, e)

	case model.ActionDone:
		if !state.actions[e.ItemID] {
			return
		}
		delete(state.actions, e.ItemID)
		if e.Err != nil {
			state.report.ActionsFailed++
			w.println(FormatError(fmt.Sprintf("%s %s failed: %v", e.Kind, e.ItemID, e.Err)))
		} else {
			state.report.ActionsDone++
			w.println(FormatSuccess(fmt.Sprintf("%s %s (note %d)", e.Kind, e.ItemID, e.NoteID)))
		}
		if w.cfg.Journal != nil {
			if err := w.cfg.Journal.RecordAction(ctx, storage.ActionFromEvent(e, w.now())); err != nil {
				slog.Warn("Failed to journal action", "item", e.ItemID, "error", err)
			}
		}
	}
}

func (w *Watcher) resolveDuplicates(ctx context.Context, state *watchState, result model.PartitionResult) {
	if w.cfg.OnDuplicate == "" {
		return
	}
	for _, d := range result.DuplicateInStore {
		if err := w.cfg.Executor.Start(ctx, engine.TargetForStoreDuplicate(d), w.cfg.OnDuplicate); err != nil {
			w.println(FormatWarning(fmt.Sprintf("Could not %s %s: %v", w.cfg.OnDuplicate, d.ID, err)))
			continue
		}
		state.actions[d.ID] = true
	}
}

func (w *Watcher) recordRun(ctx context.Context, event model.ImportEvent) {
	if w.cfg.Journal == nil {
		return
	}
	var profile model.ProfileID
	switch e := event.(type) {
	case model.Complete:
		profile = e.Run.Profile
	case model.Error:
		profile = e.Run.Profile
	}
	record, ok := storage.RunFromEvent(event, w.cfg.Decks[profile], w.now())
	if !ok {
		return
	}
	if err := w.cfg.Journal.RecordRun(ctx, record); err != nil {
		slog.Warn("Failed to journal run", "profile", profile, "error", err)
	}
}

func (w *Watcher) progress(p model.Progress) {
	if !w.cfg.ShowProgress {
		slog.Info(p.Text, "run", p.Run.String(), "stage", p.Stage, "of", p.Of)
		return
	}

	bar, ok := w.bars[p.Run.Profile]
	if !ok {
		bar = progressbar.NewOptions(p.Of,
			progressbar.OptionSetWriter(w.cfg.Writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(w.cfg.Writer)
			}),
		)
		w.bars[p.Run.Profile] = bar
	}

	bar.Describe(fmt.Sprintf("[cyan][bold]%s[reset] %s", p.Run.Profile, p.Text))
	if err := bar.Set(p.Stage - 1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

func (w *Watcher) finishBar(profile model.ProfileID) {
	bar, ok := w.bars[profile]
	if !ok {
		return
	}
	delete(w.bars, profile)
	if err := bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}

func (w *Watcher) println(s string) {
	if _, err := fmt.Fprintln(w.cfg.Writer, s); err != nil {
		slog.Warn("Failed to write output", "error", err)
	}
}
