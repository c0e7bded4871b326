package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/Veraticus/ankiflow/internal/service"
	"github.com/gosuri/uitable"
)

// RenderSummary renders the outcome of one run with every non-added item listed.
func RenderSummary(deck string, result model.PartitionResult) string {
	counts := result.Counts()

	var b strings.Builder
	b.WriteString(formatCount(SuccessStyle, SuccessIcon, counts.Added, "added") + "\n")

	if len(result.DuplicateInStore) > 0 {
		b.WriteString(formatCount(WarningStyle, WarningIcon, counts.DuplicateInStore, "already in Anki") + "\n")
		for _, d := range result.DuplicateInStore {
			where := d.Existing.DeckName
			if where == "" {
				where = "unknown deck"
			}
			fmt.Fprintf(&b, "    %s %s %s %s\n",
				SubtleStyle.Render(string(d.ID)), d.Card.Front, ArrowIcon,
				SubtleStyle.Render(fmt.Sprintf("note %d in %s", d.Existing.NoteID, where)))
		}
	}
	if len(result.DuplicateInBatch) > 0 {
		b.WriteString(formatCount(WarningStyle, WarningIcon, counts.DuplicateInBatch, "repeated in this file") + "\n")
		for _, d := range result.DuplicateInBatch {
			fmt.Fprintf(&b, "    %s %s\n", SubtleStyle.Render(string(d.ID)), d.Card.Front)
		}
	}
	if len(result.FailedWrite) > 0 {
		b.WriteString(formatCount(ErrorStyle, ErrorIcon, counts.FailedWrite, "failed to add") + "\n")
		for _, f := range result.FailedWrite {
			fmt.Fprintf(&b, "    %s %s %s\n", SubtleStyle.Render(string(f.ID)), f.Card.Front, ErrorStyle.Render(f.Reason))
		}
	}
	if len(result.Unparsable) > 0 {
		b.WriteString(formatCount(ErrorStyle, ErrorIcon, counts.Unparsable, "could not be parsed") + "\n")
		for _, u := range result.Unparsable {
			fmt.Fprintf(&b, "    line %d: %s\n", u.Line.Line, u.Line.Text)
		}
	}

	return RenderBox(fmt.Sprintf("%s import into %s", result.Profile, deck), strings.TrimRight(b.String(), "\n"))
}

// RenderPreview lists how each line of a file would be classified.
func RenderPreview(profile model.DeckProfile, cards []model.ClassifiedCard, unparsable []model.RawLine) string {
	var b strings.Builder
	b.WriteString(FormatTitle(fmt.Sprintf("Preview: %s profile (%s)", profile.ID, profile.DeckName)))
	b.WriteString("\n")

	for _, c := range cards {
		line := fmt.Sprintf("%4d  %s %s %s", c.Line, c.Front, ArrowIcon, c.Back)
		if tags := profile.Tags(c.TagSuffix); len(tags) > 0 {
			line += " " + InfoStyle.Render("["+strings.Join(tags, ", ")+"]")
		}
		b.WriteString(line + "\n")
	}

	for _, u := range unparsable {
		b.WriteString(FormatWarning(fmt.Sprintf("Could not parse line %d: %s", u.Line, u.Text)) + "\n")
	}

	b.WriteString("\n" + SubtleStyle.Render(fmt.Sprintf("%d cards, %d unparsable", len(cards), len(unparsable))) + "\n")
	return b.String()
}

// RenderHistory renders recent journal entries as tables.
func RenderHistory(runs []service.RunRecord, actions []service.ActionRecord) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Recent imports") + "\n")
	if len(runs) == 0 {
		b.WriteString(SubtleStyle.Render("No imports recorded yet.") + "\n")
	} else {
		tbl := newTable()
		tbl.AddRow("FINISHED", "RUN", "DECK", "RESULT")
		for _, r := range runs {
			result := r.Counts.String()
			if r.Error != "" {
				result = ErrorStyle.Render(ErrorIcon + " " + r.Error)
			}
			tbl.AddRow(
				r.FinishedAt.Local().Format(time.DateTime),
				fmt.Sprintf("%s#%d", r.Profile, r.Seq),
				r.Deck,
				result,
			)
		}
		b.WriteString(tbl.String() + "\n")
	}

	if len(actions) > 0 {
		b.WriteString("\n" + FormatTitle("Recent resolutions") + "\n")
		tbl := newTable()
		tbl.AddRow("AT", "ITEM", "ACTION", "NOTE", "RESULT")
		for _, a := range actions {
			result := SuccessStyle.Render(SuccessIcon)
			if a.Error != "" {
				result = ErrorStyle.Render(ErrorIcon + " " + a.Error)
			}
			tbl.AddRow(
				a.At.Local().Format(time.DateTime),
				string(a.ItemID),
				string(a.Kind),
				fmt.Sprintf("%d", a.NoteID),
				result,
			)
		}
		b.WriteString(tbl.String() + "\n")
	}

	return b.String()
}

// newTable creates a borderless table. Only the last column may hold styled
// text; padding counts escape codes as width.
func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	return tbl
}
