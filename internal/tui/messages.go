package tui

import (
	"time"

	"github.com/Veraticus/ankiflow/internal/model"
)

// tickMsg asks the model to drain the event bus.
type tickMsg time.Time

// linesLoadedMsg carries the input for an import the user requested.
type linesLoadedMsg struct {
	err     error
	profile model.ProfileID
	lines   []string
}

// journalWrittenMsg reports a finished journal write.
type journalWrittenMsg struct {
	err  error
	what string
}
