// Package parser turns loosely formatted flashcard lines into front/back pairs.
//
// Each profile owns an ordered list of rules. The first rule that matches a line
// structurally decides the outcome; later rules are never consulted, even when
// the winning rule produced a card that fails validation.
package parser

import (
	"log/slog"
	"strings"

	"github.com/Veraticus/ankiflow/internal/model"
)

type rule struct {
	apply func(line string) (model.ClassifiedCard, bool)
	name  string
}

func rulesFor(id model.ClassifierID) []rule {
	switch id {
	case model.ClassifierPassive:
		return passiveRules
	case model.ClassifierActive:
		return activeRules
	default:
		return nil
	}
}

// Classify parses a single line with the given classifier.
// It is pure and deterministic; ok is false when the line is blank or unparsable.
func Classify(id model.ClassifierID, line string) (card model.ClassifiedCard, ok bool) {
	card, _, ok = classify(id, line)
	return card, ok
}

// ruleFor reports which rule accepted line, or "" if none did.
func ruleFor(id model.ClassifierID, line string) string {
	_, name, ok := classify(id, line)
	if !ok {
		return ""
	}
	return name
}

func classify(id model.ClassifierID, line string) (model.ClassifiedCard, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return model.ClassifiedCard{}, "", false
	}

	for _, r := range rulesFor(id) {
		card, matched := r.apply(line)
		if !matched {
			continue
		}
		if !card.Valid() {
			return model.ClassifiedCard{}, "", false
		}
		return card, r.name, true
	}
	return model.ClassifiedCard{}, "", false
}

// ClassifyLines classifies every non-blank line. Blank lines are dropped and
// counted nowhere; every other line ends up in exactly one of the two results.
// Line numbers are 1-based positions in lines.
func ClassifyLines(id model.ClassifierID, lines []string) ([]model.ClassifiedCard, []model.RawLine) {
	var cards []model.ClassifiedCard
	var unparsable []model.RawLine

	for i, text := range lines {
		if strings.TrimSpace(text) == "" {
			continue
		}
		card, name, ok := classify(id, text)
		if !ok {
			slog.Debug("Line not classified", "classifier", id, "line", i+1, "text", text)
			unparsable = append(unparsable, model.RawLine{Text: strings.TrimSpace(text), Line: i + 1})
			continue
		}
		card.Line = i + 1
		slog.Debug("Line classified", "classifier", id, "line", i+1, "rule", name, "front", card.Front)
		cards = append(cards, card)
	}
	return cards, unparsable
}
