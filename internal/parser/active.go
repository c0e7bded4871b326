package parser

import (
	"strings"

	"github.com/Veraticus/ankiflow/internal/model"
)

var activeRules = []rule{
	{name: "phrase-then-japanese", apply: activePhraseFirst},
	{name: "japanese-then-phrase", apply: activePhraseLast},
}

// activePhraseFirst handles "(phrase) 日本語". The phrase may contain nested parentheses.
func activePhraseFirst(line string) (model.ClassifiedCard, bool) {
	if !strings.HasPrefix(line, "(") {
		return model.ClassifiedCard{}, false
	}
	end := matchingClose(line)
	if end < 0 {
		return model.ClassifiedCard{}, false
	}
	return model.ClassifiedCard{
		Front: line[:end+1],
		Back:  strings.TrimSpace(line[end+1:]),
	}, true
}

// activePhraseLast handles "日本語 (phrase)". The phrase is still the front.
func activePhraseLast(line string) (model.ClassifiedCard, bool) {
	if !strings.HasSuffix(line, ")") {
		return model.ClassifiedCard{}, false
	}
	start := matchingOpen(line)
	if start < 0 {
		return model.ClassifiedCard{}, false
	}
	return model.ClassifiedCard{
		Front: line[start:],
		Back:  strings.TrimSpace(line[:start]),
	}, true
}

// matchingClose returns the index of the ')' balancing the '(' at s[0], or -1.
func matchingClose(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchingOpen returns the index of the '(' balancing the ')' at the end of s, or -1.
func matchingOpen(s string) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
