package parser

import (
	"regexp"
	"strings"

	"github.com/Veraticus/ankiflow/internal/model"
)

// bracketedLemma matches "(lemma) anything": the first parenthesised span is the front.
var bracketedLemma = regexp.MustCompile(`^(\(.+?\))\s*(.+)$`)

var passiveRules = []rule{
	{name: "bracketed-lemma", apply: passiveBracketedLemma},
	{name: "full-width-space", apply: passiveFullWidthSpace},
	{name: "script-boundary", apply: passiveScriptBoundary},
}

func passiveBracketedLemma(line string) (model.ClassifiedCard, bool) {
	m := bracketedLemma.FindStringSubmatch(line)
	if m == nil {
		return model.ClassifiedCard{}, false
	}
	return model.ClassifiedCard{
		Front:     strings.TrimSpace(m[1]),
		Back:      strings.TrimSpace(m[2]),
		TagSuffix: model.TagSuffixKanji,
	}, true
}

func passiveFullWidthSpace(line string) (model.ClassifiedCard, bool) {
	front, back, found := strings.Cut(line, string(fullWidthSpace))
	if !found {
		return model.ClassifiedCard{}, false
	}
	return model.ClassifiedCard{
		Front: strings.TrimSpace(front),
		Back:  strings.TrimSpace(back),
	}, true
}

// passiveScriptBoundary splits a leading Japanese run from the text that follows it.
//
// A line made only of Japanese characters keeps its last character as the back
// ("あいうえお" gives "あいうえ" / "お"). Existing decks were built with this
// behaviour, so it stays.
func passiveScriptBoundary(line string) (model.ClassifiedCard, bool) {
	rs := []rune(line)
	n := leadingJapaneseRun(rs)
	if n == 0 {
		return model.ClassifiedCard{}, false
	}
	if n == len(rs) {
		if n < 2 {
			return model.ClassifiedCard{}, false
		}
		return model.ClassifiedCard{Front: string(rs[:n-1]), Back: string(rs[n-1:])}, true
	}

	back := scriptBoundaryBack(rs[n:])
	if back == "" {
		return model.ClassifiedCard{}, false
	}
	return model.ClassifiedCard{Front: string(rs[:n]), Back: back}, true
}

// scriptBoundaryBack computes the back from the text after the leading Japanese run.
// When Japanese text follows the first comma, the whole remainder is an
// enumerated meaning list and is kept verbatim. Otherwise the back stops at the
// next Japanese character, dropping trailing annotations such as "season節".
func scriptBoundaryBack(rest []rune) string {
	for i, r := range rest {
		if !isCommaLike(r) {
			continue
		}
		if containsJapanese(rest[i+1:]) {
			return strings.TrimSpace(string(rest))
		}
		break
	}

	end := 0
	for end < len(rest) && !isJapanese(rest[end]) {
		end++
	}
	return strings.TrimSpace(string(rest[:end]))
}
