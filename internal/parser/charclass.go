package parser

// Ranges and marks that make up the Japanese character class.
const (
	hiraganaFirst = '\u3040'
	hiraganaLast  = '\u309f'
	katakanaFirst = '\u30a0'
	katakanaLast  = '\u30ff'
	kanjiFirst    = '\u4e00'
	kanjiLast     = '\u9faf'

	ideographicComma     = '\u3001'
	ideographicFullStop  = '\u3002'
	leftCornerBracket    = '\u300c'
	rightCornerBracket   = '\u300d'
	ideographicIteration = '\u3005'

	fullWidthSpace = '\u3000'
)

// isJapanese reports whether r belongs to the Japanese character class:
// hiragana, katakana, common kanji and a fixed set of CJK punctuation.
func isJapanese(r rune) bool {
	switch {
	case r >= hiraganaFirst && r <= hiraganaLast:
		return true
	case r >= katakanaFirst && r <= katakanaLast:
		return true
	case r >= kanjiFirst && r <= kanjiLast:
		return true
	}
	switch r {
	case ideographicComma, ideographicFullStop, leftCornerBracket, rightCornerBracket, ideographicIteration:
		return true
	}
	return false
}

func isCommaLike(r rune) bool {
	return r == ',' || r == ideographicComma
}

func containsJapanese(rs []rune) bool {
	for _, r := range rs {
		if isJapanese(r) {
			return true
		}
	}
	return false
}

// leadingJapaneseRun returns the number of leading runes of rs in the Japanese class.
func leadingJapaneseRun(rs []rune) int {
	n := 0
	for n < len(rs) && isJapanese(rs[n]) {
		n++
	}
	return n
}
