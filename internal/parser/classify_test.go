package parser

import (
	"testing"

	"github.com/Veraticus/ankiflow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Passive(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantFront string
		wantBack  string
		wantTag   model.TagSuffix
		wantOK    bool
	}{
		{
			name:      "kanji card",
			line:      "(摯) し sincerity, admonish",
			wantFront: "(摯)",
			wantBack:  "し sincerity, admonish",
			wantTag:   model.TagSuffixKanji,
			wantOK:    true,
		},
		{
			name:      "kanji card with surrounding whitespace",
			line:      "  (摯)   し sincerity, admonish  ",
			wantFront: "(摯)",
			wantBack:  "し sincerity, admonish",
			wantTag:   model.TagSuffixKanji,
			wantOK:    true,
		},
		{
			name:      "kanji card whose back has parentheses and full-width spaces",
			line:      "(摯)　(シ)　真摯",
			wantFront: "(摯)",
			wantBack:  "(シ)　真摯",
			wantTag:   model.TagSuffixKanji,
			wantOK:    true,
		},
		{
			name:      "vocab card",
			line:      "ばらまきspending (money) recklessly",
			wantFront: "ばらまき",
			wantBack:  "spending (money) recklessly",
			wantOK:    true,
		},
		{
			name:      "vocab card with whitespace",
			line:      "  ばらまき   spending (money) recklessly  ",
			wantFront: "ばらまき",
			wantBack:  "spending (money) recklessly",
			wantOK:    true,
		},
		{
			name:      "katakana with long vowel mark",
			line:      "コンピューター a computer",
			wantFront: "コンピューター",
			wantBack:  "a computer",
			wantOK:    true,
		},
		{
			name:      "kanji word",
			line:      "童謡children's song",
			wantFront: "童謡",
			wantBack:  "children's song",
			wantOK:    true,
		},
		{
			name:      "trailing kanji annotation is dropped",
			line:      "せつseason節",
			wantFront: "せつ",
			wantBack:  "season",
			wantOK:    true,
		},
		{
			name:      "comma without japanese after it",
			line:      "いすわるto stay, to remain",
			wantFront: "いすわる",
			wantBack:  "to stay, to remain",
			wantOK:    true,
		},
		{
			name:      "japanese after comma keeps the whole remainder",
			line:      "かけるto hang, 掛ける",
			wantFront: "かける",
			wantBack:  "to hang, 掛ける",
			wantOK:    true,
		},
		{
			name:      "ideographic comma in remainder",
			line:      "かけるto hang、掛ける",
			wantFront: "かける",
			wantBack:  "to hang、掛ける",
			wantOK:    true,
		},
		{
			name:      "full-width space separator",
			line:      "ばらまき　spending recklessly",
			wantFront: "ばらまき",
			wantBack:  "spending recklessly",
			wantOK:    true,
		},
		{
			name:      "pure japanese run keeps last character as back",
			line:      "あいうえお",
			wantFront: "あいうえ",
			wantBack:  "お",
			wantOK:    true,
		},
		{
			name:      "single japanese character",
			line:      "あ",
			wantOK:    false,
		},
		{
			name:   "english first",
			line:   "This is a line that should not match",
			wantOK: false,
		},
		{
			name:   "kanji format without back",
			line:   "(摯)",
			wantOK: false,
		},
		{
			name:   "empty",
			line:   "",
			wantOK: false,
		},
		{
			name:   "whitespace only",
			line:   "   \t   ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, ok := Classify(model.ClassifierPassive, tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, model.ClassifiedCard{}, card)
				return
			}
			assert.Equal(t, tt.wantFront, card.Front)
			assert.Equal(t, tt.wantBack, card.Back)
			assert.Equal(t, tt.wantTag, card.TagSuffix)
		})
	}
}

func TestClassify_Active(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantFront string
		wantBack  string
		wantOK    bool
	}{
		{
			name:      "phrase then japanese",
			line:      "(to spend money recklessly) ばらまき",
			wantFront: "(to spend money recklessly)",
			wantBack:  "ばらまき",
			wantOK:    true,
		},
		{
			name:      "phrase then japanese with whitespace",
			line:      "  (to spend money recklessly)   ばらまき  ",
			wantFront: "(to spend money recklessly)",
			wantBack:  "ばらまき",
			wantOK:    true,
		},
		{
			name:      "nested parentheses in phrase",
			line:      "(spending (money) recklessly) ばらまき",
			wantFront: "(spending (money) recklessly)",
			wantBack:  "ばらまき",
			wantOK:    true,
		},
		{
			name:      "no space between phrase and japanese",
			line:      "(physical book)紙の本",
			wantFront: "(physical book)",
			wantBack:  "紙の本",
			wantOK:    true,
		},
		{
			name:      "japanese then phrase is swapped",
			line:      "ばらまき (to spend money recklessly)",
			wantFront: "(to spend money recklessly)",
			wantBack:  "ばらまき",
			wantOK:    true,
		},
		{
			name:      "japanese then phrase with whitespace",
			line:      "  ばらまき   (to spend money recklessly)  ",
			wantFront: "(to spend money recklessly)",
			wantBack:  "ばらまき",
			wantOK:    true,
		},
		{
			name:      "japanese with punctuation",
			line:      "これは何ですか、ええと (What is this?)",
			wantFront: "(What is this?)",
			wantBack:  "これは何ですか、ええと",
			wantOK:    true,
		},
		{
			name:      "nested parentheses at the end",
			line:      "はっかく (discovery (of a crime))",
			wantFront: "(discovery (of a crime))",
			wantBack:  "はっかく",
			wantOK:    true,
		},
		{
			name:   "no parentheses",
			line:   "a simple phrase",
			wantOK: false,
		},
		{
			name:   "parentheses in the middle",
			line:   "some text (in the middle) more text",
			wantOK: false,
		},
		{
			name:   "only a parenthetical",
			line:   "(just this)",
			wantOK: false,
		},
		{
			name:   "unbalanced opening",
			line:   "(never closed ばらまき",
			wantOK: false,
		},
		{
			name:   "empty",
			line:   "",
			wantOK: false,
		},
		{
			name:   "whitespace only",
			line:   "    ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, ok := Classify(model.ClassifierActive, tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantFront, card.Front)
			assert.Equal(t, tt.wantBack, card.Back)
			assert.Equal(t, model.TagSuffixNone, card.TagSuffix)
		})
	}
}

func TestClassify_FirstMatchingRuleWins(t *testing.T) {
	// Rule 1 fires even though rule 2 could split on the full-width space.
	assert.Equal(t, "bracketed-lemma", ruleFor(model.ClassifierPassive, "(岩)　いわ"))
	assert.Equal(t, "full-width-space", ruleFor(model.ClassifierPassive, "いわ　rock"))
	assert.Equal(t, "script-boundary", ruleFor(model.ClassifierPassive, "いわrock"))
	assert.Equal(t, "", ruleFor(model.ClassifierPassive, "rock"))

	// A leading phrase wins over a trailing one.
	card, ok := Classify(model.ClassifierActive, "(a) b (c)")
	require.True(t, ok)
	assert.Equal(t, "(a)", card.Front)
	assert.Equal(t, "b (c)", card.Back)
}

func TestClassify_NeverEmitsBlankSide(t *testing.T) {
	lines := []string{
		"(摯) し sincerity", "(摯)", "あ", "あい", "いわ　", "　rock", "x", "()", "( ) ばらまき",
		"ばらまき ( )", "(a (b) c)", "いわ、いし", "ーー", "。。。", "いわ 岩", "いわ,", "(", ")",
	}
	for _, id := range []model.ClassifierID{model.ClassifierPassive, model.ClassifierActive} {
		for _, line := range lines {
			card, ok := Classify(id, line)
			if ok {
				assert.True(t, card.Valid(), "classifier %s produced blank side for %q: %+v", id, line, card)
			}
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	lines := []string{"(摯) し sincerity", "ばらまきspending", "あいうえお", "(to spend) ばらまき", "nope"}
	for _, id := range []model.ClassifierID{model.ClassifierPassive, model.ClassifierActive} {
		for _, line := range lines {
			first, ok1 := Classify(id, line)
			second, ok2 := Classify(id, line)
			assert.Equal(t, ok1, ok2)
			assert.Equal(t, first, second)
		}
	}
}

func TestClassifyLines(t *testing.T) {
	lines := []string{
		"(摯) し sincerity",
		"",
		"not japanese at all",
		"   ",
		"ばらまきspending",
	}

	cards, unparsable := ClassifyLines(model.ClassifierPassive, lines)

	require.Len(t, cards, 2)
	assert.Equal(t, 1, cards[0].Line)
	assert.Equal(t, 5, cards[1].Line)
	assert.Equal(t, "ばらまき", cards[1].Front)

	require.Len(t, unparsable, 1)
	assert.Equal(t, model.RawLine{Text: "not japanese at all", Line: 3}, unparsable[0])
}

func TestClassify_UnknownClassifier(t *testing.T) {
	_, ok := Classify(model.ClassifierID(42), "(摯) し")
	assert.False(t, ok)
}
