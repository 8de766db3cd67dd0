package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/edmo-interaction/speech"
	"github.com/maastricht-university/edmo-interaction/turns"
)

func TestAnalyzeSpeakerStats(t *testing.T) {
	groups := map[int][]Utterance{
		1: {
			{Text: "Good job! Put the block here.", Time: 0},
			{Text: "What is that?", Time: 4},
			{Text: "wow, I love the block", Time: 10},
		},
		2: {
			{Text: "block block", Time: 2},
			{Text: "Can I try?", Time: 6},
			{Text: "   ", Time: 8},
		},
	}
	st := NewAnalyzer(Options{}).Analyze(groups)

	s1 := st.Speakers[1]
	assert.Equal(t, 3, s1.UtteranceCount)
	assert.Equal(t, 14, s1.TotalWords)
	assert.InDelta(t, 14.0/3, s1.AvgWordCount, 1e-9)
	assert.InDelta(t, 5, s1.AvgInterval, 1e-9)
	assert.Equal(t, 12, s1.UniqueWords)
	assert.InDelta(t, 12.0/14, s1.VocabularyDiversity, 1e-9)
	assert.InDelta(t, 14.0/19, s1.DominanceScore, 1e-9)
	assert.Equal(t, TypeCounts{Questions: 1, EmotionalExpressions: 1, PraiseEncouragement: 1}, s1.Types)

	s2 := st.Speakers[2]
	assert.Equal(t, 2, s2.UtteranceCount)
	assert.Equal(t, 5, s2.TotalWords)
	assert.Equal(t, 1, s2.Types.Questions)
	assert.InDelta(t, 4, s2.AvgInterval, 1e-9)

	assert.Equal(t, 19, st.TotalWords)
	assert.Equal(t, []KeywordCount{{Word: "block", Count: 4}}, st.Keywords)
	assert.Equal(t, TypeCounts{Questions: 2, EmotionalExpressions: 1, PraiseEncouragement: 1}, st.Types)
}

func TestClassify(t *testing.T) {
	a := NewAnalyzer(Options{})
	cases := []struct {
		text string
		want TypeCounts
	}{
		{"Put the red block on top", TypeCounts{Instructions: 1}},
		{"you need to press it", TypeCounts{Instructions: 1}},
		{"Where does it go", TypeCounts{Questions: 1}},
		{"it goes there?", TypeCounts{Questions: 1}},
		{"Well done, you did it", TypeCounts{PraiseEncouragement: 1}},
		{"I'm so happy", TypeCounts{EmotionalExpressions: 1}},
		{"let's try again, great!", TypeCounts{Instructions: 1, PraiseEncouragement: 1}},
		{"the robot moved", TypeCounts{}},
		{"", TypeCounts{}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Classify(tc.text))
			// classification is a pure membership test
			assert.Equal(t, a.Classify(tc.text), a.Classify(tc.text))
		})
	}
}

func TestKeywordFilteringAndOrder(t *testing.T) {
	groups := map[int][]Utterance{
		1: {{Text: "robot robot arm arm arm the the the the go go"}},
		2: {{Text: "Robot ARM legs"}},
	}
	st := NewAnalyzer(Options{MaxKeywords: 1}).Analyze(groups)
	assert.Equal(t, []KeywordCount{{Word: "arm", Count: 4}}, st.Keywords)

	st = NewAnalyzer(Options{MinKeywordFrequency: 1}).Analyze(groups)
	require.Len(t, st.Keywords, 3)
	assert.Equal(t, "arm", st.Keywords[0].Word)
	assert.Equal(t, "robot", st.Keywords[1].Word)
	assert.Equal(t, "legs", st.Keywords[2].Word)
}

func TestAnalyzeEmpty(t *testing.T) {
	st := NewAnalyzer(Options{}).Analyze(nil)
	assert.Zero(t, st.TotalWords)
	assert.Empty(t, st.Keywords)
	assert.NotNil(t, st.Keywords)
	assert.Empty(t, st.Speakers)
}

func TestLoadLexiconOverridesLists(t *testing.T) {
	lex, err := LoadLexicon(strings.NewReader("praise:\n  - stellar\n  - Top Notch\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLexicon().StopWords, lex.StopWords)

	a := NewAnalyzer(Options{Lexicon: &lex})
	assert.Equal(t, 1, a.Classify("stellar work").PraiseEncouragement)
	assert.Equal(t, 1, a.Classify("that was top notch").PraiseEncouragement)
	assert.Equal(t, 0, a.Classify("good job").PraiseEncouragement)

	_, err = LoadLexicon(strings.NewReader("praise: [unclosed"))
	assert.Error(t, err)

	lex, err = LoadLexicon(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultLexicon(), lex)
}

func TestFromTurns(t *testing.T) {
	ts := turns.Segment([]speech.Word{
		{Text: "hello", Start: 0, End: 0.4, SpeakerTag: 1},
		{Text: "hi", Start: 1, End: 1.2, SpeakerTag: 2},
		{Text: "again", Start: 2, End: 2.3, SpeakerTag: 1},
	}, turns.Options{})
	groups := FromTurns(ts)
	require.Len(t, groups[1], 2)
	assert.Equal(t, Utterance{Text: "again", Time: 2}, groups[1][1])
	assert.Equal(t, Utterance{Text: "hi", Time: 1}, groups[2][0])
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"let's", "go", "it's", "3", "blocks"}, Tokenize("Let’s GO! 'it's' 3 blocks..."))
}
