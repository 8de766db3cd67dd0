package language

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/maastricht-university/edmo-interaction/turns"
)

// Defaults for keyword extraction.
const (
	MinKeywordFrequency = 2
	MaxKeywords         = 50
	minKeywordRunes     = 3
)

// Utterance is one transcript entry of a speaker.
type Utterance struct {
	Text string  `json:"text"`
	Time float64 `json:"time"`
}

// TypeCounts counts utterances per category. One utterance may fall into
// several categories.
type TypeCounts struct {
	Questions            int `json:"questions"`
	Instructions         int `json:"instructions"`
	EmotionalExpressions int `json:"emotional_expressions"`
	PraiseEncouragement  int `json:"praise_encouragement"`
}

func (c *TypeCounts) add(o TypeCounts) {
	c.Questions += o.Questions
	c.Instructions += o.Instructions
	c.EmotionalExpressions += o.EmotionalExpressions
	c.PraiseEncouragement += o.PraiseEncouragement
}

// SpeakerStats summarizes what one speaker said.
type SpeakerStats struct {
	UtteranceCount      int        `json:"utterance_count"`
	AvgWordCount        float64    `json:"avg_word_count"`
	AvgInterval         float64    `json:"avg_interval"`
	TotalWords          int        `json:"total_words"`
	UniqueWords         int        `json:"unique_words"`
	VocabularyDiversity float64    `json:"vocabulary_diversity"`
	DominanceScore      float64    `json:"dominance_score"`
	Types               TypeCounts `json:"types"`
}

// KeywordCount is one entry of the keyword frequency table.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Stats is the language summary of a session.
type Stats struct {
	Speakers   map[int]SpeakerStats `json:"speakers"`
	Keywords   []KeywordCount       `json:"keywords"`
	Types      TypeCounts           `json:"types"`
	TotalWords int                  `json:"total_words"`
}

// Options configures an Analyzer. Zero values take the package defaults.
type Options struct {
	Lexicon             *Lexicon
	MinKeywordFrequency int
	MaxKeywords         int
}

// Analyzer classifies utterances with a fixed lexicon. It holds no mutable
// state and is safe for concurrent use.
type Analyzer struct {
	lex         compiled
	minFreq     int
	maxKeywords int
}

// NewAnalyzer compiles the lexicon once.
func NewAnalyzer(opts Options) *Analyzer {
	lex := DefaultLexicon()
	if opts.Lexicon != nil {
		lex = *opts.Lexicon
	}
	a := &Analyzer{lex: compile(lex), minFreq: opts.MinKeywordFrequency, maxKeywords: opts.MaxKeywords}
	if a.minFreq <= 0 {
		a.minFreq = MinKeywordFrequency
	}
	if a.maxKeywords <= 0 {
		a.maxKeywords = MaxKeywords
	}
	return a
}

// FromTurns groups turn texts by speaker, one utterance per turn.
func FromTurns(ts []turns.Turn) map[int][]Utterance {
	out := make(map[int][]Utterance, 2)
	for spk, group := range turns.GroupBySpeaker(ts) {
		utts := make([]Utterance, 0, len(group))
		for _, t := range group {
			utts = append(utts, Utterance{Text: t.Text, Time: t.Start})
		}
		out[spk] = utts
	}
	return out
}

// Analyze computes per-speaker and global statistics.
func (a *Analyzer) Analyze(groups map[int][]Utterance) Stats {
	st := Stats{Speakers: make(map[int]SpeakerStats, len(groups)), Keywords: []KeywordCount{}}
	freq := map[string]int{}

	for spk, utts := range groups {
		var ss SpeakerStats
		unique := map[string]struct{}{}
		times := make([]float64, 0, len(utts))
		for _, u := range utts {
			tokens := Tokenize(u.Text)
			if len(tokens) == 0 {
				continue
			}
			ss.UtteranceCount++
			ss.TotalWords += len(tokens)
			times = append(times, u.Time)
			for _, tok := range tokens {
				unique[tok] = struct{}{}
				if utf8.RuneCountInString(tok) >= minKeywordRunes && !a.lex.stop.has(tok) {
					freq[tok]++
				}
			}
			ss.Types.add(a.classifyTokens(u.Text, tokens))
		}
		if ss.UtteranceCount > 0 {
			ss.AvgWordCount = float64(ss.TotalWords) / float64(ss.UtteranceCount)
			ss.UniqueWords = len(unique)
			ss.VocabularyDiversity = float64(ss.UniqueWords) / float64(ss.TotalWords)
			ss.AvgInterval = meanInterval(times)
		}
		st.TotalWords += ss.TotalWords
		st.Types.add(ss.Types)
		st.Speakers[spk] = ss
	}

	if st.TotalWords > 0 {
		for spk, ss := range st.Speakers {
			ss.DominanceScore = float64(ss.TotalWords) / float64(st.TotalWords)
			st.Speakers[spk] = ss
		}
	}

	for w, n := range freq {
		if n >= a.minFreq {
			st.Keywords = append(st.Keywords, KeywordCount{Word: w, Count: n})
		}
	}
	sort.Slice(st.Keywords, func(i, j int) bool {
		if st.Keywords[i].Count != st.Keywords[j].Count {
			return st.Keywords[i].Count > st.Keywords[j].Count
		}
		return st.Keywords[i].Word < st.Keywords[j].Word
	})
	if len(st.Keywords) > a.maxKeywords {
		st.Keywords = st.Keywords[:a.maxKeywords]
	}
	return st
}

// Classify reports which categories a single utterance belongs to, as 0/1
// counts.
func (a *Analyzer) Classify(text string) TypeCounts {
	return a.classifyTokens(text, Tokenize(text))
}

func (a *Analyzer) classifyTokens(text string, tokens []string) TypeCounts {
	var c TypeCounts
	if len(tokens) == 0 {
		return c
	}
	padded := " " + strings.Join(tokens, " ") + " "

	if strings.Contains(text, "?") || a.lex.interrogative.has(tokens[0]) {
		c.Questions = 1
	}
	if a.lex.imperative.has(tokens[0]) || containsPhrase(padded, a.lex.instruction) {
		c.Instructions = 1
	}
	if anyToken(tokens, a.lex.emotional) || containsPhrase(padded, a.lex.emotionalPh) {
		c.EmotionalExpressions = 1
	}
	if anyToken(tokens, a.lex.praise) || containsPhrase(padded, a.lex.praisePh) {
		c.PraiseEncouragement = 1
	}
	return c
}

// Tokenize lowercases text and splits it into word tokens, keeping inner
// apostrophes ("let's").
func Tokenize(text string) []string {
	text = strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func anyToken(tokens []string, s set) bool {
	for _, t := range tokens {
		if s.has(t) {
			return true
		}
	}
	return false
}

func containsPhrase(padded string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

func meanInterval(times []float64) float64 {
	if len(times) < 2 {
		return 0
	}
	sort.Float64s(times)
	return (times[len(times)-1] - times[0]) / float64(len(times)-1)
}
