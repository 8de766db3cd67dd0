// Package language computes per-speaker utterance statistics, keyword
// frequencies and utterance-type counts from transcript text.
package language

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon is the word lists used for classification. Entries are lowercase;
// phrases may contain spaces.
type Lexicon struct {
	StopWords     []string `yaml:"stop_words"`
	Interrogative []string `yaml:"interrogative"`
	Imperative    []string `yaml:"imperative"`
	Instruction   []string `yaml:"instruction_phrases"`
	Emotional     []string `yaml:"emotional"`
	Praise        []string `yaml:"praise"`
}

// DefaultLexicon is the built-in English lexicon.
func DefaultLexicon() Lexicon {
	return Lexicon{
		StopWords: []string{
			"the", "and", "a", "an", "to", "of", "in", "on", "it", "is", "are", "was", "were",
			"i", "you", "he", "she", "we", "they", "me", "my", "your", "our", "this", "that",
			"for", "with", "at", "be", "so", "but", "or", "if", "then", "just", "um", "uh",
			"yeah", "okay", "ok", "oh", "there", "here", "what", "can", "do", "don't", "not",
			"have", "has", "had", "will", "would", "all", "now", "see", "one", "get", "got",
		},
		Interrogative: []string{
			"what", "why", "how", "when", "where", "who", "which", "whose",
			"can", "could", "would", "should", "do", "does", "did", "is", "are", "will", "shall",
		},
		Imperative: []string{
			"put", "give", "take", "look", "try", "come", "stop", "wait", "turn", "move",
			"push", "pull", "press", "hold", "show", "tell", "let's", "go", "pick", "place",
			"watch", "listen", "sit", "stand", "help", "use", "make", "don't",
		},
		Instruction: []string{
			"you need to", "you have to", "you should", "make sure", "first you", "now you", "next you",
		},
		Emotional: []string{
			"love", "happy", "sad", "angry", "scared", "afraid", "excited", "wow", "yay",
			"ouch", "upset", "frustrated", "fun", "funny", "boring", "hate", "worried", "proud",
		},
		Praise: []string{
			"good job", "well done", "great", "awesome", "nice", "excellent", "perfect",
			"amazing", "brilliant", "fantastic", "good", "clever", "you did it", "keep going",
		},
	}
}

// LoadLexicon decodes a YAML lexicon. Lists missing from the document keep
// their defaults.
func LoadLexicon(r io.Reader) (Lexicon, error) {
	lex := DefaultLexicon()
	var override Lexicon
	if err := yaml.NewDecoder(r).Decode(&override); err != nil && err != io.EOF {
		return Lexicon{}, fmt.Errorf("lexicon decode: %w", err)
	}
	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	replace(&lex.StopWords, override.StopWords)
	replace(&lex.Interrogative, override.Interrogative)
	replace(&lex.Imperative, override.Imperative)
	replace(&lex.Instruction, override.Instruction)
	replace(&lex.Emotional, override.Emotional)
	replace(&lex.Praise, override.Praise)
	return lex, nil
}

// compiled splits a lexicon into single-token sets and multi-word phrases.
type compiled struct {
	stop          set
	interrogative set
	imperative    set
	instruction   []string
	emotional     set
	emotionalPh   []string
	praise        set
	praisePh      []string
}

type set map[string]struct{}

func (s set) has(w string) bool {
	_, ok := s[w]
	return ok
}

func compile(l Lexicon) compiled {
	c := compiled{
		stop:          toSet(l.StopWords),
		interrogative: toSet(l.Interrogative),
		imperative:    toSet(l.Imperative),
		instruction:   normalize(l.Instruction),
	}
	c.emotional, c.emotionalPh = splitPhrases(l.Emotional)
	c.praise, c.praisePh = splitPhrases(l.Praise)
	return c
}

func toSet(words []string) set {
	s := make(set, len(words))
	for _, w := range normalize(words) {
		s[w] = struct{}{}
	}
	return s
}

func splitPhrases(entries []string) (set, []string) {
	words := set{}
	var phrases []string
	for _, e := range normalize(entries) {
		if strings.Contains(e, " ") {
			phrases = append(phrases, e)
		} else {
			words[e] = struct{}{}
		}
	}
	return words, phrases
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.Join(strings.Fields(s), " ")); s != "" {
			out = append(out, s)
		}
	}
	return out
}
