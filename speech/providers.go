package speech

import (
	"strconv"
	"strings"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming/types"

	"github.com/maastricht-university/edmo-interaction/timeutil"
)

// FromGoogle converts Google Speech results. With diarization enabled the
// final result repeats every word with its speaker tag, so when the last
// result is tagged it is used alone.
func FromGoogle(results []*speechpb.SpeechRecognitionResult) ([]Fragment, error) {
	if len(results) == 0 {
		return nil, nil
	}
	if last := results[len(results)-1]; googleTagged(last) {
		results = results[len(results)-1:]
	}

	out := make([]Fragment, 0, len(results))
	for _, res := range results {
		var f Fragment
		for _, alt := range res.GetAlternatives() {
			a := Alternative{
				Transcript: alt.GetTranscript(),
				Confidence: float64(alt.GetConfidence()),
				Words:      make([]Word, 0, len(alt.GetWords())),
			}
			for _, w := range alt.GetWords() {
				start, err := timeutil.Parse(w.GetStartTime())
				if err != nil {
					return nil, err
				}
				end, err := timeutil.Parse(w.GetEndTime())
				if err != nil {
					return nil, err
				}
				a.Words = append(a.Words, Word{
					Text:       w.GetWord(),
					Start:      start,
					End:        end,
					SpeakerTag: int(w.GetSpeakerTag()),
					Confidence: float64(w.GetConfidence()),
				})
			}
			f.Alternatives = append(f.Alternatives, a)
		}
		out = append(out, f)
	}
	return out, nil
}

func googleTagged(res *speechpb.SpeechRecognitionResult) bool {
	alts := res.GetAlternatives()
	if len(alts) == 0 || len(alts[0].GetWords()) == 0 {
		return false
	}
	for _, w := range alts[0].GetWords() {
		if w.GetSpeakerTag() == 0 {
			return false
		}
	}
	return true
}

// FromTranscribe converts Amazon Transcribe streaming results. Partial
// results and punctuation items are skipped; speaker labels "0" or "spk_0"
// become tag 1.
func FromTranscribe(results []types.Result) []Fragment {
	out := make([]Fragment, 0, len(results))
	for _, res := range results {
		if res.IsPartial {
			continue
		}
		var f Fragment
		for _, alt := range res.Alternatives {
			a := Alternative{Transcript: aws.ToString(alt.Transcript), Words: make([]Word, 0, len(alt.Items))}
			for _, it := range alt.Items {
				if it.Type == types.ItemTypePunctuation {
					continue
				}
				a.Words = append(a.Words, Word{
					Text:       aws.ToString(it.Content),
					Start:      it.StartTime,
					End:        it.EndTime,
					SpeakerTag: transcribeSpeaker(aws.ToString(it.Speaker)),
					Confidence: aws.ToFloat64(it.Confidence),
				})
			}
			f.Alternatives = append(f.Alternatives, a)
		}
		out = append(out, f)
	}
	return out
}

func transcribeSpeaker(label string) int {
	label = strings.TrimPrefix(strings.TrimSpace(label), "spk_")
	n, err := strconv.Atoi(label)
	if err != nil || n < 0 {
		return 0
	}
	return n + 1
}
