package speech

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/maastricht-university/edmo-interaction/timeutil"
)

const mixedPayload = `{"results":[
 {"alternatives":[{"transcript":"look here","words":[
   {"word":"look","startTime":"2.000s","endTime":"2.400s","speakerTag":1,"confidence":0.9},
   {"word":"here","startTime":{"seconds":2,"nanos":500000000},"endTime":{"seconds":"3"},"speakerTag":1,"confidence":0.8}
 ]},{"transcript":"look hear","words":[]}]},
 {"alternatives":[{"transcript":"ok","words":[
   {"word":"ok","startTime":"0.5s","endTime":"0.9s","speakerTag":2,"confidence":0.7}
 ]}]}
]}`

func TestDecodeAndFlatten(t *testing.T) {
	frags, err := Decode(strings.NewReader(mixedPayload))
	require.NoError(t, err)
	require.Len(t, frags, 2)

	words := Flatten(frags)
	require.Len(t, words, 3)
	assert.Equal(t, "ok", words[0].Text)
	assert.Equal(t, "look", words[1].Text)
	assert.InDelta(t, 2.5, words[2].Start, 1e-9)
	assert.InDelta(t, 3.0, words[2].End, 1e-9)
	assert.Equal(t, []int{1, 2}, Speakers(words))

	invalid := append(words, Word{Text: "", Start: 4, End: 5, SpeakerTag: 7}, Word{Text: "x", Start: 5, End: 4, SpeakerTag: 8})
	assert.Equal(t, []int{1, 2}, Speakers(invalid))
}

func TestDecodeBareArrayAndEmpty(t *testing.T) {
	frags, err := Decode(strings.NewReader(`[{"alternatives":[{"words":[{"word":"hi","startTime":"0s","endTime":"1s","speakerTag":1}]}]}]`))
	require.NoError(t, err)
	assert.Len(t, Flatten(frags), 1)

	frags, err = Decode(strings.NewReader("  "))
	require.NoError(t, err)
	assert.Empty(t, Flatten(frags))
}

func TestDecodeMalformedTimestamp(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"alternatives":[{"words":[{"word":"hi","startTime":"1.5","endTime":"2s","speakerTag":1}]}]}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, timeutil.ErrUnrecognized)

	_, err = Decode(strings.NewReader(`[{"alternatives":[{"words":[{"word":"hi","endTime":"2s","speakerTag":1}]}]}]`))
	assert.ErrorIs(t, err, timeutil.ErrUnrecognized)
}

func TestFromGoogleUsesTaggedFinalResult(t *testing.T) {
	word := func(w string, start, end float64, tag int32) *speechpb.WordInfo {
		return &speechpb.WordInfo{
			Word:       w,
			StartTime:  durationpb.New(secs(start)),
			EndTime:    durationpb.New(secs(end)),
			SpeakerTag: tag,
			Confidence: 0.9,
		}
	}
	results := []*speechpb.SpeechRecognitionResult{
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Words: []*speechpb.WordInfo{word("hello", 0, 0.5, 0)}}}},
		{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Words: []*speechpb.WordInfo{
			word("hello", 0, 0.5, 1), word("there", 0.6, 1.0, 2),
		}}}},
	}

	frags, err := FromGoogle(results)
	require.NoError(t, err)
	words := Flatten(frags)
	require.Len(t, words, 2)
	assert.Equal(t, 1, words[0].SpeakerTag)
	assert.Equal(t, 2, words[1].SpeakerTag)
	assert.InDelta(t, 0.6, words[1].Start, 1e-6)
}

func TestFromTranscribe(t *testing.T) {
	results := []types.Result{
		{IsPartial: true, Alternatives: []types.Alternative{{Items: []types.Item{{Content: aws.String("ignored")}}}}},
		{Alternatives: []types.Alternative{{
			Transcript: aws.String("well done."),
			Items: []types.Item{
				{Content: aws.String("well"), StartTime: 1, EndTime: 1.2, Speaker: aws.String("0"), Type: types.ItemTypePronunciation, Confidence: aws.Float64(0.8)},
				{Content: aws.String("done"), StartTime: 1.3, EndTime: 1.6, Speaker: aws.String("spk_1"), Type: types.ItemTypePronunciation},
				{Content: aws.String("."), Type: types.ItemTypePunctuation},
			},
		}}},
	}
	words := Flatten(FromTranscribe(results))
	require.Len(t, words, 2)
	assert.Equal(t, 1, words[0].SpeakerTag)
	assert.Equal(t, 2, words[1].SpeakerTag)
	assert.InDelta(t, 0.8, words[0].Confidence, 1e-9)
}

func TestWordValid(t *testing.T) {
	assert.True(t, Word{Text: "a", Start: 1, End: 1, SpeakerTag: 1}.Valid())
	assert.False(t, Word{Text: " ", Start: 1, End: 2, SpeakerTag: 1}.Valid())
	assert.False(t, Word{Text: "a", Start: 2, End: 1, SpeakerTag: 1}.Valid())
	assert.False(t, Word{Text: "a", Start: 1, End: 2}.Valid())
}

func secs(f float64) time.Duration { return time.Duration(f * float64(time.Second)) }
