package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON3(t *testing.T) {
	data := []byte(`{
		"events": [
			{"tStartMs": 0, "dDurationMs": 2000, "segs": [{"utf8": "the bronze age"}, {"utf8": " collapse"}]},
			{"tStartMs": 2000, "dDurationMs": 0},
			{"tStartMs": 2500, "dDurationMs": 1500, "segs": [{"utf8": "\n"}]},
			{"tStartMs": 4000, "dDurationMs": 3000, "segs": [{"utf8": "began  around\n1200 BCE"}]}
		]
	}`)

	transcript, err := ParseJSON3(data)
	require.NoError(t, err)

	require.Len(t, transcript.Segments, 2)
	assert.Equal(t, "the bronze age collapse", transcript.Segments[0].Text)
	assert.InDelta(t, 0.0, transcript.Segments[0].Start, 0.001)
	assert.InDelta(t, 2.0, transcript.Segments[0].Duration, 0.001)
	assert.Equal(t, "began around 1200 BCE", transcript.Segments[1].Text)
	assert.InDelta(t, 4.0, transcript.Segments[1].Start, 0.001)

	assert.Equal(t, "the bronze age collapse began around 1200 BCE", transcript.FullText)
}

func TestParseJSON3Empty(t *testing.T) {
	transcript, err := ParseJSON3([]byte(`{"events": []}`))
	require.NoError(t, err)

	assert.Empty(t, transcript.Segments)
	assert.Empty(t, transcript.FullText)
}

func TestParseJSON3Malformed(t *testing.T) {
	_, err := ParseJSON3([]byte(`{"events": `))
	assert.Error(t, err)
}
