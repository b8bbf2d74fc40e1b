package solr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimDocID(t *testing.T) {
	id := ClaimDocID("6f1e8a9c-0000-0000-0000-000000000001")
	assert.Equal(t, "claim:6f1e8a9c-0000-0000-0000-000000000001", id)
	assert.True(t, IsClaimDocID(id))
	assert.False(t, IsTranscriptDocID(id))

	parsed, ok := ParseClaimDocID(id)
	assert.True(t, ok)
	assert.Equal(t, "6f1e8a9c-0000-0000-0000-000000000001", parsed)
}

func TestTranscriptDocID(t *testing.T) {
	id := TranscriptDocID("6f1e8a9c-0000-0000-0000-000000000002")
	assert.Equal(t, "video:6f1e8a9c-0000-0000-0000-000000000002", id)
	assert.True(t, IsTranscriptDocID(id))
	assert.False(t, IsClaimDocID(id))

	parsed, ok := ParseTranscriptDocID(id)
	assert.True(t, ok)
	assert.Equal(t, "6f1e8a9c-0000-0000-0000-000000000002", parsed)
}

func TestParseRejectsForeignIDs(t *testing.T) {
	_, ok := ParseClaimDocID("video:abc")
	assert.False(t, ok)

	_, ok = ParseTranscriptDocID("claim:abc")
	assert.False(t, ok)
}
