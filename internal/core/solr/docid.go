package solr

import "strings"

// Document ID prefixes.
const (
	prefixClaim      = "claim:"
	prefixTranscript = "video:"
)

// ClaimDocID generates a document ID for a claim.
// Format: "claim:{claim_uuid}"
func ClaimDocID(claimID string) string {
	return prefixClaim + claimID
}

// TranscriptDocID generates a document ID for a video transcript.
// Format: "video:{video_uuid}"
func TranscriptDocID(videoID string) string {
	return prefixTranscript + videoID
}

// ParseClaimDocID extracts the claim id from a claim document ID.
// Returns ("", false) if the ID is not a claim document ID.
func ParseClaimDocID(docID string) (string, bool) {
	if !strings.HasPrefix(docID, prefixClaim) {
		return "", false
	}

	return docID[len(prefixClaim):], true
}

// ParseTranscriptDocID extracts the video id from a transcript document ID.
// Returns ("", false) if the ID is not a transcript document ID.
func ParseTranscriptDocID(docID string) (string, bool) {
	if !strings.HasPrefix(docID, prefixTranscript) {
		return "", false
	}

	return docID[len(prefixTranscript):], true
}

// IsClaimDocID checks if a document ID is for a claim.
func IsClaimDocID(docID string) bool {
	return strings.HasPrefix(docID, prefixClaim)
}

// IsTranscriptDocID checks if a document ID is for a transcript.
func IsTranscriptDocID(docID string) bool {
	return strings.HasPrefix(docID, prefixTranscript)
}
