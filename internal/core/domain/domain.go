// Package domain holds the entity records and closed vocabularies of the
// knowledge graph. Records are plain structs; all validation beyond enum
// parsing lives in the store so that a write either fully applies or fully
// fails.
package domain

import "time"

// Video is the shell persisted for a fetched transcript source. Videos are
// never deleted; the research history is append-only.
type Video struct {
	ID          string
	ExternalID  string // platform video id, unique
	URL         string
	Title       string
	Channel     string
	UploadDate  time.Time // zero when the platform omitted it
	Description string
	FetchedAt   time.Time
	Eras        []Era
	RegionIDs   []int64
}

// TranscriptSegment is one timed caption line.
type TranscriptSegment struct {
	Start    float64 // seconds
	Duration float64
	Text     string
}

// Transcript is the parsed caption track for a video.
type Transcript struct {
	VideoID  string
	Language string
	Segments []TranscriptSegment
	FullText string
}

// Claim is an atomic, quote-backed assertion extracted from a transcript.
// Identity is permanent; other entities may reference it indefinitely.
type Claim struct {
	ID           string
	VideoID      string // immutable after creation
	Text         string
	SourceQuote  string
	Category     ClaimCategory
	Confidence   Confidence
	Timestamp    float64 // seconds into the source video
	CreatedAt    time.Time
	LastAccessed time.Time // touched by normal reads, never by health scans
}

// Link is a directed, typed relationship between two claims.
type Link struct {
	ID            string
	SourceClaimID string
	TargetClaimID string
	Kind          LinkKind
	CreatedAt     time.Time
}

// MOC is a named, curated collection of claims. Membership is many-to-many.
type MOC struct {
	ID          string
	Name        string // unique
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Question is an open research question tracked against claim evidence.
type Question struct {
	ID        string
	Text      string
	Status    QuestionStatus
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuestionEvidence ties a claim to a question with a relevance note.
type QuestionEvidence struct {
	QuestionID string
	ClaimID    string
	Relevance  string
	AddedAt    time.Time
}

// Pattern is a detected cross-video pattern referencing claims and videos.
type Pattern struct {
	ID          string
	Type        PatternType
	Description string
	Confidence  float32
	ClaimIDs    []string
	VideoIDs    []string
	DetectedAt  time.Time
}

// QueueEntry is a video's processing-lifecycle row.
type QueueEntry struct {
	ID            string
	VideoID       string
	Status        QueueStatus
	Priority      int
	FailureReason string
	ClaimCount    int
	CreatedAt     time.Time
	StartedAt     time.Time // zero until started
	CompletedAt   time.Time // zero until completed or failed
}

// Region is an interned open-vocabulary geography tag.
type Region struct {
	ID       int64
	Name     string // normalized, unique
	ParentID int64  // 0 when top-level
}

// Location is a named point used by visuals and evidence artifacts.
type Location struct {
	ID        int64
	Name      string // unique
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
}

// Source is a cited work (book, paper, documentary, article, lecture).
type Source struct {
	ID        string
	Title     string
	Author    string
	Type      SourceType
	Year      int // 0 when unknown
	URL       string
	Notes     string
	CreatedAt time.Time
}

// Scholar is a thinker cited or discussed in videos.
type Scholar struct {
	ID           string
	Name         string
	Field        string
	Era          string // free-text era label, e.g. "14th century"
	Contribution string
	CreatedAt    time.Time
}

// Citation records a source or scholar being mentioned in a video.
type Citation struct {
	VideoID   string
	Timestamp float64
	Context   string
	AddedAt   time.Time
}

// Visual is an image, diagram, or artifact shown on screen.
type Visual struct {
	ID           string
	VideoID      string
	Description  string
	Type         VisualType
	Timestamp    float64
	Significance string
	LocationID   int64 // optional
	Era          Era   // optional
	CreatedAt    time.Time
}

// Term is a defined concept, optionally attributed to a scholar.
type Term struct {
	ID         string
	Term       string // unique
	Definition string
	Domain     string
	VideoID    string // optional, where first defined
	Timestamp  float64
	ScholarID  string // optional
	CreatedAt  time.Time
}

// EvidenceArtifact is a piece of physical or scholarly evidence cited in a
// video (distinct from QuestionEvidence, which ties claims to questions).
type EvidenceArtifact struct {
	ID          string
	VideoID     string
	Description string
	Type        EvidenceType
	Timestamp   float64
	LocationID  int64 // optional
	Era         Era   // optional
	CreatedAt   time.Time
}

// Quote is a notable quotation captured from a video.
type Quote struct {
	ID        string
	VideoID   string
	Text      string
	Speaker   string
	Timestamp float64
	Context   string
	CreatedAt time.Time
}
