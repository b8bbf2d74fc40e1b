package domain

import (
	"strings"

	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// ClaimCategory classifies what kind of assertion a claim makes.
type ClaimCategory string

const (
	CategoryFactual          ClaimCategory = "factual"
	CategoryCausal           ClaimCategory = "causal"
	CategoryCyclical         ClaimCategory = "cyclical"
	CategoryMemetic          ClaimCategory = "memetic"
	CategoryGeopolitical     ClaimCategory = "geopolitical"
	CategoryPhenomenological ClaimCategory = "phenomenological"
	CategoryMetaphysical     ClaimCategory = "metaphysical"
)

// ClaimCategories lists every valid category.
var ClaimCategories = []ClaimCategory{
	CategoryFactual,
	CategoryCausal,
	CategoryCyclical,
	CategoryMemetic,
	CategoryGeopolitical,
	CategoryPhenomenological,
	CategoryMetaphysical,
}

// ParseClaimCategory accepts canonical values plus the aliases callers
// historically used on the command line.
func ParseClaimCategory(s string) (ClaimCategory, error) {
	switch normalize(s) {
	case "factual":
		return CategoryFactual, nil
	case "causal", "causal_claim":
		return CategoryCausal, nil
	case "cyclical", "cyclical_pattern":
		return CategoryCyclical, nil
	case "memetic", "memetic_transmission":
		return CategoryMemetic, nil
	case "geopolitical", "geopolitical_dynamic":
		return CategoryGeopolitical, nil
	case "phenomenological":
		return CategoryPhenomenological, nil
	case "metaphysical":
		return CategoryMetaphysical, nil
	}

	return "", apperrors.Validationf("category", "unknown claim category %q", s)
}

// Valid reports whether the value is a canonical category. Aliases are a
// parsing convenience only; stored values must be canonical.
func (c ClaimCategory) Valid() bool {
	switch c {
	case CategoryFactual, CategoryCausal, CategoryCyclical, CategoryMemetic,
		CategoryGeopolitical, CategoryPhenomenological, CategoryMetaphysical:
		return true
	}

	return false
}

// Confidence grades how well the source quote backs the claim.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

func ParseConfidence(s string) (Confidence, error) {
	switch normalize(s) {
	case "high":
		return ConfidenceHigh, nil
	case "medium", "med":
		return ConfidenceMedium, nil
	case "low":
		return ConfidenceLow, nil
	}

	return "", apperrors.Validationf("confidence", "unknown confidence %q", s)
}

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}

	return false
}

// LinkKind is the typed relationship between two claims. Links are directed;
// "related" is conceptually symmetric but the store never creates the inverse.
type LinkKind string

const (
	LinkSupports    LinkKind = "supports"
	LinkContradicts LinkKind = "contradicts"
	LinkElaborates  LinkKind = "elaborates"
	LinkCauses      LinkKind = "causes"
	LinkCausedBy    LinkKind = "caused_by"
	LinkRelated     LinkKind = "related"
)

func ParseLinkKind(s string) (LinkKind, error) {
	switch normalize(s) {
	case "supports":
		return LinkSupports, nil
	case "contradicts":
		return LinkContradicts, nil
	case "elaborates":
		return LinkElaborates, nil
	case "causes":
		return LinkCauses, nil
	case "caused_by", "causedby":
		return LinkCausedBy, nil
	case "related":
		return LinkRelated, nil
	}

	return "", apperrors.Validationf("kind", "unknown link kind %q", s)
}

func (k LinkKind) Valid() bool {
	switch k {
	case LinkSupports, LinkContradicts, LinkElaborates, LinkCauses, LinkCausedBy, LinkRelated:
		return true
	}

	return false
}

// QueueStatus is the processing lifecycle state of a video's queue entry.
type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueInProgress QueueStatus = "in_progress"
	QueueCompleted  QueueStatus = "completed"
	QueueFailed     QueueStatus = "failed"
)

// QueueStatuses lists every queue state, in lifecycle order.
var QueueStatuses = []QueueStatus{QueuePending, QueueInProgress, QueueCompleted, QueueFailed}

// ParseQueueStatus accepts only the four canonical states. Queue statuses
// are written and compared verbatim against stored rows, so there is no
// alias vocabulary here.
func ParseQueueStatus(s string) (QueueStatus, error) {
	switch normalize(s) {
	case "pending":
		return QueuePending, nil
	case "in_progress":
		return QueueInProgress, nil
	case "completed":
		return QueueCompleted, nil
	case "failed":
		return QueueFailed, nil
	}

	return "", apperrors.Validationf("status", "unknown queue status %q", s)
}

func (s QueueStatus) Valid() bool {
	switch s {
	case QueuePending, QueueInProgress, QueueCompleted, QueueFailed:
		return true
	}

	return false
}

// OrDefault returns the status, or QueuePending when unset. Listing the
// queue without a status filter shows pending work.
func (s QueueStatus) OrDefault() QueueStatus {
	if s == "" {
		return QueuePending
	}

	return s
}

// Era is a closed vocabulary of broad historical periods used for tagging.
// Regions, by contrast, are an open vocabulary interned by the store.
type Era string

const (
	EraPrehistoric        Era = "prehistoric"
	EraBronzeAge          Era = "bronze_age"
	EraIronAge            Era = "iron_age"
	EraClassicalAntiquity Era = "classical_antiquity"
	EraLateAntiquity      Era = "late_antiquity"
	EraMedieval           Era = "medieval"
	EraEarlyModern        Era = "early_modern"
	EraModern             Era = "modern"
)

// Eras lists every era in chronological order.
var Eras = []Era{
	EraPrehistoric,
	EraBronzeAge,
	EraIronAge,
	EraClassicalAntiquity,
	EraLateAntiquity,
	EraMedieval,
	EraEarlyModern,
	EraModern,
}

func ParseEra(s string) (Era, error) {
	switch normalize(s) {
	case "prehistoric":
		return EraPrehistoric, nil
	case "bronze_age", "bronze":
		return EraBronzeAge, nil
	case "iron_age", "iron":
		return EraIronAge, nil
	case "classical_antiquity", "classical", "antiquity":
		return EraClassicalAntiquity, nil
	case "late_antiquity":
		return EraLateAntiquity, nil
	case "medieval":
		return EraMedieval, nil
	case "early_modern":
		return EraEarlyModern, nil
	case "modern":
		return EraModern, nil
	}

	return "", apperrors.Validationf("era", "unknown era %q", s)
}

func (e Era) Valid() bool {
	switch e {
	case EraPrehistoric, EraBronzeAge, EraIronAge, EraClassicalAntiquity,
		EraLateAntiquity, EraMedieval, EraEarlyModern, EraModern:
		return true
	}

	return false
}

// QuestionStatus tracks whether a research question is still open.
type QuestionStatus string

const (
	QuestionOpen     QuestionStatus = "open"
	QuestionAnswered QuestionStatus = "answered"
)

func ParseQuestionStatus(s string) (QuestionStatus, error) {
	switch normalize(s) {
	case "open", "active":
		return QuestionOpen, nil
	case "answered":
		return QuestionAnswered, nil
	}

	return "", apperrors.Validationf("status", "unknown question status %q", s)
}

func (s QuestionStatus) Valid() bool {
	return s == QuestionOpen || s == QuestionAnswered
}

// PatternType classifies a detected cross-video pattern.
type PatternType string

const (
	PatternRecurringTheme PatternType = "recurring_theme"
	PatternContradiction  PatternType = "contradiction"
	PatternConsensus      PatternType = "consensus"
	PatternEvolution      PatternType = "evolution"
	PatternParallel       PatternType = "parallel"
)

func ParsePatternType(s string) (PatternType, error) {
	switch normalize(s) {
	case "recurring_theme", "theme", "recurring":
		return PatternRecurringTheme, nil
	case "contradiction":
		return PatternContradiction, nil
	case "consensus":
		return PatternConsensus, nil
	case "evolution":
		return PatternEvolution, nil
	case "parallel":
		return PatternParallel, nil
	}

	return "", apperrors.Validationf("type", "unknown pattern type %q", s)
}

func (p PatternType) Valid() bool {
	switch p {
	case PatternRecurringTheme, PatternContradiction, PatternConsensus,
		PatternEvolution, PatternParallel:
		return true
	}

	return false
}

// SourceType classifies a cited work.
type SourceType string

const (
	SourceBook        SourceType = "book"
	SourcePaper       SourceType = "paper"
	SourceDocumentary SourceType = "documentary"
	SourceArticle     SourceType = "article"
	SourceLecture     SourceType = "lecture"
)

func ParseSourceType(s string) (SourceType, error) {
	switch normalize(s) {
	case "book":
		return SourceBook, nil
	case "paper":
		return SourcePaper, nil
	case "documentary":
		return SourceDocumentary, nil
	case "article":
		return SourceArticle, nil
	case "lecture":
		return SourceLecture, nil
	}

	return "", apperrors.Validationf("source_type", "unknown source type %q", s)
}

func (s SourceType) Valid() bool {
	switch s {
	case SourceBook, SourcePaper, SourceDocumentary, SourceArticle, SourceLecture:
		return true
	}

	return false
}

// VisualType classifies an on-screen visual.
type VisualType string

const (
	VisualPainting VisualType = "painting"
	VisualMap      VisualType = "map"
	VisualDiagram  VisualType = "diagram"
	VisualArtifact VisualType = "artifact"
	VisualChart    VisualType = "chart"
	VisualPhoto    VisualType = "photo"
	VisualSkeleton VisualType = "skeleton"
	VisualSymbol   VisualType = "symbol"
)

func ParseVisualType(s string) (VisualType, error) {
	switch normalize(s) {
	case "painting":
		return VisualPainting, nil
	case "map":
		return VisualMap, nil
	case "diagram":
		return VisualDiagram, nil
	case "artifact":
		return VisualArtifact, nil
	case "chart":
		return VisualChart, nil
	case "photo":
		return VisualPhoto, nil
	case "skeleton":
		return VisualSkeleton, nil
	case "symbol":
		return VisualSymbol, nil
	}

	return "", apperrors.Validationf("visual_type", "unknown visual type %q", s)
}

func (v VisualType) Valid() bool {
	switch v {
	case VisualPainting, VisualMap, VisualDiagram, VisualArtifact,
		VisualChart, VisualPhoto, VisualSkeleton, VisualSymbol:
		return true
	}

	return false
}

// EvidenceType classifies a piece of cited physical or scholarly evidence.
type EvidenceType string

const (
	EvidenceArchaeological  EvidenceType = "archaeological"
	EvidenceGenetic         EvidenceType = "genetic"
	EvidenceTextual         EvidenceType = "textual"
	EvidenceAnthropological EvidenceType = "anthropological"
	EvidenceLinguistic      EvidenceType = "linguistic"
	EvidenceArtistic        EvidenceType = "artistic"
	EvidenceScientific      EvidenceType = "scientific"
)

func ParseEvidenceType(s string) (EvidenceType, error) {
	switch normalize(s) {
	case "archaeological":
		return EvidenceArchaeological, nil
	case "genetic":
		return EvidenceGenetic, nil
	case "textual":
		return EvidenceTextual, nil
	case "anthropological":
		return EvidenceAnthropological, nil
	case "linguistic":
		return EvidenceLinguistic, nil
	case "artistic":
		return EvidenceArtistic, nil
	case "scientific":
		return EvidenceScientific, nil
	}

	return "", apperrors.Validationf("evidence_type", "unknown evidence type %q", s)
}

func (e EvidenceType) Valid() bool {
	switch e {
	case EvidenceArchaeological, EvidenceGenetic, EvidenceTextual,
		EvidenceAnthropological, EvidenceLinguistic, EvidenceArtistic,
		EvidenceScientific:
		return true
	}

	return false
}

// normalize folds user-facing vocabulary input: lowercase, trimmed, with
// hyphens treated as underscores.
func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
