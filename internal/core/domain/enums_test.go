package domain

import (
	"testing"

	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

func TestParseClaimCategory(t *testing.T) {
	tests := []struct {
		in      string
		want    ClaimCategory
		wantErr bool
	}{
		{"factual", CategoryFactual, false},
		{"Causal", CategoryCausal, false},
		{"causal_claim", CategoryCausal, false},
		{"cyclical-pattern", CategoryCyclical, false},
		{"  memetic ", CategoryMemetic, false},
		{"geopolitical_dynamic", CategoryGeopolitical, false},
		{"phenomenological", CategoryPhenomenological, false},
		{"metaphysical", CategoryMetaphysical, false},
		{"unknown", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseClaimCategory(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClaimCategory(%q) expected error", tt.in)
			} else if !apperrors.IsValidation(err) {
				t.Errorf("ParseClaimCategory(%q) error = %v, want validation error", tt.in, err)
			}

			continue
		}

		if err != nil {
			t.Errorf("ParseClaimCategory(%q) error = %v", tt.in, err)
			continue
		}

		if got != tt.want {
			t.Errorf("ParseClaimCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLinkKind(t *testing.T) {
	tests := []struct {
		in      string
		want    LinkKind
		wantErr bool
	}{
		{"supports", LinkSupports, false},
		{"CONTRADICTS", LinkContradicts, false},
		{"elaborates", LinkElaborates, false},
		{"causes", LinkCauses, false},
		{"causedby", LinkCausedBy, false},
		{"related", LinkRelated, false},
		{"follows", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLinkKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLinkKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}

		if got != tt.want {
			t.Errorf("ParseLinkKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseQueueStatus(t *testing.T) {
	for _, status := range QueueStatuses {
		got, err := ParseQueueStatus(string(status))
		if err != nil {
			t.Errorf("ParseQueueStatus(%q) error = %v", status, err)
		}

		if got != status {
			t.Errorf("ParseQueueStatus(%q) = %q", status, got)
		}
	}

	if _, err := ParseQueueStatus("in-progress"); err != nil {
		t.Errorf("ParseQueueStatus hyphen alias error = %v", err)
	}

	for _, in := range []string{"done", "error", "processing"} {
		if _, err := ParseQueueStatus(in); err == nil {
			t.Errorf("ParseQueueStatus(%q) expected error", in)
		}
	}
}

func TestQueueStatusOrDefault(t *testing.T) {
	if got := QueueStatus("").OrDefault(); got != QueuePending {
		t.Errorf("OrDefault() = %q, want %q", got, QueuePending)
	}

	if got := QueueFailed.OrDefault(); got != QueueFailed {
		t.Errorf("OrDefault() = %q, want %q", got, QueueFailed)
	}
}

func TestValidMethods(t *testing.T) {
	if !ConfidenceHigh.Valid() {
		t.Error("ConfidenceHigh should be valid")
	}

	if Confidence("certain").Valid() {
		t.Error("Confidence(\"certain\") should be invalid")
	}

	if !QueueInProgress.Valid() {
		t.Error("QueueInProgress should be valid")
	}

	if ClaimCategory("editorial").Valid() {
		t.Error("ClaimCategory(\"editorial\") should be invalid")
	}

	// Parse aliases are input tolerance only; they are never storable
	// values, so Valid rejects them.
	if QueueStatus("done").Valid() {
		t.Error("QueueStatus(\"done\") should be invalid")
	}

	if ClaimCategory("causal_claim").Valid() {
		t.Error("ClaimCategory(\"causal_claim\") should be invalid")
	}

	if Confidence("med").Valid() {
		t.Error("Confidence(\"med\") should be invalid")
	}
}

func TestParseEra(t *testing.T) {
	for _, era := range Eras {
		got, err := ParseEra(string(era))
		if err != nil {
			t.Errorf("ParseEra(%q) error = %v", era, err)
		}

		if got != era {
			t.Errorf("ParseEra(%q) = %q", era, got)
		}
	}

	if _, err := ParseEra("jurassic"); err == nil {
		t.Error("ParseEra(\"jurassic\") expected error")
	}
}
