package envelope

import (
	"fmt"
	"testing"
	"time"
)

func TestBuilderBasic(t *testing.T) {
	resp := New().
		Data(map[string]string{"key": "value"}).
		Build()

	if resp.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", resp.SchemaVersion, CurrentSchemaVersion)
	}

	data, ok := resp.Data.(map[string]string)
	if !ok {
		t.Fatalf("Data type = %T, want map[string]string", resp.Data)
	}
	if data["key"] != "value" {
		t.Errorf("Data[key] = %q, want %q", data["key"], "value")
	}
}

func TestBuilderWithConfidence(t *testing.T) {
	resp := New().
		Data(nil).
		WithConfidence(0.8, "heuristic match").
		Build()

	if resp.Meta == nil || resp.Meta.Confidence == nil {
		t.Fatal("Meta.Confidence should not be nil")
	}
	if resp.Meta.Confidence.Score != 0.8 {
		t.Errorf("Score = %v, want 0.8", resp.Meta.Confidence.Score)
	}
	if resp.Meta.Confidence.Tier != TierMedium {
		t.Errorf("Tier = %q, want %q", resp.Meta.Confidence.Tier, TierMedium)
	}
	if len(resp.Meta.Confidence.Reasons) != 1 || resp.Meta.Confidence.Reasons[0] != "heuristic match" {
		t.Errorf("Reasons = %v, want [heuristic match]", resp.Meta.Confidence.Reasons)
	}
}

func TestBuilderWithProvenance(t *testing.T) {
	resp := New().
		Data(nil).
		WithProvenance("patterns", 250*time.Millisecond).
		Build()

	if resp.Meta == nil || resp.Meta.Provenance == nil {
		t.Fatal("Meta.Provenance should not be nil")
	}
	if resp.Meta.Provenance.Source != "patterns" {
		t.Errorf("Source = %q, want %q", resp.Meta.Provenance.Source, "patterns")
	}
	if resp.Meta.Provenance.DurationMS != 250 {
		t.Errorf("DurationMS = %d, want 250", resp.Meta.Provenance.DurationMS)
	}
}

func TestBuilderWithTruncation(t *testing.T) {
	// Not truncated - should not add metadata
	resp := New().
		Data(nil).
		WithTruncation(false, 10, 10, "").
		Build()
	if resp.Meta != nil && resp.Meta.Truncation != nil {
		t.Error("Truncation should not be set when not truncated")
	}

	// Truncated - should add metadata
	resp = New().
		Data(nil).
		WithTruncation(true, 10, 100, "max-results").
		Build()

	if resp.Meta == nil || resp.Meta.Truncation == nil {
		t.Fatal("Meta.Truncation should not be nil")
	}
	if !resp.Meta.Truncation.IsTruncated {
		t.Error("IsTruncated should be true")
	}
	if resp.Meta.Truncation.Shown != 10 {
		t.Errorf("Shown = %d, want 10", resp.Meta.Truncation.Shown)
	}
	if resp.Meta.Truncation.Total != 100 {
		t.Errorf("Total = %d, want 100", resp.Meta.Truncation.Total)
	}
	if resp.Meta.Truncation.Reason != "max-results" {
		t.Errorf("Reason = %q, want %q", resp.Meta.Truncation.Reason, "max-results")
	}
}

func TestBuilderSuggest(t *testing.T) {
	resp := New().
		Data(nil).
		Suggest("validateChanges", map[string]interface{}{"filePath": "a.txt"}, "check for conflicts before applying").
		Suggest("applyChanges", map[string]interface{}{"filePath": "a.txt"}, "commit the staged edit").
		Build()

	if len(resp.SuggestedNextCalls) != 2 {
		t.Fatalf("SuggestedNextCalls count = %d, want 2", len(resp.SuggestedNextCalls))
	}
	call := resp.SuggestedNextCalls[0]
	if call.Tool != "validateChanges" {
		t.Errorf("Tool = %q, want %q", call.Tool, "validateChanges")
	}
	if call.Params["filePath"] != "a.txt" {
		t.Errorf("Params[filePath] = %v, want %q", call.Params["filePath"], "a.txt")
	}
}

func TestBuilderWarning(t *testing.T) {
	resp := New().
		Data(nil).
		Warning("first warning").
		WarningWithCode("W001", "coded warning").
		Build()

	if len(resp.Warnings) != 2 {
		t.Fatalf("Warnings count = %d, want 2", len(resp.Warnings))
	}

	if resp.Warnings[0].Message != "first warning" {
		t.Errorf("Warnings[0].Message = %q, want %q", resp.Warnings[0].Message, "first warning")
	}
	if resp.Warnings[0].Code != "" {
		t.Errorf("Warnings[0].Code = %q, want empty", resp.Warnings[0].Code)
	}

	if resp.Warnings[1].Code != "W001" {
		t.Errorf("Warnings[1].Code = %q, want %q", resp.Warnings[1].Code, "W001")
	}
	if resp.Warnings[1].Message != "coded warning" {
		t.Errorf("Warnings[1].Message = %q, want %q", resp.Warnings[1].Message, "coded warning")
	}
}

func TestBuilderError(t *testing.T) {
	resp := New().
		Data(nil).
		Error(nil).
		Build()
	if resp.Error != nil {
		t.Error("Error should be nil when no error passed")
	}

	testErr := fmt.Errorf("change not found")
	resp = New().
		Data(nil).
		Error(testErr).
		Build()
	if resp.Error == nil {
		t.Fatal("Error should not be nil")
	}
	if *resp.Error != "change not found" {
		t.Errorf("Error = %q, want %q", *resp.Error, "change not found")
	}
}
