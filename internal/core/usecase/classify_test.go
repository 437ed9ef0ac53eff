package usecase

import (
	"testing"

	"github.com/incois/floatchat/internal/core/domain"
)

func TestClassifyDataAccessTriggers(t *testing.T) {
	classifier := NewClassifier()

	for _, text := range []string{
		"How to download Argo data?",
		"where can I get netcdf profiles",
		"what is the GDAC portal",
	} {
		intent, confidence := classifier.Classify(text)
		if intent != domain.IntentDataAccess {
			t.Fatalf("Classify(%q) = %s, want data_access", text, intent)
		}
		if confidence <= 0 {
			t.Fatalf("Classify(%q) confidence = %v, want > 0", text, confidence)
		}
	}
}

func TestClassifyEmptyInputIsUnclassified(t *testing.T) {
	classifier := NewClassifier()

	for _, text := range []string{"", "   ", "\n\t"} {
		intent, confidence := classifier.Classify(text)
		if intent != domain.IntentUnclassified {
			t.Fatalf("Classify(%q) = %s, want unclassified", text, intent)
		}
		if confidence != 0 {
			t.Fatalf("Classify(%q) confidence = %v, want 0", text, confidence)
		}
	}
}

func TestClassifyRegionalQueriesBeatGenericTerms(t *testing.T) {
	classifier := NewClassifier()

	intent, _ := classifier.Classify("Status of Argo floats in Indian Ocean")
	if intent != domain.IntentIndianOceanStatus {
		t.Fatalf("expected indian_ocean_status, got %s", intent)
	}
}

func TestClassifyTieBreaksByPriorityOrder(t *testing.T) {
	classifier := NewClassifier()

	// One trigger each for indian_ocean_status and data_access; the regional
	// intent has the higher priority.
	intent, _ := classifier.Classify("download observations from the arabian sea")
	if intent != domain.IntentIndianOceanStatus {
		t.Fatalf("expected indian_ocean_status on tie, got %s", intent)
	}
}

func TestClassifyGenericTermsFallBackToProgramOverview(t *testing.T) {
	classifier := NewClassifier()

	intent, confidence := classifier.Classify("tell me about ocean salinity measurements")
	if intent != domain.IntentProgramOverview {
		t.Fatalf("expected program_overview fallback, got %s", intent)
	}
	if confidence >= 0.5 {
		t.Fatalf("generic fallback should report low confidence, got %v", confidence)
	}

	intent, confidence = classifier.Classify("recommend a pizza place")
	if intent != domain.IntentUnclassified || confidence != 0 {
		t.Fatalf("expected unclassified for off-topic text, got %s (%v)", intent, confidence)
	}
}

func TestListIntentsIsStable(t *testing.T) {
	classifier := NewClassifier()

	first := classifier.ListIntents()
	second := classifier.ListIntents()
	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("expected 4 intents, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Intent != second[i].Intent {
			t.Fatalf("intent order changed between calls: %s vs %s", first[i].Intent, second[i].Intent)
		}
		if len(first[i].ExampleTriggers) == 0 {
			t.Fatalf("intent %s has no example triggers", first[i].Intent)
		}
	}
	if first[0].Intent != domain.IntentIndianOceanStatus {
		t.Fatalf("expected indian_ocean_status first, got %s", first[0].Intent)
	}
}
