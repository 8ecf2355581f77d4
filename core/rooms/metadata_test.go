package rooms

import (
	"strings"
	"testing"
)

func TestParseMetadata(t *testing.T) {
	metadata, err := ParseMetadata(`{
		"scenario": {"loadId": "LD-1042", "weight": 42000, "ratePerMile": 2.5},
		"dispatcherAgent": {"role": "Sam", "prompt": "You are Sam.", "actingNotes": "Be brisk."},
		"driverAgent": {"role": "Reyna", "prompt": "You are Reyna."}
	}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if metadata.Scenario == nil || metadata.Scenario.LoadID != "LD-1042" {
		t.Fatalf("scenario not decoded: %+v", metadata.Scenario)
	}
	if metadata.Scenario.Weight != 42000 || metadata.Scenario.RatePerMile != 2.5 {
		t.Fatalf("scenario numbers not decoded: %+v", metadata.Scenario)
	}
	if metadata.DispatcherAgent.ActingNotes != "Be brisk." {
		t.Fatalf("acting notes not decoded: %+v", metadata.DispatcherAgent)
	}
	if metadata.IsEmpty() {
		t.Fatal("populated metadata reported empty")
	}
}

func TestParseMetadataEmptyBlob(t *testing.T) {
	metadata, err := ParseMetadata("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !metadata.IsEmpty() {
		t.Fatalf("expected empty metadata, got %+v", metadata)
	}
}

func TestParseMetadataRejectsBadJSON(t *testing.T) {
	if _, err := ParseMetadata("{not json"); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestIsEmpty(t *testing.T) {
	if !(RoomMetadata{}).IsEmpty() {
		t.Fatal("zero metadata should be empty")
	}
	if (RoomMetadata{Scenario: &Scenario{}}).IsEmpty() {
		t.Fatal("metadata with a scenario should not be empty")
	}
	if (RoomMetadata{DriverAgent: AgentConfig{Role: "Reyna"}}).IsEmpty() {
		t.Fatal("metadata with an agent should not be empty")
	}
}

func TestFormatScenario(t *testing.T) {
	got := FormatScenario(&Scenario{
		LoadID:           "LD-1042",
		LoadType:         "Dry Van",
		Weight:           42000,
		PickupLocation:   "Dallas, TX",
		PickupTime:       "08:00",
		PickupType:       "live load",
		DeliveryLocation: "Memphis, TN",
		DeliveryDeadline: "tomorrow 17:00",
		TrailerType:      "53' dry van",
		RatePerMile:      2.5,
		TotalRate:        1125,
	})

	for _, want := range []string{
		"Load ID: LD-1042",
		"Weight: 42000 lbs",
		"Pickup: Dallas, TX at 08:00 (live load)",
		"Delivery: Memphis, TN by tomorrow 17:00",
		"Rate: $2.50/mile ($1125.00 total)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted scenario missing %q:\n%s", want, got)
		}
	}
}

func TestFormatScenarioNil(t *testing.T) {
	if got := FormatScenario(nil); got != "" {
		t.Fatalf("expected empty string for nil scenario, got %q", got)
	}
}
