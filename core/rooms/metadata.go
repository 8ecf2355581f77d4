package rooms

import (
	"encoding/json"
	"fmt"
)

// Scenario describes the load that the simulated call is about.
type Scenario struct {
	LoadID                 string  `json:"loadId"`
	LoadType               string  `json:"loadType"`
	Weight                 int     `json:"weight"`
	PickupLocation         string  `json:"pickupLocation"`
	PickupTime             string  `json:"pickupTime"`
	PickupType             string  `json:"pickupType"`
	DeliveryLocation       string  `json:"deliveryLocation"`
	DeliveryDeadline       string  `json:"deliveryDeadline"`
	TrailerType            string  `json:"trailerType"`
	RatePerMile            float64 `json:"ratePerMile"`
	TotalRate              float64 `json:"totalRate"`
	Accessorials           string  `json:"accessorials"`
	SecurementRequirements string  `json:"securementRequirements"`
	TMSUpdate              string  `json:"tmsUpdate"`
}

// AgentConfig carries one agent's persona configuration.
type AgentConfig struct {
	Role        string `json:"role"`
	Prompt      string `json:"prompt"`
	ActingNotes string `json:"actingNotes,omitempty"`
}

// RoomMetadata is the configuration blob attached to a call's room.
type RoomMetadata struct {
	Scenario        *Scenario   `json:"scenario,omitempty"`
	DispatcherAgent AgentConfig `json:"dispatcherAgent"`
	DriverAgent     AgentConfig `json:"driverAgent"`
}

// IsEmpty reports whether the metadata carries no usable configuration.
func (m RoomMetadata) IsEmpty() bool {
	return m.Scenario == nil && m.DispatcherAgent == (AgentConfig{}) && m.DriverAgent == (AgentConfig{})
}

// ParseMetadata decodes a room's metadata blob.
func ParseMetadata(blob string) (RoomMetadata, error) {
	var metadata RoomMetadata
	if blob == "" {
		return metadata, nil
	}

	if err := json.Unmarshal([]byte(blob), &metadata); err != nil {
		return RoomMetadata{}, fmt.Errorf("failed to decode room metadata: %w", err)
	}
	return metadata, nil
}

// FormatScenario renders the scenario as the plain-text block embedded into
// agent instructions.
func FormatScenario(s *Scenario) string {
	if s == nil {
		return ""
	}

	return fmt.Sprintf(`
Load ID: %s
Load Type: %s
Weight: %d lbs
Pickup: %s at %s (%s)
Delivery: %s by %s
Trailer: %s
Rate: $%.2f/mile ($%.2f total)
Accessorials: %s
Securement: %s
TMS Update: %s
`,
		s.LoadID,
		s.LoadType,
		s.Weight,
		s.PickupLocation, s.PickupTime, s.PickupType,
		s.DeliveryLocation, s.DeliveryDeadline,
		s.TrailerType,
		s.RatePerMile, s.TotalRate,
		s.Accessorials,
		s.SecurementRequirements,
		s.TMSUpdate,
	)
}
