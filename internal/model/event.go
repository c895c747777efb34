package model

import "time"

// ProcessedEvent records that a processor webhook was applied, keyed by (Processor, EventID).
type ProcessedEvent struct {
	Processor   Processor `json:"processor"`
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	Outcome     string    `json:"outcome"`
	ProcessedAt time.Time `json:"processed_at"`
}
