// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckinRecordedEvent is published when a check-in is appended to the
// ledger. It carries enough context for downstream consumers (audit trail,
// loyalty accrual, analytics) without querying the primary database.
type CheckinRecordedEvent struct {
	CheckinID  uint64 `json:"checkin_id"`
	UserID     uint64 `json:"user_id"`
	VenueID    uint64 `json:"venue_id"`
	VenueName  string `json:"venue_name"`
	VenueCity  string `json:"venue_city,omitempty"`
	RecordedAt string `json:"recorded_at"`
}
