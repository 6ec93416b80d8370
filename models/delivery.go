package models

import (
	"time"

	"github.com/tonearm/tonearm/internal/snowflake"
)

// A Request is the base type for queued work that is retried in the
// background.
type Request struct {
	ID uint32 `gorm:"primarykey;"`
	// CreatedAt is the time the request was created.
	CreatedAt time.Time
	// UpdatedAt is the time the request was last updated.
	UpdatedAt time.Time
	// Attempts is the number of times the request has been attempted.
	Attempts uint32 `gorm:"not null;default:0"`
	// LastAttempt is the time the request was last attempted.
	LastAttempt time.Time
	// LastResult is the result of the last attempt if it failed.
	LastResult string `gorm:"type:text;"`
}

// A DeliveryRequest records an outbound activity whose synchronous delivery
// failed. The delivery worker retries it a bounded number of times.
type DeliveryRequest struct {
	Request

	ArtistID snowflake.ID `gorm:"not null;"`
	Artist   *Artist      `gorm:"constraint:OnDelete:CASCADE;<-:false;"`
	// KeyID is the signing key id captured when the delivery was queued,
	// so retries sign consistently even if the public URL changes.
	KeyID string `gorm:"size:255;not null"`
	// InboxURI is the remote inbox the activity is addressed to.
	InboxURI string `gorm:"size:255;not null"`
	// Activity is the activity document to deliver.
	Activity map[string]any `gorm:"serializer:json;not null"`
}
