// Package activities composes outbound ActivityStreams documents.
package activities

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	FOLLOW = "Follow"
	ACCEPT = "Accept"
	UNDO   = "Undo"
)

// Accept returns an Accept activity from actor referencing the original
// activity as its object.
func Accept(actor string, object map[string]any) map[string]any {
	return map[string]any{
		"@context": "https://www.w3.org/ns/activitystreams",
		"id":       fmt.Sprintf("%s#accepts/follows/%s", actor, uuid.New().String()),
		"type":     ACCEPT,
		"actor":    actor,
		"object":   object,
	}
}
