package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is the serialised form of a posted event, used by the journal and the
// live stream. Category holds the catalog name when there is one, else the Go type.
type Record struct {
	ID       uuid.UUID       `json:"id"`
	Category string          `json:"category"`
	Payload  json.RawMessage `json:"payload"`
	PostedAt time.Time       `json:"posted_at"`
}

func NewRecord(e any) (Record, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Record{}, fmt.Errorf("marshaling event payload: %w", err)
	}
	return Record{
		ID:       uuid.New(),
		Category: DisplayName(CategoryOf(e)),
		Payload:  payload,
		PostedAt: time.Now().UTC(),
	}, nil
}

// DisplayName prefers the catalog name and falls back to the Go type name.
func DisplayName(c Category) string {
	if name := NameOf(c); name != "" {
		return name
	}
	return c.String()
}
