package notify

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type payloadFields struct {
	Summary string `json:"summary" validate:"required"`
	Body    string `json:"body" validate:"required"`
	IconKey string `json:"icon" validate:"required"`
}

// Payload is a complete desktop notification. The only way to obtain a non-zero
// Payload is NewPayload, which rejects missing fields.
type Payload struct {
	f payloadFields
}

func NewPayload(summary, body, iconKey string) (Payload, error) {
	f := payloadFields{Summary: summary, Body: body, IconKey: iconKey}
	if err := validate.Struct(f); err != nil {
		return Payload{}, fmt.Errorf("incomplete notification: %w", err)
	}
	return Payload{f: f}, nil
}

func (p Payload) Summary() string { return p.f.Summary }
func (p Payload) Body() string    { return p.f.Body }
func (p Payload) IconKey() string { return p.f.IconKey }

func (p Payload) IsZero() bool {
	return p.f == payloadFields{}
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.f)
}
