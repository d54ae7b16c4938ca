// internal/webhook/payload.go
package webhook

import (
	"encoding/json"
	"fmt"
)

// Payload is the typed shape of an inbound cast webhook. Only the
// fields the processor reads are modeled; everything else in the
// provider's payload is ignored.
type Payload struct {
	Type string      `json:"type"`
	Data PayloadCast `json:"data"`
}

// PayloadCast is the cast body. Hash, Text and Author.FID are required;
// Embeds is optional.
type PayloadCast struct {
	Hash   string `json:"hash"`
	Text   string `json:"text"`
	Author struct {
		FID int64 `json:"fid"`
	} `json:"author"`
	Embeds []PayloadEmbed `json:"embeds"`
}

type PayloadEmbed struct {
	URL string `json:"url"`
}

// ParsePayload decodes and validates the raw webhook body. Missing
// required fields are a parse error, not a later nil dereference.
func ParsePayload(body []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("malformed webhook body: %w", err)
	}
	if p.Data.Hash == "" {
		return nil, fmt.Errorf("webhook payload missing cast hash")
	}
	if p.Data.Author.FID == 0 {
		return nil, fmt.Errorf("webhook payload missing author fid")
	}
	if p.Data.Text == "" {
		return nil, fmt.Errorf("webhook payload missing cast text")
	}
	return &p, nil
}
