package passkey

import (
	"encoding/json"
	"fmt"
)

// Credential is the opaque passkey binding issued by the credential service.
// The wallet never inspects the payload beyond checking its shape; the raw
// bytes are persisted and replayed verbatim.
type Credential struct {
	ID  string
	Raw json.RawMessage
}

// Decode validates the shape of a serialized credential and wraps it. A
// payload that is not a JSON object carrying a non-empty id is rejected, so
// a corrupted profile lands on the restore-failure path instead of blowing
// up later inside account resolution.
func Decode(data []byte) (Credential, error) {
	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Credential{}, fmt.Errorf("decode credential: %w", err)
	}
	if envelope.ID == "" {
		return Credential{}, fmt.Errorf("credential is missing an id")
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return Credential{ID: envelope.ID, Raw: raw}, nil
}

// Encode returns the serialized payload for persistence.
func (c Credential) Encode() []byte {
	return c.Raw
}
