// Package rpc carries the Connect plumbing shared by all services: a
// plain JSON codec over domain structs and the procedure registry.
package rpc

import (
	"encoding/json"
	"fmt"
)

// JSONCodec implements connect.Codec over encoding/json so handlers can
// exchange plain structs without generated message types.
type JSONCodec struct{}

// Name reports the codec name used in Content-Type negotiation
// (application/json).
func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (JSONCodec) Unmarshal(data []byte, message any) error {
	if len(data) == 0 {
		// Connect sends empty bodies for empty messages
		return nil
	}
	if err := json.Unmarshal(data, message); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}
