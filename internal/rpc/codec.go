package rpc

import "encoding/json"

// CodecName is registered under the name connect uses for JSON payloads.
const CodecName = "json"

// Codec serializes plain Go structs with encoding/json.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
