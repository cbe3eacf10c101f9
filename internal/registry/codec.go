package registry

import (
	"encoding/json"
	"fmt"
)

// Codec encodes dataset payloads for storage. How a value of a given
// storage class is physically serialized is a collaborator's concern;
// the registry only needs bytes in and a value out.
type Codec interface {
	Encode(storageClass string, value any) ([]byte, error)
	Decode(storageClass string, data []byte) (any, error)
}

// JSONCodec is the default payload codec. []byte payloads pass through
// untouched; everything else round-trips through encoding/json.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(storageClass string, value any) ([]byte, error) {
	if raw, ok := value.([]byte); ok {
		return raw, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", storageClass, err)
	}
	return data, nil
}

// Decode implements Codec.
func (JSONCodec) Decode(storageClass string, data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		// Not JSON; hand the raw bytes to the caller.
		raw := make([]byte, len(data))
		copy(raw, data)
		return raw, nil
	}
	return value, nil
}
