package postgresql

import (
	"encoding/json"
	"fmt"
)

// marshalNullable encodes v as JSONB, storing SQL NULL for nil values.
func marshalNullable(v any, isNil bool) ([]byte, error) {
	if isNil {
		return nil, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal column: %w", err)
	}

	return data, nil
}

func unmarshalNullable(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}

	err := json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal column: %w", err)
	}

	return nil
}
