package log

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Lazy defers computing a log attribute value until a handler actually emits the record.
type Lazy func() any

func (l Lazy) LogValue() slog.Value {
	return slog.AnyValue(l())
}

// JSON renders v as JSON when the record is emitted, falling back to %v formatting.
func JSON(v any) Lazy {
	return func() any {
		payload, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(payload)
	}
}
