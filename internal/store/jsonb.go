package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonColumn maps any JSON-encodable value onto a JSONB column.
type jsonColumn[T any] struct {
	V T
}

func (j jsonColumn[T]) Value() (driver.Value, error) {
	data, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (j *jsonColumn[T]) Scan(value interface{}) error {
	var zero T
	switch v := value.(type) {
	case nil:
		j.V = zero
		return nil
	case []byte:
		if len(v) == 0 {
			j.V = zero
			return nil
		}
		return json.Unmarshal(v, &j.V)
	case string:
		if v == "" {
			j.V = zero
			return nil
		}
		return json.Unmarshal([]byte(v), &j.V)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", value)
	}
}
