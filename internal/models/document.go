package models

import (
	"encoding/json"
	"fmt"
)

func documentValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}
	return string(data), nil
}

func scanDocument(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported document column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}
