package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/rtype/internal/ir"
)

// marshalArgTypes stores argument type names as canonical JSON.
func marshalArgTypes(argTypes []string) (string, error) {
	if argTypes == nil {
		argTypes = []string{}
	}
	data, err := ir.MarshalCanonical(argTypes)
	if err != nil {
		return "", fmt.Errorf("marshal arg types: %w", err)
	}
	return string(data), nil
}

func unmarshalArgTypes(data string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal arg types: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
