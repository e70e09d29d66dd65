package simulator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrMissingField = errors.New("missing field")

// output mirrors the JSON document printed by the simulator. Its property
// tree writer quotes every value, so each field may arrive as a string.
type output struct {
	HasReturnedToZero json.RawMessage `json:"HasReturnedToZero"`
	CurrentTime       json.RawMessage `json:"CurrentTime"`
}

// Decode parses the simulator output.
func Decode(data []byte) (Result, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, fmt.Errorf("decode simulator output: %w", err)
	}
	if out.HasReturnedToZero == nil {
		return Result{}, fmt.Errorf("%w: HasReturnedToZero", ErrMissingField)
	}
	if out.CurrentTime == nil {
		return Result{}, fmt.Errorf("%w: CurrentTime", ErrMissingField)
	}

	returned, err := unquote(out.HasReturnedToZero)
	if err != nil {
		return Result{}, fmt.Errorf("HasReturnedToZero: %w", err)
	}
	current, err := unquote(out.CurrentTime)
	if err != nil {
		return Result{}, fmt.Errorf("CurrentTime: %w", err)
	}
	t, err := strconv.ParseFloat(current, 64)
	if err != nil {
		return Result{}, fmt.Errorf("CurrentTime: %w", err)
	}

	return Result{
		HasReturnedToZero: returned == "true",
		CurrentTime:       t,
		Raw:               bytes.Clone(data),
	}, nil
}

// unquote returns the text of a JSON string, or the literal itself for
// any other scalar.
func unquote(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	if len(raw) == 0 || raw[0] == '{' || raw[0] == '[' {
		return "", fmt.Errorf("unexpected value %q", raw)
	}
	return string(raw), nil
}
