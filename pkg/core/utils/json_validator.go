package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnparseable is returned by SmartParse when no strategy could decode the
// input.
var ErrUnparseable = errors.New("unparseable document")

// RepairJSON fixes common defects in hand-edited or truncated JSON dumps:
// unquoted keys, single quotes, trailing commas, comments, unclosed
// arrays/objects and surrounding markdown code fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Hjson supports comments, unquoted keys and strings, optional commas and
// multiline strings, which is the format of hand-written fixture files.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("HJSON_PARSE_ERROR: %w", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("JSON_MARSHAL_ERROR: %w", err)
	}
	return string(jsonBytes), nil
}

// SmartParse decodes input into v trying, in order:
//  1. Standard JSON
//  2. JSON repair
//  3. Hjson (most lenient)
//
// v must be a non-nil pointer. It is only written by the strategy that
// succeeds. The returned string is the standard JSON that was decoded.
func SmartParse(input string, v interface{}) (string, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return "", fmt.Errorf("SmartParse: non-nil pointer required, got %T", v)
	}
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	// Try 1: Standard JSON
	if err := decodeInto(input, rv); err == nil {
		return input, nil
	}

	// Try 2: JSON Repair
	if repaired, err := RepairJSON(input); err == nil {
		if err := decodeInto(repaired, rv); err == nil {
			return repaired, nil
		}
	}

	// Try 3: Hjson
	if converted, err := ParseHJSON(input); err == nil {
		if err := decodeInto(converted, rv); err == nil {
			return converted, nil
		}
	}

	return "", fmt.Errorf("%w: all parsing strategies failed", ErrUnparseable)
}

// decodeInto unmarshals into a fresh value so a failed attempt never leaves
// partial data behind.
func decodeInto(data string, target reflect.Value) error {
	fresh := reflect.New(target.Elem().Type())
	if err := json.Unmarshal([]byte(data), fresh.Interface()); err != nil {
		return err
	}
	target.Elem().Set(fresh.Elem())
	return nil
}
