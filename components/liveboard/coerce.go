package liveboard

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Args are the raw, loosely-typed tool arguments delivered by the chat runtime.
type Args map[string]any

// present reports whether key exists and is not null.
func (a Args) present(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a Args) string(key string) string {
	return stringValue(a[key], "")
}

func stringValue(v any, fallback string) string {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return s
		}
	case json.Number:
		return val.String()
	case float64, float32, int, int64:
		if f, ok := numberValue(val); ok {
			return formatNumber(f)
		}
	case bool:
		return strconv.FormatBool(val)
	}
	return fallback
}

// numberValue coerces numeric inputs, including numeric strings.
func numberValue(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numberSlice converts an array-like value to numbers, dropping non-numeric entries.
func numberSlice(v any) ([]float64, bool) {
	items, ok := anySlice(v)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if f, ok := numberValue(item); ok {
			out = append(out, f)
		}
	}
	return out, true
}

// strictNumberSlice is numberSlice that fails on any non-numeric entry.
func strictNumberSlice(v any) ([]float64, bool) {
	items, ok := anySlice(v)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, ok := numberValue(item)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func stringSliceValue(v any) ([]string, bool) {
	items, ok := anySlice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringValue(item, ""))
	}
	return out, true
}

// anySlice normalizes the typed slices a Go caller may pass alongside the
// []any produced by encoding/json.
func anySlice(v any) ([]any, bool) {
	switch val := v.(type) {
	case []any:
		return val, true
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, true
	case []float64:
		out := make([]any, len(val))
		for i, f := range val {
			out[i] = f
		}
		return out, true
	case []int:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(val))
		for i, m := range val {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func mapValue(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case map[string]any:
		return val, true
	case Args:
		return map[string]any(val), true
	default:
		return nil, false
	}
}

// cellValue maps a table cell onto a JSON-safe value. Non-finite numbers
// become null, nested objects and arrays are cleaned recursively, and
// anything encoding/json cannot marshal is stringified.
func cellValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case float64, float32, json.Number:
		f, ok := numberValue(val)
		if !ok {
			return nil
		}
		if n, isNumber := val.(json.Number); isNumber {
			return n
		}
		return f
	case map[string]any:
		return cellMap(val)
	case Args:
		return cellMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cellValue(item)
		}
		return out
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}

func cellMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cellValue(v)
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// typeName describes a JSON value the way a model would recognise it.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case map[string]any, Args:
		return "object"
	default:
		if _, ok := anySlice(v); ok {
			return "array"
		}
		return fmt.Sprintf("%T", v)
	}
}
