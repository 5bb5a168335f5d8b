package tools

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"todoistmcp/internal/failure"
)

// Args is an argument bag that passed schema validation. Values are
// normalized to string, int, bool or []string; absent optionals are missing.
type Args map[string]any

// Decode copies the arguments into a tagged parameter struct.
func (a Args) Decode(v any) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// DecodeArguments parses a raw arguments object. Empty input and null are
// an empty bag; numbers keep their exact text.
func DecodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var bag map[string]any
	if err := dec.Decode(&bag); err != nil {
		return nil, failure.Wrap(failure.InvalidArgument, err, "arguments must be a JSON object")
	}
	if bag == nil {
		bag = map[string]any{}
	}
	return bag, nil
}

// bind validates raw against schema. Required values must be present and
// non-empty; every key must be declared; values must match their declared
// type. Empty optional strings and nulls count as absent.
func bind(schema *jsonschema.Schema, raw map[string]any) (Args, error) {
	for _, name := range schema.Required {
		v, ok := raw[name]
		if !ok || v == nil {
			return nil, failure.Missing(name)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return nil, failure.Missing(name)
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := Args{}
	for _, key := range keys {
		prop, declared := schema.Properties[key]
		if !declared {
			return nil, failure.New(failure.InvalidArgument, "unknown argument: %s", key)
		}
		if raw[key] == nil {
			continue
		}
		v, err := coerce(key, prop, raw[key])
		if err != nil {
			return nil, err
		}
		if v != nil {
			args[key] = v
		}
	}
	return args, nil
}

func coerce(key string, prop *jsonschema.Schema, v any) (any, error) {
	switch prop.Type {
	case "string":
		s, err := asString(key, v)
		if err != nil || s == "" {
			return nil, err
		}
		if len(prop.Enum) > 0 && !inEnum(prop.Enum, s) {
			return nil, failure.New(failure.InvalidArgument, "argument %s must be one of %s", key, enumList(prop.Enum))
		}
		return s, nil
	case "integer":
		n, ok := asInt(v)
		if !ok {
			return nil, mismatch(key, "an integer")
		}
		if prop.Minimum != nil && float64(n) < *prop.Minimum {
			return nil, failure.New(failure.InvalidArgument, "argument %s must be at least %g", key, *prop.Minimum)
		}
		if prop.Maximum != nil && float64(n) > *prop.Maximum {
			return nil, failure.New(failure.InvalidArgument, "argument %s must be at most %g", key, *prop.Maximum)
		}
		return n, nil
	case "boolean":
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(key, "a boolean")
		}
		return b, nil
	case "array":
		return asStrings(key, v)
	}
	return nil, failure.New(failure.InvalidArgument, "argument %s has unsupported type %q", key, prop.Type)
}

// asString accepts strings, and integral numbers for clients that send ids
// as numbers.
func asString(key string, v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		if _, err := strconv.ParseInt(s.String(), 10, 64); err == nil {
			return s.String(), nil
		}
	case float64:
		if s == math.Trunc(s) && math.Abs(s) < 1<<53 {
			return strconv.FormatInt(int64(s), 10), nil
		}
	}
	return "", mismatch(key, "a string")
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil || f != math.Trunc(f) {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func asStrings(key string, v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, mismatch(key, "an array of strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, mismatch(key, "an array of strings")
}

func mismatch(key, want string) error {
	return failure.New(failure.InvalidArgument, "argument %s must be %s", key, want)
}

func inEnum(enum []any, s string) bool {
	for _, e := range enum {
		if e == s {
			return true
		}
	}
	return false
}

func enumList(enum []any) string {
	parts := make([]string, len(enum))
	for i, e := range enum {
		parts[i], _ = e.(string)
	}
	return strings.Join(parts, ", ")
}
