package todoist

import (
	"encoding/json"
	"strings"

	"github.com/iancoleman/strcase"
)

// envelopeKeys are the object keys under which the provider nests list
// results. The live endpoints use "results", the completion history "items".
var envelopeKeys = []string{"results", "items"}

// page is one decoded list response.
type page struct {
	items  []json.RawMessage
	cursor string
}

// decodeList turns a list response into an ordered slice of camelCase
// records. Both a bare JSON array and an object envelope are accepted.
// Anything else, including malformed JSON, yields an empty page.
func decodeList(data []byte) page {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return page{items: []json.RawMessage{}}
	}
	raw = camelKeys(raw)

	var elems []any
	var cursor string
	switch v := raw.(type) {
	case []any:
		elems = v
	case map[string]any:
		for _, key := range envelopeKeys {
			if list, ok := v[key].([]any); ok {
				elems = list
				break
			}
		}
		cursor, _ = v["nextCursor"].(string)
	}

	items := make([]json.RawMessage, 0, len(elems))
	for _, elem := range elems {
		if _, ok := elem.(map[string]any); !ok {
			continue
		}
		data, err := json.Marshal(elem)
		if err != nil {
			continue
		}
		items = append(items, data)
	}
	return page{items: items, cursor: cursor}
}

// decodeRecords unmarshals every item into T, skipping items that do not fit.
func decodeRecords[T any](items []json.RawMessage) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// decodeOne unmarshals a single provider record into out.
func decodeOne(data []byte, out any) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	camel, err := json.Marshal(camelKeys(raw))
	if err != nil {
		return err
	}
	return json.Unmarshal(camel, out)
}

// camelKeys rewrites snake_case object keys to camelCase at every depth.
func camelKeys(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[snakeToCamel(k)] = camelKeys(val)
		}
		return out
	case []any:
		for i := range v {
			v[i] = camelKeys(v[i])
		}
		return v
	default:
		return v
	}
}

// snakeKeys rewrites the top-level camelCase keys of a request body.
func snakeKeys(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[camelToSnake(k)] = v
	}
	return out
}

func snakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	return strcase.ToLowerCamel(s)
}

func camelToSnake(s string) string {
	return strcase.ToSnake(s)
}
