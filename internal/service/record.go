package service

import (
	"encoding/json"
)

// marshalRecord encodes known (a plain struct) and merges extra into the
// resulting object. Known fields win over extension fields with the same key.
func marshalRecord(known any, extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return json.Marshal(known)
	}
	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]any, len(extra)+8)
	for k, v := range extra {
		fields[k] = v
	}
	var own map[string]any
	if err := json.Unmarshal(data, &own); err != nil {
		return nil, err
	}
	for k, v := range own {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// unmarshalRecord decodes data into known and returns every key not listed
// in knownKeys as extension data. The returned map is nil when nothing is left.
func unmarshalRecord(data []byte, known any, knownKeys ...string) (map[string]any, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for _, k := range knownKeys {
		delete(fields, k)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}
