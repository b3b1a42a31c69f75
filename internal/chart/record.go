package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Record is one category of the monthly progress chart: a month label and
// the number of tasks per project. It marshals to a flat JSON object,
// {"name": "Jan", "TaskFlow MVP": 1, ...}, with keys in schema order.
type Record struct {
	Name   string
	Counts map[string]int

	order []string
}

// Count returns the count for project, zero when absent
func (r Record) Count(project string) int {
	return r.Counts[project]
}

// Increment adds one to project's count. Projects the record was not built
// with are ignored and false is returned.
func (r Record) Increment(project string) bool {
	if _, ok := r.Counts[project]; !ok {
		return false
	}
	r.Counts[project]++
	return true
}

// Total returns the sum of all project counts
func (r Record) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

// Map returns the record as a generic object, the form Schema.Validate takes
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Counts)+1)
	m[NameField] = r.Name
	for k, v := range r.Counts {
		m[k] = v
	}
	return m
}

// keys returns the project keys in schema order, or sorted when the record
// was not built from a schema
func (r Record) keys() []string {
	if len(r.order) == len(r.Counts) {
		return r.order
	}
	keys := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements json.Marshaler
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	name, err := json.Marshal(r.Name)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"` + NameField + `":`)
	buf.Write(name)
	for _, k := range r.keys() {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", r.Counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeCandidates parses a JSON array of records into generic objects
// without enforcing any shape, ready for Schema.Validate.
func DecodeCandidates(data []byte) ([]map[string]any, error) {
	var candidates []map[string]any
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode chart records: %w", err)
	}
	return candidates, nil
}

// RecordFromMap converts a candidate that passed validation into a Record
// ordered by the schema. Counts of any numeric kind the schema accepts are
// converted.
func (s *Schema) RecordFromMap(candidate map[string]any) (Record, error) {
	if err := s.Validate(candidate); err != nil {
		return Record{}, err
	}
	name, _ := candidate[NameField].(string)
	r := s.NewRecord(name)
	for _, p := range s.names {
		count, err := countValue(candidate[p])
		if err != nil {
			return Record{}, fmt.Errorf("field %q: %w", p, err)
		}
		r.Counts[p] = count
	}
	return r, nil
}

// countValue converts a validated count to int
func countValue(v any) (int, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n := rv.Int(); n >= 0 && n <= math.MaxInt {
			return int(n), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if n := rv.Uint(); n <= math.MaxInt {
			return int(n), nil
		}
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); f >= 0 && f < float64(math.MaxInt) && f == math.Trunc(f) {
			return int(f), nil
		}
	default:
		return 0, fmt.Errorf("unsupported count type %T", v)
	}
	return 0, fmt.Errorf("count %v out of range", v)
}
