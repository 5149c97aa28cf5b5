package leads

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field names read by the dashboard aggregations.
const (
	FieldName         = "Name"
	FieldScore        = "Lead_Score"
	FieldSource       = "Lead_Source"
	FieldStage        = "Lead_Stage"
	FieldLastActivity = "Last_Activity"
)

// UnknownLabel is the bucket for records without a categorical value.
const UnknownLabel = "Unknown"

var errNotObject = errors.New("leads: record must be a JSON object")

// Lead is a single prospect record returned by the backend.
//
// The consumed fields are exposed as optional values; every field the
// backend sent, consumed or not, is kept in arrival order for display.
type Lead struct {
	Name         *string
	Score        *string
	Source       *string
	Stage        *string
	LastActivity *string

	keys   []string
	fields map[string]json.RawMessage
}

// UnmarshalJSON decodes a flat JSON object while preserving key order.
func (l *Lead) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}
	var out Lead
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("leads: unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("leads: field %q: %w", key, err)
		}
		out.setRaw(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

// MarshalJSON writes the record back with its original key order.
func (l Lead) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, key := range l.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		b.Write(name)
		b.WriteByte(':')
		b.Write(l.fields[key])
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (l *Lead) setRaw(key string, raw json.RawMessage) {
	if l.fields == nil {
		l.fields = make(map[string]json.RawMessage)
	}
	if _, seen := l.fields[key]; !seen {
		l.keys = append(l.keys, key)
	}
	l.fields[key] = raw

	var target **string
	switch key {
	case FieldName:
		target = &l.Name
	case FieldScore:
		target = &l.Score
	case FieldSource:
		target = &l.Source
	case FieldStage:
		target = &l.Stage
	case FieldLastActivity:
		target = &l.LastActivity
	default:
		return
	}
	if text, ok := scalarText(raw); ok && !falsy(raw) {
		*target = &text
	} else {
		*target = nil
	}
}

// falsy reports the JSON values the dashboard treats as missing for the
// consumed fields: false and any numeric zero. Empty strings are left to
// the callers.
func falsy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("false")) {
		return true
	}
	if len(trimmed) == 0 || (trimmed[0] != '-' && (trimmed[0] < '0' || trimmed[0] > '9')) {
		return false
	}
	v, err := strconv.ParseFloat(string(trimmed), 64)
	return err == nil && v == 0
}

// Keys returns the field names in the order the backend sent them.
func (l Lead) Keys() []string {
	return append([]string(nil), l.keys...)
}

// Value returns the display text of a field. Missing and null fields
// yield ok=false.
func (l Lead) Value(key string) (string, bool) {
	raw, ok := l.fields[key]
	if !ok {
		return "", false
	}
	return scalarText(raw)
}

// scalarText renders a raw JSON value as display text. Strings lose
// their quotes, null is absent, anything else keeps its compact JSON form.
func scalarText(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return strings.TrimSpace(string(trimmed)), true
	}
	return compact.String(), true
}
