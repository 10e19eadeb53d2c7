package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrDocNotFound is returned by DocStore.Get when no document exists for the key.
var ErrDocNotFound = errors.New("document not found")

type (
	// Document is a JSON-compatible record as stored in the document store.
	Document map[string]interface{}

	KeyedDocument struct {
		Key string
		Doc Document
	}

	FieldOp int

	// FieldUpdate is a partial update of a single document field.
	// Field is a dot-separated path; intermediate maps are created on write.
	FieldUpdate struct {
		Field string
		Op    FieldOp
		Value interface{}
	}

	// DocFilter is an equality filter on a top-level document field.
	DocFilter struct {
		Field string
		Value interface{}
	}

	DocOrder struct {
		Field string
		Desc  bool
	}

	DocQuery struct {
		Filters []DocFilter
		OrderBy []DocOrder
		Limit   int
	}

	// DocStore is the narrow contract all persistence is delegated to.
	// Backing implementations: a Postgres JSONB table and an in-memory store
	// for tests; any hosted document database fits behind it.
	DocStore interface {
		// Get returns the document stored under (collection, key) or ErrDocNotFound.
		Get(ctx context.Context, collection, key string) (Document, error)
		// Set writes doc under (collection, key), creating it if absent.
		// With merge, top-level fields of doc are merged into the existing document.
		Set(ctx context.Context, collection, key string, doc Document, merge bool) error
		// Update applies partial field updates to an existing document.
		// ArrayUnion and ArrayRemove carry set semantics: duplicate adds are no-ops.
		Update(ctx context.Context, collection, key string, updates ...FieldUpdate) error
		// Query returns the collection's documents matching all filters, ordered.
		Query(ctx context.Context, collection string, q DocQuery) ([]KeyedDocument, error)
		Delete(ctx context.Context, collection, key string) error
	}
)

const (
	OpSet FieldOp = iota
	OpArrayUnion
	OpArrayRemove
)

func SetField(field string, value interface{}) FieldUpdate {
	return FieldUpdate{Field: field, Op: OpSet, Value: value}
}

func ArrayUnion(field string, values ...string) FieldUpdate {
	return FieldUpdate{Field: field, Op: OpArrayUnion, Value: values}
}

func ArrayRemove(field string, values ...string) FieldUpdate {
	return FieldUpdate{Field: field, Op: OpArrayRemove, Value: values}
}

// Apply applies partial field updates to the document in place. ArrayUnion and
// ArrayRemove carry set semantics on string arrays. Dot-separated paths create
// intermediate maps as needed. Backing stores that cannot apply updates
// natively read the document, call Apply and write it back.
func (d Document) Apply(updates ...FieldUpdate) error {
	for _, u := range updates {
		parent, leaf, err := d.resolveParent(u.Field)
		if err != nil {
			return err
		}

		switch u.Op {
		case OpSet:
			v, err := normalizeValue(u.Value)
			if err != nil {
				return err
			}
			parent[leaf] = v
		case OpArrayUnion:
			existing := anyStrings(parent[leaf])
			for _, s := range updateStrings(u.Value) {
				if !containsString(existing, s) {
					existing = append(existing, s)
				}
			}
			parent[leaf] = stringsToAny(existing)
		case OpArrayRemove:
			existing := anyStrings(parent[leaf])
			remove := updateStrings(u.Value)
			kept := make([]string, 0, len(existing))
			for _, s := range existing {
				if !containsString(remove, s) {
					kept = append(kept, s)
				}
			}
			parent[leaf] = stringsToAny(kept)
		default:
			return errors.Errorf("unknown field op: %d", u.Op)
		}
	}
	return nil
}

// resolveParent walks the dot path, creating intermediate maps as needed,
// and returns the map holding the final path element.
func (d Document) resolveParent(field string) (map[string]interface{}, string, error) {
	parts := strings.Split(field, ".")
	cur := map[string]interface{}(d)
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p]
		if !ok {
			m := make(map[string]interface{})
			cur[p] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]interface{})
		if !ok {
			return nil, "", errors.Errorf("field %q is not an object", p)
		}
		cur = m
	}
	return cur, parts[len(parts)-1], nil
}

// normalizeValue JSON round-trips a value so stored documents only ever hold
// JSON-native types, matching what a real backend would return.
func normalizeValue(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "normalizing value")
	}
	var out interface{}
	if err = json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "normalizing value")
	}
	return out, nil
}

func anyStrings(v interface{}) []string {
	switch arr := v.(type) {
	case []string:
		return append([]string(nil), arr...)
	case []interface{}:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func updateStrings(v interface{}) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		return []string{val}
	}
	return nil
}

func stringsToAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func containsString(ss []string, s string) bool {
	for _, e := range ss {
		if e == s {
			return true
		}
	}
	return false
}

// ToDocument converts any JSON-marshalable value into a Document.
func ToDocument(v interface{}) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling document")
	}
	var doc Document
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshaling document")
	}
	return doc, nil
}

// Decode unmarshals the document into a typed struct.
func (d Document) Decode(v interface{}) error {
	data, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "marshaling document")
	}
	return errors.Wrap(json.Unmarshal(data, v), "decoding document")
}

// Lookup resolves a dot-separated field path.
func (d Document) Lookup(field string) (interface{}, bool) {
	parts := strings.Split(field, ".")
	var cur interface{} = map[string]interface{}(d)
	for _, p := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			if dm, ok2 := cur.(Document); ok2 {
				m = dm
			} else {
				return nil, false
			}
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (d Document) String(field string) string {
	if v, ok := d.Lookup(field); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (d Document) Int(field string) int {
	v, ok := d.Lookup(field)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

// Strings returns the string-array field as a slice; non-string elements are skipped.
func (d Document) Strings(field string) []string {
	v, ok := d.Lookup(field)
	if !ok {
		return nil
	}
	switch arr := v.(type) {
	case []string:
		return arr
	case []interface{}:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (d Document) Time(field string) time.Time {
	v, ok := d.Lookup(field)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
