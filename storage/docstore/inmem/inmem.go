// Package inmem provides an in-memory core.DocStore used in tests and as a
// fallback when no database is configured.
package inmem

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]core.Document
}

var _ core.DocStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{collections: make(map[string]map[string]core.Document)}
}

func (s *Store) Get(_ context.Context, collection, key string) (core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return nil, core.ErrDocNotFound
	}
	return copyDoc(doc), nil
}

func (s *Store) Set(_ context.Context, collection, key string, doc core.Document, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]core.Document)
		s.collections[collection] = coll
	}

	if existing, ok := coll[key]; ok && merge {
		merged := copyDoc(existing)
		for k, v := range copyDoc(doc) {
			merged[k] = v
		}
		coll[key] = merged
		return nil
	}
	coll[key] = copyDoc(doc)
	return nil
}

func (s *Store) Update(_ context.Context, collection, key string, updates ...core.FieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][key]
	if !ok {
		return core.ErrDocNotFound
	}

	updated := copyDoc(doc)
	if err := updated.Apply(updates...); err != nil {
		return err
	}
	s.collections[collection][key] = updated
	return nil
}

func (s *Store) Query(_ context.Context, collection string, q core.DocQuery) ([]core.KeyedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.KeyedDocument
	for key, doc := range s.collections[collection] {
		if matches(doc, q.Filters) {
			out = append(out, core.KeyedDocument{Key: key, Doc: copyDoc(doc)})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		for _, ord := range q.OrderBy {
			vi, _ := out[i].Doc.Lookup(ord.Field)
			vj, _ := out[j].Doc.Lookup(ord.Field)
			c := compareValues(vi, vj)
			if c == 0 {
				continue
			}
			if ord.Desc {
				return c > 0
			}
			return c < 0
		}
		// stable fallback so results are deterministic
		return out[i].Key < out[j].Key
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], key)
	return nil
}

func matches(doc core.Document, filters []core.DocFilter) bool {
	for _, f := range filters {
		v, ok := doc.Lookup(f.Field)
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

// equalValues compares JSON-normalized values; numbers are compared as float64.
func equalValues(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return a == b
}

func compareValues(a, b interface{}) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	// RFC3339 timestamps sort chronologically as strings
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		return strings.Compare(sa, sb)
	}
	return 0
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// copyDoc deep-copies via a JSON round trip, which also normalizes values
// (numbers become float64, times become RFC3339 strings) to match what a
// real backend would return.
func copyDoc(doc core.Document) core.Document {
	data, err := json.Marshal(doc)
	if err != nil {
		// Documents are built from JSON-marshalable values only.
		panic(errors.Wrap(err, "copying document"))
	}
	var out core.Document
	if err = json.Unmarshal(data, &out); err != nil {
		panic(errors.Wrap(err, "copying document"))
	}
	if out == nil {
		out = make(core.Document)
	}
	return out
}

