package mockapi

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
)

// Record is one stored document.
type Record map[string]any

// DefaultCollections are served even when the seed file does not mention them.
var DefaultCollections = []string{"users", "courses", "enrollments", "contacts"}

var (
	errUnknownCollection = fmt.Errorf("unknown collection")
	errRecordNotFound    = fmt.Errorf("record not found")
	errDuplicate         = fmt.Errorf("duplicate record")
)

type collection struct {
	records []Record
	nextID  int
}

// Store keeps every collection in memory, db.json style.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	unique      map[string][]string
}

// NewStore creates a store with the default collections.
func NewStore() *Store {
	s := &Store{collections: make(map[string]*collection), unique: make(map[string][]string)}
	for _, name := range DefaultCollections {
		s.collections[name] = &collection{nextID: 1}
	}
	return s
}

// LoadSeedFile reads a json-server style db file: an object of collection arrays.
func LoadSeedFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed map[string][]Record
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	s := NewStore()
	for name, records := range seed {
		s.Seed(name, records...)
	}
	return s, nil
}

// Seed appends records to a collection, creating it when needed. Records without
// an id get one above every numeric id in the collection.
func (s *Store) Seed(name string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		col = &collection{nextID: 1}
		s.collections[name] = col
	}
	// Explicit ids are reserved first so generated ones never collide with later records.
	copies := make([]Record, len(records))
	for i, rec := range records {
		copies[i] = copyRecord(rec)
		if id, ok := copies[i]["id"]; ok && id != nil {
			if n, err := strconv.Atoi(formatValue(id)); err == nil && n >= col.nextID {
				col.nextID = n + 1
			}
		}
	}
	for _, rec := range copies {
		if id, ok := rec["id"]; !ok || id == nil {
			rec["id"] = col.nextID
			col.nextID++
		}
		col.records = append(col.records, rec)
	}
}

// Unique makes the combination of fields unique within a collection.
func (s *Store) Unique(name string, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unique[name] = append([]string(nil), fields...)
}

// Collections returns the collection names in order.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the records matching every filter. A field with several accepted
// values matches any of them.
func (s *Store) List(name string, filter map[string][]string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, errUnknownCollection
	}
	out := make([]Record, 0, len(col.records))
	for _, rec := range col.records {
		if matches(rec, filter) {
			out = append(out, copyRecord(rec))
		}
	}
	return out, nil
}

// Get returns one record by id.
func (s *Store) Get(name, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, errUnknownCollection
	}
	idx := col.indexOf(id)
	if idx < 0 {
		return nil, errRecordNotFound
	}
	return copyRecord(col.records[idx]), nil
}

// Insert stores rec under a fresh numeric id.
func (s *Store) Insert(name string, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, errUnknownCollection
	}
	if fields := s.unique[name]; len(fields) > 0 {
		key := make(map[string][]string, len(fields))
		for _, f := range fields {
			key[f] = []string{formatValue(rec[f])}
		}
		for _, existing := range col.records {
			if matches(existing, key) {
				return nil, errDuplicate
			}
		}
	}

	stored := copyRecord(rec)
	stored["id"] = col.nextID
	col.nextID++
	col.records = append(col.records, stored)
	return copyRecord(stored), nil
}

// Patch merges fields into the record. The id cannot be changed.
func (s *Store) Patch(name, id string, fields Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, errUnknownCollection
	}
	idx := col.indexOf(id)
	if idx < 0 {
		return nil, errRecordNotFound
	}
	rec := col.records[idx]
	for k, v := range fields {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	return copyRecord(rec), nil
}

func (c *collection) indexOf(id string) int {
	for i, rec := range c.records {
		if formatValue(rec["id"]) == id {
			return i
		}
	}
	return -1
}

func matches(rec Record, filter map[string][]string) bool {
	for field, accepted := range filter {
		value := formatValue(rec[field])
		found := false
		for _, want := range accepted {
			if value == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// formatValue renders a stored value the way it appears in a query string.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func copyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
