// Package simvar is an in-memory stand-in for the simulator variable API.
//
// A Store keeps values by name and unit, records every access in a log and
// hands out integer ids for registered variables. Stores are created per
// test and passed to the components that read them.
package simvar

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/gaugekit/pkg/reactive"
)

// ErrUnknownID is returned for ids that were never registered.
var ErrUnknownID = errors.New("simvar: unknown registered id")

// Op is the kind of a logged access.
type Op string

const (
	OpGet Op = "get"
	OpSet Op = "set"
)

// Entry is one logged access.
type Entry struct {
	Name   string
	Unit   string
	Op     Op
	Value  any
	Source string
	Time   time.Time
}

// Key identifies a variable. Units compare case-insensitively.
type Key struct {
	Name string
	Unit string
}

func keyOf(name, unit string) Key {
	return Key{Name: strings.TrimSpace(name), Unit: strings.ToLower(strings.TrimSpace(unit))}
}

func (k Key) String() string {
	if k.Unit == "" {
		return k.Name
	}
	return k.Name + ", " + k.Unit
}

// Store holds simulator variables. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	values   map[Key]any
	log      []Entry
	ids      []Key
	idOf     map[Key]int
	watchers map[Key]*reactive.Cell[any]

	cellOpts []reactive.Option

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for log entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithCellOptions adds options to every cell returned by Watch.
func WithCellOptions(opts ...reactive.Option) Option {
	return func(s *Store) { s.cellOpts = append(s.cellOpts, opts...) }
}

// WithValue seeds a variable without logging the write.
func WithValue(name, unit string, value any) Option {
	return func(s *Store) { s.values[keyOf(name, unit)] = value }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		values:   make(map[Key]any),
		idOf:     make(map[Key]int),
		watchers: make(map[Key]*reactive.Cell[any]),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Get returns the variable's value, or nil when it was never set. The read
// is logged.
func (s *Store) Get(name, unit, source string) any {
	k := keyOf(name, unit)
	s.mu.Lock()
	v := s.values[k]
	s.record(k, OpGet, v, source)
	s.mu.Unlock()
	return v
}

// Set stores value and updates any cell returned by Watch. The write is
// logged.
func (s *Store) Set(name, unit string, value any, source string) {
	s.set(keyOf(name, unit), value, source)
}

func (s *Store) set(k Key, value any, source string) {
	s.mu.Lock()
	s.values[k] = value
	s.record(k, OpSet, value, source)
	cell := s.watchers[k]
	s.mu.Unlock()

	s.logger.Debug("simvar set", "var", k.String(), "value", value, "source", source)
	if cell != nil {
		cell.Set(value)
	}
}

// record appends to the log. s.mu must be held.
func (s *Store) record(k Key, op Op, v any, source string) {
	s.log = append(s.log, Entry{
		Name:   k.Name,
		Unit:   k.Unit,
		Op:     op,
		Value:  v,
		Source: source,
		Time:   s.now(),
	})
}

// Log returns a copy of the access log in call order.
func (s *Store) Log() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.log))
	copy(out, s.log)
	return out
}

// ResetLog empties the access log.
func (s *Store) ResetLog() {
	s.mu.Lock()
	s.log = nil
	s.mu.Unlock()
}

// RegisterID returns an id for the variable. Ids start at 1 and the same
// variable always gets the same id.
func (s *Store) RegisterID(name, unit, source string) int {
	k := keyOf(name, unit)
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.idOf[k]; ok {
		return id
	}
	s.ids = append(s.ids, k)
	id := len(s.ids)
	s.idOf[k] = id
	s.logger.Debug("simvar registered", "var", k.String(), "id", id, "source", source)
	return id
}

func (s *Store) lookup(id int) (Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > len(s.ids) {
		return Key{}, fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	return s.ids[id-1], nil
}

// GetByID reads a registered variable.
func (s *Store) GetByID(id int) (any, error) {
	k, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.Get(k.Name, k.Unit, "id"), nil
}

// SetByID writes a registered variable.
func (s *Store) SetByID(id int, value any) error {
	k, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.set(k, value, "id")
	return nil
}

// Watch returns a cell that follows the variable. The same cell is returned
// for every call with the same variable.
func (s *Store) Watch(name, unit string) *reactive.Cell[any] {
	k := keyOf(name, unit)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.watchers[k]; ok {
		return c
	}
	opts := append([]reactive.Option{reactive.WithName(k.String()), reactive.WithLogger(s.logger)}, s.cellOpts...)
	c := reactive.New[any](s.values[k], opts...)
	s.watchers[k] = c
	return c
}

// Keys returns every variable that holds a value, sorted.
func (s *Store) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Key, 0, len(s.values))
	for k := range s.values {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}
