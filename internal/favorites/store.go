// Package favorites keeps the favorited sessions of one client and keeps every view of
// that client in agreement about them.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julefagdag/agenda/internal/clientstate"
)

const reloadTimeout = 5 * time.Second

// Store is one view's handle on the client's favorites. Every mutation is persisted and
// announced on the bus; changes announced by other views trigger a reload from storage.
type Store struct {
	storage clientstate.Storage
	bus     clientstate.Bus
	origin  string
	logger  *zap.Logger

	mu        sync.Mutex
	favorites Set
	raw       string // serialized form of favorites

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Set)

	stopBus func()
}

// NewStore loads the persisted favorites and starts listening on bus.
func NewStore(ctx context.Context, storage clientstate.Storage, bus clientstate.Bus, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		storage: storage,
		bus:     bus,
		origin:  uuid.New().String(),
		logger:  logger,
		subs:    make(map[int]func(Set)),
	}
	set, raw, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	s.favorites, s.raw = set, raw

	if bus != nil {
		stop, err := bus.Subscribe(s.onChange)
		if err != nil {
			return nil, fmt.Errorf("subscribe favorites: %w", err)
		}
		s.stopBus = stop
	}
	return s, nil
}

// Origin identifies this view on the bus.
func (s *Store) Origin() string { return s.origin }

// GetAll returns a copy of the current favorites.
func (s *Store) GetAll() Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.favorites)
}

// IsFavorite reports whether id is favorited.
func (s *Store) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Contains(id)
}

// Toggle flips membership of id, persists the result and announces it to other views.
// The toggle applies to the persisted set, so changes from views whose announcement
// has not arrived yet are kept.
func (s *Store) Toggle(ctx context.Context, id string) (Set, error) {
	s.mu.Lock()
	current, _, err := s.read(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next := Toggle(current, id)
	raw, err := encode(next)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.storage.Set(ctx, clientstate.KeyFavorites, raw); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("persist favorites: %w", err)
	}
	s.favorites, s.raw = next, raw
	s.mu.Unlock()

	if s.bus != nil {
		change := clientstate.Change{Key: clientstate.KeyFavorites, Value: raw, Origin: s.origin}
		if err := s.bus.Publish(ctx, change); err != nil {
			s.logger.Warn("publish favorites change failed", zap.Error(err))
		}
	}
	s.notify(next)
	return slices.Clone(next), nil
}

// Subscribe calls fn with the new favorites after every change. The returned func
// unsubscribes.
func (s *Store) Subscribe(fn func(Set)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close stops listening for changes from other views.
func (s *Store) Close() {
	if s.stopBus != nil {
		s.stopBus()
		s.stopBus = nil
	}
}

func (s *Store) onChange(c clientstate.Change) {
	if c.Key != clientstate.KeyFavorites || c.Origin == s.origin {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	s.mu.Lock()
	if c.Value == s.raw {
		s.mu.Unlock()
		return
	}
	set, raw, err := s.read(ctx)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("reload favorites failed", zap.Error(err))
		return
	}
	if raw == s.raw {
		s.mu.Unlock()
		return
	}
	s.favorites, s.raw = set, raw
	s.mu.Unlock()

	s.notify(set)
}

func (s *Store) notify(set Set) {
	s.subMu.Lock()
	fns := make([]func(Set), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(slices.Clone(set))
	}
}

// read loads the persisted set. Missing or unparsable data is the empty set.
func (s *Store) read(ctx context.Context) (Set, string, error) {
	v, ok, err := s.storage.Get(ctx, clientstate.KeyFavorites)
	if err != nil {
		return nil, "", fmt.Errorf("load favorites: %w", err)
	}
	set := Set{}
	if ok {
		if err := json.Unmarshal([]byte(v), &set); err != nil {
			s.logger.Warn("discarding unparsable favorites", zap.Error(err))
			set = Set{}
		}
	}
	raw, err := encode(set)
	if err != nil {
		return nil, "", err
	}
	return set, raw, nil
}

func encode(set Set) (string, error) {
	if set == nil {
		set = Set{}
	}
	b, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("marshal favorites: %w", err)
	}
	return string(b), nil
}
