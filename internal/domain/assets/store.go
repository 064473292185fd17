package assets

import (
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/unchive/internal/shared/id"
	"go.uber.org/zap"
)

var ErrEmptyPayload = errors.New("asset payload is empty")

// Item is a published asset payload
type Item struct {
	Ref       string
	Name      string
	MIME      string
	Data      []byte
	Published time.Time
}

// Store publishes asset payloads under opaque references. It implements
// types.Publisher. References stay valid until revoked.
type Store struct {
	mu       sync.RWMutex
	items    map[string]*Item
	logger   *zap.Logger
	onChange func(int)
}

// NewStore creates an empty store. onChange, if set, receives the item
// count after every publish or revoke.
func NewStore(logger *zap.Logger, onChange func(int)) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		items:    make(map[string]*Item),
		logger:   logger,
		onChange: onChange,
	}
}

// Publish stores data and returns its reference
func (s *Store) Publish(name, mime string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}

	ref := id.NewAssetRef().String()
	s.mu.Lock()
	s.items[ref] = &Item{
		Ref:       ref,
		Name:      name,
		MIME:      mime,
		Data:      data,
		Published: time.Now(),
	}
	n := len(s.items)
	s.mu.Unlock()

	s.logger.Debug("Asset published", zap.String("ref", ref), zap.String("name", name))
	s.changed(n)
	return ref, nil
}

// Revoke releases a reference. Unknown references are ignored.
func (s *Store) Revoke(ref string) {
	s.mu.Lock()
	_, ok := s.items[ref]
	delete(s.items, ref)
	n := len(s.items)
	s.mu.Unlock()

	if ok {
		s.logger.Debug("Asset revoked", zap.String("ref", ref))
		s.changed(n)
	}
}

// Get returns the item behind ref
func (s *Store) Get(ref string) (*Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[ref]
	return item, ok
}

// Len returns the number of published references
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) changed(n int) {
	if s.onChange != nil {
		s.onChange(n)
	}
}
