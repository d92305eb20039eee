package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"codeberg.org/snonux/grunwald/internal/cache"
	"codeberg.org/snonux/grunwald/internal/word"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoWords is reported by PreloadWords when the store is empty
	ErrNoWords = errors.New("no words stored yet")
	// ErrNoSelection is reported when insert or remove find nothing in the cache
	ErrNoSelection = errors.New("no word selected")
	// ErrNotFound is reported when a word to remove is not stored
	ErrNotFound = errors.New("word not found")
	// ErrEmptyName is reported for lookups of a blank name
	ErrEmptyName = errors.New("word name is empty")
	// ErrStale is returned by Lookup when a newer request superseded it.
	// Stale results are never published.
	ErrStale = errors.New("superseded by a newer lookup")
)

// Store is the persistent side of the pipeline
type Store interface {
	Exists(ctx context.Context, name string) (bool, error)
	Add(ctx context.Context, w word.Word) (word.Word, error)
	Update(ctx context.Context, w word.Word) (word.Word, error)
	Remove(ctx context.Context, w word.Word) (bool, error)
	All(ctx context.Context) ([]word.Word, error)
	Search(ctx context.Context, name string) ([]word.Word, error)
}

// ContentFetcher resolves words the store does not know
type ContentFetcher interface {
	FetchWordContent(ctx context.Context, name string) (word.Word, error)
}

// State is the lookup state of the most recent request
type State int32

const (
	StateIdle State = iota
	StateChecking
	StateCacheHit
	StateMiss
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateCacheHit:
		return "cache hit"
	case StateMiss:
		return "miss"
	default:
		return "unknown"
	}
}

// Events are the notifications a front-end subscribes to. Nil handlers are
// skipped. Handlers run on the goroutine that completed the request and
// must not call Lookup, InsertWord, RemoveWord or PreloadWords themselves;
// SearchWord is fine.
type Events struct {
	OnWordResolved      func(w word.Word)
	OnWordError         func(err error)
	OnWordListLoaded    func(words []word.Word)
	OnWordCachedChanged func(stored bool)
}

// Storage decides whether a word comes from the store or the network and
// publishes the result through the cache.
type Storage struct {
	store   Store
	fetcher ContentFetcher
	cache   *cache.WordCache
	log     *slog.Logger

	subsMu sync.RWMutex
	subs   []Events

	// mu serialises publishing: generation check, cache write and events
	mu         sync.Mutex
	generation atomic.Uint64
	state      atomic.Int32

	wg sync.WaitGroup
}

// New creates the orchestrator
func New(st Store, fetcher ContentFetcher, c *cache.WordCache, logger *slog.Logger) *Storage {
	if c == nil {
		c = cache.New()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Storage{
		store:   st,
		fetcher: fetcher,
		cache:   c,
		log:     logger.With("component", "storage"),
	}
}

// Cache returns the cache the orchestrator publishes to
func (s *Storage) Cache() *cache.WordCache {
	return s.cache
}

// Subscribe registers event handlers
func (s *Storage) Subscribe(e Events) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, e)
}

// State returns the state of the latest lookup
func (s *Storage) State() State {
	return State(s.state.Load())
}

// Wait blocks until all lookups started by SearchWord have finished
func (s *Storage) Wait() {
	s.wg.Wait()
}

// NormalizeName trims name and brings it to NFC, the form words are stored under
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// SearchWord resolves name in the background. The outcome is published
// through the cache and the subscribed events.
func (s *Storage) SearchWord(ctx context.Context, name string) {
	gen := s.begin()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.lookup(ctx, gen, name)
	}()
}

// Lookup resolves name synchronously. Events are published as for SearchWord.
func (s *Storage) Lookup(ctx context.Context, name string) (word.Word, error) {
	return s.lookup(ctx, s.begin(), name)
}

func (s *Storage) lookup(ctx context.Context, gen uint64, name string) (word.Word, error) {
	key := NormalizeName(name)
	if key == "" {
		return word.Word{}, s.fail(gen, ErrEmptyName)
	}

	s.setState(gen, StateChecking)
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return word.Word{}, s.fail(gen, fmt.Errorf("check word in db: %w", err))
	}

	if exists {
		return s.resolveStored(ctx, gen, key)
	}
	return s.resolveRemote(ctx, gen, key)
}

func (s *Storage) resolveStored(ctx context.Context, gen uint64, key string) (word.Word, error) {
	s.setState(gen, StateCacheHit)

	words, err := s.store.Search(ctx, key)
	if err != nil {
		return word.Word{}, s.fail(gen, fmt.Errorf("search word in db: %w", err))
	}
	if len(words) == 0 {
		return word.Word{}, s.fail(gen, fmt.Errorf("search word in db: %w", ErrNotFound))
	}

	w := words[0]
	published := s.publish(gen, func() {
		s.cache.StoreWordContent(w)
		s.emitResolved(w)
		s.emitCachedChanged(true)
	})
	if !published {
		return w, ErrStale
	}

	s.log.Info("word found in db", "name", w.Name, "id", w.ID)
	return w, nil
}

func (s *Storage) resolveRemote(ctx context.Context, gen uint64, key string) (word.Word, error) {
	s.setState(gen, StateMiss)
	if !s.commit(gen, s.cache.Clear) {
		return word.Word{}, ErrStale
	}

	w, err := s.fetcher.FetchWordContent(ctx, key)
	if err != nil {
		return word.Word{}, s.fail(gen, fmt.Errorf("search word from network: %w", err))
	}

	published := s.publish(gen, func() {
		s.cache.StoreWordContent(w)
		s.emitResolved(w)
		s.emitCachedChanged(false)
	})
	if !published {
		return w, ErrStale
	}

	s.log.Info("word fetched from network", "name", w.Name, "type", w.Type.String())
	return w, nil
}

// InsertWord saves the word in the cache, updating it when it is already stored
func (s *Storage) InsertWord(ctx context.Context) error {
	w := s.cache.LoadWordContent()
	if w.IsEmpty() {
		return s.report(fmt.Errorf("save word into db: %w", ErrNoSelection))
	}

	var (
		stored word.Word
		err    error
	)
	if w.IsSaved() {
		stored, err = s.store.Update(ctx, w)
	} else {
		stored, err = s.store.Add(ctx, w)
	}
	if err != nil {
		return s.report(fmt.Errorf("save word into db: %w", err))
	}

	s.mu.Lock()
	if s.cache.SetIDs(stored.Name, stored.ID, stored.Image.ID) {
		s.emitCachedChanged(true)
	}
	s.mu.Unlock()

	s.log.Info("word saved", "name", stored.Name, "id", stored.ID)
	return nil
}

// RemoveWord deletes the word in the cache from the store. The cache keeps
// the word, now without persistent ids.
func (s *Storage) RemoveWord(ctx context.Context) error {
	w := s.cache.LoadWordContent()
	if w.IsEmpty() {
		return s.report(fmt.Errorf("remove word from db: %w", ErrNoSelection))
	}

	removed, err := s.store.Remove(ctx, w)
	if err != nil {
		return s.report(fmt.Errorf("remove word from db: %w", err))
	}
	if !removed {
		return s.report(fmt.Errorf("remove word %q from db: %w", w.Name, ErrNotFound))
	}

	imageID := w.Image.ID
	if w.HasImage() {
		imageID = word.UnsavedID
	}

	s.mu.Lock()
	if s.cache.SetIDs(w.Name, word.UnsavedID, imageID) {
		s.emitCachedChanged(false)
	}
	s.mu.Unlock()

	s.log.Info("word removed", "name", w.Name)
	return nil
}

// PreloadWords publishes every stored word and selects the first one.
// An empty store clears the cache and reports ErrNoWords.
func (s *Storage) PreloadWords(ctx context.Context) error {
	gen := s.begin()

	words, err := s.store.All(ctx)
	if err != nil {
		return s.fail(gen, fmt.Errorf("load all words from db: %w", err))
	}
	if len(words) == 0 {
		s.commit(gen, s.cache.Clear)
		return s.fail(gen, fmt.Errorf("load all words from db: %w", ErrNoWords))
	}

	list := make([]word.Word, len(words))
	for i, w := range words {
		list[i] = w.Clone()
	}
	published := s.publish(gen, func() {
		s.cache.StoreWordContent(words[0])
		s.emitListLoaded(list)
		s.emitCachedChanged(true)
	})
	if !published {
		return ErrStale
	}

	s.log.Info("words loaded from db", "count", len(words))
	return nil
}

func (s *Storage) begin() uint64 {
	return s.generation.Add(1)
}

// commit runs fn only while gen is the newest request
func (s *Storage) commit(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != gen {
		s.log.Debug("dropping stale result", "generation", gen, "current", s.generation.Load())
		return false
	}
	fn()
	return true
}

// publish is commit for the final step of a request, which also ends it
func (s *Storage) publish(gen uint64, fn func()) bool {
	return s.commit(gen, func() {
		fn()
		s.state.Store(int32(StateIdle))
	})
}

func (s *Storage) setState(gen uint64, st State) {
	if s.generation.Load() == gen {
		s.state.Store(int32(st))
	}
}

// fail publishes err unless a newer request superseded gen
func (s *Storage) fail(gen uint64, err error) error {
	if !s.publish(gen, func() { s.emitError(err) }) {
		return ErrStale
	}
	s.log.Warn("lookup failed", "error", err)
	return err
}

// report publishes an error that is not tied to a lookup
func (s *Storage) report(err error) error {
	s.mu.Lock()
	s.emitError(err)
	s.mu.Unlock()
	s.log.Warn("operation failed", "error", err)
	return err
}

func (s *Storage) subscribers() []Events {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	return append([]Events(nil), s.subs...)
}

func (s *Storage) emitResolved(w word.Word) {
	for _, e := range s.subscribers() {
		if e.OnWordResolved != nil {
			e.OnWordResolved(w.Clone())
		}
	}
}

func (s *Storage) emitError(err error) {
	for _, e := range s.subscribers() {
		if e.OnWordError != nil {
			e.OnWordError(err)
		}
	}
}

func (s *Storage) emitListLoaded(words []word.Word) {
	for _, e := range s.subscribers() {
		if e.OnWordListLoaded != nil {
			e.OnWordListLoaded(words)
		}
	}
}

func (s *Storage) emitCachedChanged(stored bool) {
	for _, e := range s.subscribers() {
		if e.OnWordCachedChanged != nil {
			e.OnWordCachedChanged(stored)
		}
	}
}
