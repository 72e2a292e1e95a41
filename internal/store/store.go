package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
	"github.com/KaramelBytes/dataprep-cli/internal/parser"
)

// Entry records one mutation applied to the current dataset.
type Entry struct {
	Op      string    `json:"op"`
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Applied time.Time `json:"applied"`
}

// Store is a single dataprep session: the dataset as loaded and the
// working copy that transformations replace. Each operation runs against
// the current dataset and either replaces it entirely or leaves it as is.
type Store struct {
	mu       sync.RWMutex
	id       string
	name     string
	original *dataset.Dataset
	current  *dataset.Dataset
	history  []Entry
	opt      parser.Options
	log      *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithParserOptions sets the options used by Load.
func WithParserOptions(opt parser.Options) Option {
	return func(s *Store) { s.opt = opt }
}

// New returns an empty session.
func New(opts ...Option) *Store {
	s := &Store{
		id:  uuid.NewString(),
		opt: parser.DefaultOptions(),
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("session", s.id))
	return s
}

// ID returns the session identifier.
func (s *Store) ID() string { return s.id }

// Name returns the name the dataset was loaded under.
func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Load parses raw file content and makes it both the original and the
// current dataset. On failure the session keeps its previous state.
func (s *Store) Load(name string, raw []byte) error {
	ds, err := parser.Parse(name, raw, s.opt)
	if err != nil {
		s.log.Warn("load failed", zap.String("file", name), zap.Error(err))
		return err
	}
	s.LoadDataset(name, ds)
	return nil
}

// LoadFile reads path and loads it.
func (s *Store) LoadFile(path string) error {
	ds, err := parser.ParseFile(path, s.opt)
	if err != nil {
		s.log.Warn("load failed", zap.String("file", path), zap.Error(err))
		return err
	}
	s.LoadDataset(path, ds)
	return nil
}

// LoadDataset installs an already built dataset.
func (s *Store) LoadDataset(name string, ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.original = ds
	s.current = ds.Clone()
	s.history = nil
	s.log.Info("dataset loaded",
		zap.String("file", name),
		zap.Int("rows", ds.NumRows()),
		zap.Int("cols", ds.NumCols()))
}

// Loaded reports whether a dataset is present.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// Current returns the working dataset. Datasets are immutable, so callers
// may hold on to the result across later mutations.
func (s *Store) Current() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, dataset.ErrNoDatasetLoaded
	}
	return s.current, nil
}

// Original returns the dataset as loaded.
func (s *Store) Original() (*dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.original == nil {
		return nil, dataset.ErrNoDatasetLoaded
	}
	return s.original, nil
}

// Reset discards every transformation and restores a copy of the original.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original == nil {
		return dataset.ErrNoDatasetLoaded
	}
	s.current = s.original.Clone()
	s.history = nil
	s.log.Info("dataset reset",
		zap.Int("rows", s.current.NumRows()),
		zap.Int("cols", s.current.NumCols()))
	return nil
}

// Replace swaps the current dataset for ds. Datasets are built with
// consistent column lengths, so only presence is checked here.
func (s *Store) Replace(op string, ds *dataset.Dataset) error {
	if ds == nil {
		return &dataset.OpError{Op: op, Err: dataset.ErrInvalidParameter, Msg: "nil dataset"}
	}
	return s.Apply(op, func(*dataset.Dataset) (*dataset.Dataset, error) { return ds, nil })
}

// Apply runs fn against the current dataset and installs its result.
// If fn fails the current dataset is left untouched.
func (s *Store) Apply(op string, fn func(*dataset.Dataset) (*dataset.Dataset, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return dataset.ErrNoDatasetLoaded
	}
	next, err := fn(s.current)
	if err != nil {
		s.log.Debug("operation rejected", zap.String("op", op), zap.Error(err))
		return err
	}
	if next == nil {
		return fmt.Errorf("%s: operation returned no dataset", op)
	}
	s.log.Info("operation applied",
		zap.String("op", op),
		zap.Int("rows_before", s.current.NumRows()),
		zap.Int("rows", next.NumRows()),
		zap.Int("cols_before", s.current.NumCols()),
		zap.Int("cols", next.NumCols()))
	s.current = next
	s.history = append(s.history, Entry{Op: op, Rows: next.NumRows(), Cols: next.NumCols(), Applied: time.Now()})
	return nil
}

// History lists the operations applied since the last load or reset.
func (s *Store) History() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.history))
	copy(out, s.history)
	return out
}
