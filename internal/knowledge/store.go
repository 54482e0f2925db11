package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/knowledged/internal/logging"
)

const instrumentationName = "github.com/fyrsmithlabs/knowledged/internal/knowledge"

// RetryConfig bounds transparent retries of read-phase storage failures.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first (default: 3)
	MaxAttempts int

	// BaseBackoff is the wait before the second attempt; it doubles after each
	// further failure (default: 10ms)
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseBackoff: 10 * time.Millisecond,
	}
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	matcher      Matcher
	logger       *zap.Logger
	tracer       trace.Tracer
	retry        RetryConfig
	cacheEntries int64
}

// WithMatcher sets the ranking strategy (default: BM25 with standard parameters).
func WithMatcher(m Matcher) Option {
	return func(o *storeOptions) {
		o.matcher = m
	}
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(o *storeOptions) {
		o.logger = l
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *storeOptions) {
		o.tracer = t
	}
}

// WithRetry overrides the read retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(o *storeOptions) {
		o.retry = cfg
	}
}

// WithQueryCache enables a query result cache holding up to maxEntries results.
func WithQueryCache(maxEntries int64) Option {
	return func(o *storeOptions) {
		o.cacheEntries = maxEntries
	}
}

// Store is the append-only knowledge store.
type Store struct {
	backend Backend
	matcher Matcher
	logger  *zap.Logger
	tracer  trace.Tracer
	retry   RetryConfig
	cache   *queryCache

	// mu serializes writers against each other and against readers.
	// generation is bumped by every write attempt and guarded by mu.
	mu         sync.RWMutex
	generation uint64
	closed     bool
}

// NewStore creates a Store over backend. The store takes ownership of the
// backend and closes it in Close.
func NewStore(backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}

	o := storeOptions{retry: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.matcher == nil {
		o.matcher = NewRankedLexicalMatcher(DefaultBM25Config())
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(instrumentationName)
	}
	if o.retry.MaxAttempts < 1 {
		o.retry.MaxAttempts = 1
	}

	var cache *queryCache
	if o.cacheEntries > 0 {
		var err error
		cache, err = newQueryCache(o.cacheEntries)
		if err != nil {
			return nil, err
		}
	}

	return &Store{
		backend: backend,
		matcher: o.matcher,
		logger:  o.logger.Named("knowledge"),
		tracer:  o.tracer,
		retry:   o.retry,
		cache:   cache,
	}, nil
}

// Matcher returns the configured ranking strategy.
func (s *Store) Matcher() Matcher {
	return s.matcher
}

// Add stores a new record and returns its ID. Empty strings are allowed.
func (s *Store) Add(ctx context.Context, tag, contents string) (RecordID, error) {
	return s.AddRequest(ctx, AddRequest{Tag: &tag, Contents: &contents})
}

// AddRequest validates req and stores it as a new record. The record is
// committed before AddRequest returns. Identical records are not deduplicated.
//
// If the call fails with a write-phase StorageError or is cancelled, whether
// the record was stored is unknown.
func (s *Store) AddRequest(ctx context.Context, req AddRequest) (id RecordID, err error) {
	ctx, span := s.tracer.Start(ctx, "knowledge.add")
	defer span.End()
	start := time.Now()
	defer func() {
		observe("add", start, err)
		endSpan(span, err)
	}()

	if err := req.Validate(); err != nil {
		return 0, err
	}
	tag, contents := *req.Tag, *req.Contents
	span.SetAttributes(
		attribute.Int("tag_length", len(tag)),
		attribute.Int("contents_length", len(contents)),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	// Invalidate cached results even on failure; the write may have landed.
	defer func() { s.generation++ }()

	id, err = s.backend.Insert(ctx, tag, contents)
	if err != nil {
		s.logger.Error("failed to add knowledge",
			zap.String("tag", tag),
			logging.RedactedString("contents", contents),
			zap.Error(err),
		)
		return 0, err
	}

	RecordsAddedTotal.Inc()
	span.SetAttributes(attribute.Int64("record_id", int64(id)))
	s.logger.Debug("knowledge added",
		zap.Int64("id", int64(id)),
		zap.String("tag", tag),
		logging.RedactedString("contents", contents),
	)
	return id, nil
}

// Query returns the contents of at most topN records matching tag, most
// relevant first. An empty, non-nil slice means nothing matched.
func (s *Store) Query(ctx context.Context, tag string, topN int) (contents []string, err error) {
	ctx, span := s.tracer.Start(ctx, "knowledge.query")
	defer span.End()
	start := time.Now()
	defer func() {
		observe("query", start, err)
		endSpan(span, err)
	}()

	span.SetAttributes(
		attribute.String("matcher", s.matcher.Name()),
		attribute.Int("top_n", topN),
	)

	if topN < 1 {
		return nil, &ValidationError{Field: "top_n", Reason: fmt.Sprintf("must be >= 1, got %d", topN)}
	}

	matched, err := s.match(ctx, tag, topN)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("result_count", len(matched)))
	return matched, nil
}

// Get returns the contents of the single most relevant record for tag.
// ok is false when nothing matches.
func (s *Store) Get(ctx context.Context, tag string) (contents string, ok bool, err error) {
	matched, err := s.Query(ctx, tag, 1)
	if err != nil {
		return "", false, err
	}
	if len(matched) == 0 {
		return "", false, nil
	}
	return matched[0], true, nil
}

func (s *Store) match(ctx context.Context, tag string, topN int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	key := queryCacheKey(s.generation, tag, topN)
	if s.cache != nil {
		if cached, ok := s.cache.get(key); ok {
			CacheLookupsTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	var records []Record
	err := s.withReadRetry(ctx, "query", func(ctx context.Context) error {
		var err error
		records, err = s.backend.All(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	ranked := s.matcher.Match(tag, records, topN)
	contents := make([]string, 0, len(ranked))
	for _, r := range ranked {
		contents = append(contents, r.Contents)
	}

	s.cache.set(key, contents)
	s.logger.Debug("knowledge queried",
		zap.String("tag", tag),
		zap.String("matcher", s.matcher.Name()),
		zap.Int("candidates", len(records)),
		zap.Int("results", len(contents)),
	)
	return contents, nil
}

// Count returns the number of records currently persisted.
func (s *Store) Count(ctx context.Context) (n int, err error) {
	ctx, span := s.tracer.Start(ctx, "knowledge.count")
	defer span.End()
	start := time.Now()
	defer func() {
		observe("count", start, err)
		endSpan(span, err)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	err = s.withReadRetry(ctx, "count", func(ctx context.Context) error {
		var err error
		n, err = s.backend.Count(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Records returns a copy of every record in insertion order.
func (s *Store) Records(ctx context.Context) (records []Record, err error) {
	ctx, span := s.tracer.Start(ctx, "knowledge.records")
	defer span.End()
	start := time.Now()
	defer func() {
		observe("records", start, err)
		endSpan(span, err)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	err = s.withReadRetry(ctx, "records", func(ctx context.Context) error {
		var err error
		records, err = s.backend.All(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return copyRecords(records), nil
}

// Clear removes every record and returns how many were removed.
// IDs keep increasing after a clear.
func (s *Store) Clear(ctx context.Context) (removed int64, err error) {
	ctx, span := s.tracer.Start(ctx, "knowledge.clear")
	defer span.End()
	start := time.Now()
	defer func() {
		observe("clear", start, err)
		endSpan(span, err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	defer func() {
		s.generation++
		s.cache.clear()
	}()

	removed, err = s.backend.Clear(ctx)
	if err != nil {
		s.logger.Error("failed to clear knowledge", zap.Error(err))
		return 0, err
	}
	span.SetAttributes(attribute.Int64("removed", removed))
	s.logger.Info("knowledge cleared", zap.Int64("removed", removed))
	return removed, nil
}

// Close releases the backend. Further operations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cache.close()
	if err := s.backend.Close(); err != nil {
		return fmt.Errorf("close backend: %w", err)
	}
	return nil
}

// withReadRetry runs fn until it succeeds, fails with a non-retryable error,
// or the attempt budget is spent. Waits double after each failure.
func (s *Store) withReadRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := s.retry.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			ReadRetriesTotal.WithLabelValues(operation).Inc()
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var se *StorageError
		if !errors.As(err, &se) || !se.Retryable() {
			return err
		}
		s.logger.Warn("read failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", s.retry.MaxAttempts),
			zap.Error(err),
		)
	}
	return lastErr
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func isValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func isStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
