package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPageSize  = 500
	DefaultStartYear = 2020
)

var ErrSyncInProgress = errors.New("sync already in progress")

// Synchronizer is the only writer to the Store and the Repo.
type Synchronizer struct {
	source    Source
	repo      Repo
	store     *Store
	pageSize  int
	startYear int
	now       func() time.Time

	// one-slot semaphore held for the whole of Sync and Reload
	busy chan struct{}
}

type SyncOption func(*Synchronizer)

func WithPageSize(n int) SyncOption {
	return func(s *Synchronizer) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithStartYear(y int) SyncOption {
	return func(s *Synchronizer) {
		if y > 0 {
			s.startYear = y
		}
	}
}

func WithClock(now func() time.Time) SyncOption {
	return func(s *Synchronizer) { s.now = now }
}

func NewSynchronizer(source Source, repo Repo, store *Store, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		source:    source,
		repo:      repo,
		store:     store,
		pageSize:  DefaultPageSize,
		startYear: DefaultStartYear,
		now:       time.Now,
		busy:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload replaces the in-memory set with the durable store's contents.
// It waits for an in-flight sync to finish, or for ctx to end.
func (s *Synchronizer) Reload(ctx context.Context) (int, error) {
	select {
	case s.busy <- struct{}{}:
	case <-ctx.Done():
		return 0, fmt.Errorf("wait for sync: %w", ctx.Err())
	}
	defer s.release()

	records, err := s.repo.LoadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load sales orders: %w", err)
	}
	s.store.Replace(records)

	log.Info().Str("component", "sync").Int("records", s.store.Len()).Msg("loaded from durable store")
	return s.store.Len(), nil
}

// Sync pulls every year from startYear through the current year and merges
// the result. It returns the number of newly seen identities. If another pass
// is running it returns ErrSyncInProgress without doing anything.
func (s *Synchronizer) Sync(ctx context.Context) (int, error) {
	select {
	case s.busy <- struct{}{}:
	default:
		return 0, ErrSyncInProgress
	}
	defer s.release()

	runID := uuid.NewString()
	logger := log.With().Str("component", "sync").Str("run", runID).Logger()
	started := s.now()

	added := 0
	for year := s.startYear; year <= started.Year(); year++ {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		added += s.syncYear(ctx, logger, year)
	}

	logger.Info().
		Int("added", added).
		Int("total", s.store.Len()).
		Dur("took", s.now().Sub(started)).
		Msg("sync finished")
	return added, nil
}

func (s *Synchronizer) syncYear(ctx context.Context, logger zerolog.Logger, year int) int {
	added := 0
	for offset := 0; ; offset += s.pageSize {
		raw, err := s.source.FetchPage(ctx, PageQuery{Year: year, Limit: s.pageSize, Offset: offset})
		if err != nil {
			logger.Error().Int("year", year).Int("offset", offset).
				Err(err).Msg("fetch page failed, treating as empty")
			raw = nil
		}

		added += s.mergePage(ctx, logger, year, raw)

		if len(raw) < s.pageSize {
			return added
		}
	}
}

// mergePage persists the page and only then publishes it to memory, so the
// in-memory set never holds rows the durable store lacks.
func (s *Synchronizer) mergePage(ctx context.Context, logger zerolog.Logger, year int, raw []map[string]any) int {
	if len(raw) == 0 {
		return 0
	}

	batch := make([]Record, 0, len(raw))
	for _, r := range raw {
		rec := Normalize(r)
		if rec.ID == "" {
			logger.Warn().Int("year", year).
				Str("order", rec.OrderNumber).Msg("record without id skipped")
			continue
		}
		batch = append(batch, rec)
	}

	if err := s.repo.Upsert(ctx, batch); err != nil {
		logger.Error().Int("year", year).Int("records", len(batch)).
			Err(err).Msg("persist page failed, will retry next pass")
		return 0
	}
	return s.store.Merge(batch)
}

func (s *Synchronizer) release() { <-s.busy }

// Run loads the durable store, syncs once, then syncs every interval until
// ctx is cancelled. Ticks that land on a running pass are skipped. Run
// returns only after every pass it started has finished.
func (s *Synchronizer) Run(ctx context.Context, interval time.Duration) {
	var wg sync.WaitGroup
	defer wg.Wait()

	if _, err := s.Reload(ctx); err != nil {
		log.Error().Str("component", "sync").Err(err).Msg("initial load failed")
	}
	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.runOnce(ctx)
			}()
		}
	}
}

func (s *Synchronizer) runOnce(ctx context.Context) {
	_, err := s.Sync(ctx)
	switch {
	case errors.Is(err, ErrSyncInProgress):
		log.Warn().Str("component", "sync").Msg("previous sync still running, tick skipped")
	case err != nil && ctx.Err() == nil:
		log.Error().Str("component", "sync").Err(err).Msg("sync failed")
	}
}
