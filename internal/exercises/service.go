package exercises

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/maestro-drills/backend/internal/catalog"
	"github.com/maestro-drills/backend/internal/logger"
	"github.com/maestro-drills/backend/internal/models"
	"github.com/maestro-drills/backend/internal/srs"
)

const (
	DefaultHorizonDays = 7
	maxTitleLength     = 200
)

type Options struct {
	RecommendLimit int
	HorizonDays    int
	// Location decides the local hour of the due digest. Defaults to UTC.
	Location *time.Location
}

type Service struct {
	store *Store
	clock srs.Clock
	log   *logger.Logger
	opts  Options
	locks keyedMutex
	now   func() time.Time
}

func NewService(store *Store, clock srs.Clock, log *logger.Logger, opts Options) *Service {
	if opts.RecommendLimit <= 0 {
		opts.RecommendLimit = srs.DefaultRecommendLimit
	}
	if opts.HorizonDays <= 0 {
		opts.HorizonDays = DefaultHorizonDays
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		store: store,
		clock: clock,
		log:   log.With("component", "exercises"),
		opts:  opts,
		now:   time.Now,
	}
}

// ── Rating ──────────────────────────────────────────────

// Rate records a review of exercise id. The rating is validated before
// anything is read or written.
func (s *Service) Rate(ctx context.Context, id string, rating int) (*models.RateResponse, error) {
	r, err := srs.ParseRating(rating)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	updated, err := s.saveRating(ctx, id, r, today)
	if err != nil {
		return nil, err
	}

	s.log.Info("exercise rated",
		"exercise_id", id,
		"rating", r.String(),
		"interval_days", updated.IntervalDays,
		"ease_factor", updated.EaseFactor,
	)

	resp := &models.RateResponse{Exercise: updated}
	stats, err := s.Stats(ctx)
	if err != nil {
		s.log.Warn("stats after rating", "exercise_id", id, "error", err)
	} else {
		resp.Stats = stats
	}
	if due, ok := srs.DueDate(updated); ok {
		days, _ := srs.DaysUntilDue(updated, today)
		resp.NextReview = &due
		resp.DaysUntilDue = days
		resp.DueLabel = srs.DueLabel(days)
	}
	return resp, nil
}

func (s *Service) saveRating(ctx context.Context, id string, r srs.Rating, today civil.Date) (models.Exercise, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	ex, err := s.store.GetExercise(ctx, id)
	if err != nil {
		return models.Exercise{}, err
	}
	updated, err := srs.ApplyReview(*ex, r, today)
	if err != nil {
		return models.Exercise{}, err
	}
	now := s.now()
	updated.UpdatedAt = now.UTC()
	if _, err := s.store.SaveReview(ctx, updated, r, now); err != nil {
		return models.Exercise{}, err
	}
	return updated, nil
}

// ── Selection ───────────────────────────────────────────

// Recommended returns the practice session. limit <= 0 uses the configured default.
func (s *Service) Recommended(ctx context.Context, limit int) ([]models.Exercise, error) {
	if limit <= 0 {
		limit = s.opts.RecommendLimit
	}
	all, err := s.store.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	return srs.Recommended(all, s.clock.Today(), limit), nil
}

func (s *Service) Next(ctx context.Context) (*models.Exercise, error) {
	all, err := s.store.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	return srs.Next(all, s.clock.Today()), nil
}

func (s *Service) DueSets(ctx context.Context, horizonDays int) (*models.DueSets, error) {
	if horizonDays <= 0 {
		horizonDays = s.opts.HorizonDays
	}
	all, err := s.store.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	sets := srs.DueSets(all, s.clock.Today(), horizonDays)
	return &sets, nil
}

// ── Stats ───────────────────────────────────────────────

func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	all, err := s.store.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	dates, err := s.store.ReviewDates(ctx)
	if err != nil {
		return nil, err
	}
	totalReviews, passed, err := s.store.ReviewCounts(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{
		TotalExercises:    len(all),
		TotalReviews:      totalReviews,
		RetentionRate:     srs.RetentionRate(passed, totalReviews),
		AverageEaseFactor: srs.AverageEaseFactor(all),
		CurrentStreak:     srs.CurrentStreak(dates, s.clock.Today()),
		LongestStreak:     srs.LongestStreak(dates),
		GlobalMastery:     srs.GlobalMastery(all),
		Domains:           srs.DomainStats(all),
	}
	for _, ex := range all {
		if ex.Completed {
			stats.TotalCompleted++
		}
	}
	return stats, nil
}

// Insights classifies the active exercises by how well they are going.
func (s *Service) Insights(ctx context.Context) (*models.Insights, error) {
	all, err := s.store.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	insights := srs.Analyze(all, s.clock.Today())
	return &insights, nil
}

// ── Catalog ─────────────────────────────────────────────

func (s *Service) ListExercises(ctx context.Context, domain string) ([]models.Exercise, error) {
	return s.store.ListExercises(ctx, normalizeDomain(domain))
}

func (s *Service) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	return s.store.GetExercise(ctx, id)
}

func (s *Service) ListReviews(ctx context.Context, id string) ([]models.ReviewLog, error) {
	if _, err := s.store.GetExercise(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListReviews(ctx, id)
}

func (s *Service) CreateExercise(ctx context.Context, req models.CreateExerciseRequest) (*models.Exercise, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Domain = normalizeDomain(req.Domain)
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	ex := srs.NewExercise(uuid.NewString(), req.Title, req.Domain, req.Difficulty, req.Steps)
	ex.Description = strings.TrimSpace(req.Description)
	if err := s.store.CreateExercise(ctx, ex, s.now()); err != nil {
		return nil, err
	}
	s.log.Info("exercise created", "exercise_id", ex.ID, "domain", ex.Domain)
	return s.store.GetExercise(ctx, ex.ID)
}

func validateCreate(req models.CreateExerciseRequest) error {
	switch n := utf8.RuneCountInString(req.Title); {
	case n == 0:
		return fmt.Errorf("%w: title is required", ErrInvalidExercise)
	case n > maxTitleLength:
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidExercise, maxTitleLength)
	}
	if req.Domain == "" {
		return fmt.Errorf("%w: domain is required", ErrInvalidExercise)
	}
	if req.Difficulty < 1 || req.Difficulty > 3 {
		return fmt.Errorf("%w: difficulty must be between 1 and 3", ErrInvalidExercise)
	}
	if len(req.Steps) == 0 {
		return fmt.Errorf("%w: at least one step is required", ErrInvalidExercise)
	}
	for i, step := range req.Steps {
		if strings.TrimSpace(step) == "" {
			return fmt.Errorf("%w: step %d is empty", ErrInvalidExercise, i)
		}
	}
	return nil
}

// Seed inserts catalog entries that are not stored yet. Existing exercises,
// including their review state, are left untouched.
func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

func (s *Service) Seed(ctx context.Context, entries []catalog.Entry) (int, error) {
	inserted := 0
	for _, e := range entries {
		ex := srs.NewExercise(e.ID, e.Title, normalizeDomain(e.Domain), e.Difficulty, e.Steps)
		ex.Description = e.Description
		ok, err := s.store.InsertIfMissing(ctx, ex, s.now())
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	s.log.Info("catalog seeded", "entries", len(entries), "inserted", inserted)
	return inserted, nil
}

// ── Progress ────────────────────────────────────────────

// mutate runs fn on a fresh copy of exercise id under its lock and persists
// the result.
func (s *Service) mutate(ctx context.Context, id string, fn func(*models.Exercise) error) (*models.Exercise, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	ex, err := s.store.GetExercise(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(ex); err != nil {
		return nil, err
	}
	now := s.now()
	ex.UpdatedAt = now.UTC()
	if err := s.store.UpdateProgress(ctx, *ex, now); err != nil {
		return nil, err
	}
	return ex, nil
}

// ToggleStep marks step done or undone. Review state is not touched.
func (s *Service) ToggleStep(ctx context.Context, id string, step int) (*models.Exercise, error) {
	return s.mutate(ctx, id, func(ex *models.Exercise) error {
		if step < 0 || step >= len(ex.Steps) {
			return fmt.Errorf("%w: %d (exercise has %d steps)", ErrInvalidStep, step, len(ex.Steps))
		}
		if i := slices.Index(ex.CompletedSteps, step); i >= 0 {
			ex.CompletedSteps = slices.Delete(ex.CompletedSteps, i, i+1)
		} else {
			ex.CompletedSteps = append(ex.CompletedSteps, step)
			slices.Sort(ex.CompletedSteps)
		}
		return nil
	})
}

func (s *Service) Skip(ctx context.Context, id string) (*models.Exercise, error) {
	return s.mutate(ctx, id, func(ex *models.Exercise) error {
		ex.SkippedCount++
		return nil
	})
}

// Reset puts the exercise back to its never-reviewed state.
func (s *Service) Reset(ctx context.Context, id string) (*models.Exercise, error) {
	ex, err := s.mutate(ctx, id, func(ex *models.Exercise) error {
		*ex = srs.ResetProgress(*ex)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("exercise reset", "exercise_id", id)
	return ex, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.store.Archive(ctx, id, s.now()); err != nil {
		return err
	}
	s.log.Info("exercise archived", "exercise_id", id)
	return nil
}

// ── Background Workers ──────────────────────────────────

// StartDueDigestWorker logs the due summary once a day at hour (local to
// the configured location). It blocks until ctx is cancelled.
func (s *Service) StartDueDigestWorker(ctx context.Context, hour int) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	s.log.Info("due digest worker started", "hour", hour)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("due digest worker shutting down")
			return
		case t := <-ticker.C:
			if t.In(s.opts.Location).Hour() == hour {
				if _, err := s.runDueDigest(ctx); err != nil {
					s.log.Error("due digest failed", "error", err)
				}
			}
		}
	}
}

func (s *Service) runDueDigest(ctx context.Context) (*models.DueSets, error) {
	sets, err := s.DueSets(ctx, s.opts.HorizonDays)
	if err != nil {
		return nil, err
	}
	upcoming := 0
	for _, day := range sets.Upcoming {
		upcoming += len(day.Exercises)
	}
	s.log.Info("due digest",
		"date", s.clock.Today().String(),
		"overdue", len(sets.Overdue),
		"today", len(sets.Today),
		"upcoming", upcoming,
		"horizon_days", s.opts.HorizonDays,
	)
	return sets, nil
}
