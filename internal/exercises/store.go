package exercises

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/maestro-drills/backend/internal/database"
	"github.com/maestro-drills/backend/internal/models"
	"github.com/maestro-drills/backend/internal/srs"
)

type Store struct {
	db     *sql.DB
	driver string
}

func NewStore(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

func (s *Store) q(query string) string {
	return database.Rebind(s.driver, query)
}

const exerciseColumns = `id, title, description, domain, difficulty, steps, completed_steps,
	completed, last_reviewed, ease_factor, interval_days, repetitions,
	skipped_count, position, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(row scanner) (models.Exercise, error) {
	var ex models.Exercise
	var steps, completedSteps []byte
	var lastReviewed sql.NullString

	err := row.Scan(&ex.ID, &ex.Title, &ex.Description, &ex.Domain, &ex.Difficulty,
		&steps, &completedSteps, &ex.Completed, &lastReviewed,
		&ex.EaseFactor, &ex.IntervalDays, &ex.Repetitions,
		&ex.SkippedCount, &ex.Position, timestamp{&ex.CreatedAt}, timestamp{&ex.UpdatedAt})
	if err != nil {
		return ex, err
	}

	if err := json.Unmarshal(steps, &ex.Steps); err != nil {
		return ex, fmt.Errorf("decode steps of %s: %w", ex.ID, err)
	}
	if err := json.Unmarshal(completedSteps, &ex.CompletedSteps); err != nil {
		return ex, fmt.Errorf("decode completed steps of %s: %w", ex.ID, err)
	}
	if ex.CompletedSteps == nil {
		ex.CompletedSteps = []int{}
	}
	if lastReviewed.Valid {
		d, err := parseDate(lastReviewed.String)
		if err != nil {
			return ex, fmt.Errorf("decode last_reviewed of %s: %w", ex.ID, err)
		}
		ex.LastReviewed = &d
	}
	return ex, nil
}

// parseDate reads a DATE column. PostgreSQL hands back a full timestamp,
// SQLite the stored text; both start with YYYY-MM-DD.
func parseDate(s string) (civil.Date, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return civil.ParseDate(s)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
}

// timestamp scans a TIMESTAMP column. Drivers differ: lib/pq returns
// time.Time, SQLite may return the stored text.
type timestamp struct{ t *time.Time }

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v
		return nil
	case nil:
		*ts.t = time.Time{}
		return nil
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func dateParam(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ── Exercises ───────────────────────────────────────────

// ListExercises returns active exercises in catalog order, optionally
// restricted to one domain.
func (s *Store) ListExercises(ctx context.Context, domain string) ([]models.Exercise, error) {
	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE archived_at IS NULL`
	var args []any
	if domain != "" {
		query += ` AND domain = $1`
		args = append(args, domain)
	}
	query += ` ORDER BY position ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	exercises := []models.Exercise{}
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

func (s *Store) GetExercise(ctx context.Context, id string) (*models.Exercise, error) {
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1 AND archived_at IS NULL`),
		id,
	)
	ex, err := scanExercise(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get exercise %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise %s: %w", id, err)
	}
	return &ex, nil
}

// CreateExercise inserts ex at the end of the catalog.
func (s *Store) CreateExercise(ctx context.Context, ex models.Exercise, now time.Time) error {
	_, err := s.insertExercise(ctx, ex, now, false)
	if err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	return nil
}

// InsertIfMissing inserts ex unless an exercise with the same id exists,
// archived or not. It reports whether a row was written.
func (s *Store) InsertIfMissing(ctx context.Context, ex models.Exercise, now time.Time) (bool, error) {
	inserted, err := s.insertExercise(ctx, ex, now, true)
	if err != nil {
		return false, fmt.Errorf("seed exercise %s: %w", ex.ID, err)
	}
	return inserted, nil
}

func (s *Store) insertExercise(ctx context.Context, ex models.Exercise, now time.Time, skipExisting bool) (bool, error) {
	steps, err := encodeJSON(ex.Steps)
	if err != nil {
		return false, err
	}
	completedSteps, err := encodeJSON(ex.CompletedSteps)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO exercises (id, title, description, domain, difficulty, steps, completed_steps,
		    completed, last_reviewed, ease_factor, interval_days, repetitions, skipped_count,
		    position, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		    (SELECT COALESCE(MAX(position), 0) + 1 FROM exercises), $14, $15)`
	if skipExisting {
		query += ` ON CONFLICT (id) DO NOTHING`
	}

	res, err := s.db.ExecContext(ctx, s.q(query),
		ex.ID, ex.Title, ex.Description, ex.Domain, ex.Difficulty, steps, completedSteps,
		ex.Completed, dateParam(ex.LastReviewed), ex.EaseFactor, ex.IntervalDays, ex.Repetitions,
		ex.SkippedCount, now.UTC(), now.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const updateExerciseQuery = `UPDATE exercises SET
	    completed_steps = $1, skipped_count = $2, completed = $3, last_reviewed = $4,
	    ease_factor = $5, interval_days = $6, repetitions = $7, updated_at = $8
	 WHERE id = $9 AND archived_at IS NULL`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) updateExercise(ctx context.Context, db execer, ex models.Exercise, now time.Time) error {
	completedSteps, err := encodeJSON(ex.CompletedSteps)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, s.q(updateExerciseQuery),
		completedSteps, ex.SkippedCount, ex.Completed, dateParam(ex.LastReviewed),
		ex.EaseFactor, ex.IntervalDays, ex.Repetitions, now.UTC(), ex.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProgress persists the mutable fields of ex: step progress, skip
// count and review state. Content fields are never rewritten.
func (s *Store) UpdateProgress(ctx context.Context, ex models.Exercise, now time.Time) error {
	if err := s.updateExercise(ctx, s.db, ex, now); err != nil {
		return fmt.Errorf("update exercise %s: %w", ex.ID, err)
	}
	return nil
}

func (s *Store) Archive(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE exercises SET archived_at = $1, updated_at = $2 WHERE id = $3 AND archived_at IS NULL`),
		now.UTC(), now.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("archive exercise %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("archive exercise %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("archive exercise %s: %w", id, ErrNotFound)
	}
	return nil
}

// ── Reviews ─────────────────────────────────────────────

// SaveReview stores the reviewed exercise and appends its review log row
// in one transaction.
func (s *Store) SaveReview(ctx context.Context, ex models.Exercise, rating srs.Rating, now time.Time) (*models.ReviewLog, error) {
	if ex.LastReviewed == nil {
		return nil, fmt.Errorf("save review %s: exercise has no review date", ex.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin review tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.updateExercise(ctx, tx, ex, now); err != nil {
		return nil, fmt.Errorf("save review %s: %w", ex.ID, err)
	}

	review := models.ReviewLog{
		ExerciseID:   ex.ID,
		Rating:       int(rating),
		ReviewedOn:   *ex.LastReviewed,
		EaseFactor:   ex.EaseFactor,
		IntervalDays: ex.IntervalDays,
		Repetitions:  ex.Repetitions,
		CreatedAt:    now.UTC(),
	}
	err = tx.QueryRowContext(ctx, s.q(
		`INSERT INTO reviews (exercise_id, rating, reviewed_on, ease_factor, interval_days, repetitions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`),
		review.ExerciseID, review.Rating, review.ReviewedOn.String(),
		review.EaseFactor, review.IntervalDays, review.Repetitions, review.CreatedAt,
	).Scan(&review.ID)
	if err != nil {
		return nil, fmt.Errorf("insert review %s: %w", ex.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review %s: %w", ex.ID, err)
	}
	return &review, nil
}

// ListReviews returns the review history of one exercise, newest first.
func (s *Store) ListReviews(ctx context.Context, exerciseID string) ([]models.ReviewLog, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, exercise_id, rating, reviewed_on, ease_factor, interval_days, repetitions, created_at
		 FROM reviews WHERE exercise_id = $1
		 ORDER BY id DESC`),
		exerciseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.ReviewLog{}
	for rows.Next() {
		var r models.ReviewLog
		var reviewedOn string
		if err := rows.Scan(&r.ID, &r.ExerciseID, &r.Rating, &reviewedOn,
			&r.EaseFactor, &r.IntervalDays, &r.Repetitions, timestamp{&r.CreatedAt}); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if r.ReviewedOn, err = parseDate(reviewedOn); err != nil {
			return nil, fmt.Errorf("decode reviewed_on: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ReviewDates returns every distinct day with at least one review.
func (s *Store) ReviewDates(ctx context.Context) ([]civil.Date, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT reviewed_on FROM reviews ORDER BY reviewed_on`)
	if err != nil {
		return nil, fmt.Errorf("list review dates: %w", err)
	}
	defer rows.Close()

	var dates []civil.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan review date: %w", err)
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("decode review date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// ReviewCounts returns the number of reviews and how many of them passed.
func (s *Store) ReviewCounts(ctx context.Context) (total, passed int, err error) {
	err = s.db.QueryRowContext(ctx, s.q(`
		SELECT COUNT(*), COUNT(CASE WHEN rating >= $1 THEN 1 END) FROM reviews
	`), int(srs.Good)).Scan(&total, &passed)
	if err != nil {
		return 0, 0, fmt.Errorf("count reviews: %w", err)
	}
	return total, passed, nil
}
