package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/flexit/internal/pose"
	"github.com/ayusman/flexit/internal/session"
)

// Workout is a finished tracking session.
type Workout struct {
	ID                string
	Exercise          string
	Reps              int
	Frames            int
	SkippedFrames     int
	SquatThreshold    float64
	StandingThreshold float64
	StartedAt         time.Time
	EndedAt           time.Time

	// PoseCounts is filled by Create and GetByID; List leaves it nil.
	PoseCounts map[pose.Type]int
}

// Duration is the wall time between start and end.
func (w *Workout) Duration() time.Duration {
	return w.EndedAt.Sub(w.StartedAt)
}

// Totals aggregates every stored workout.
type Totals struct {
	Workouts int
	Reps     int
	Frames   int
	Poses    map[pose.Type]int
}

// WorkoutRepository provides CRUD operations for workouts.
type WorkoutRepository struct {
	db *sql.DB
}

// Workouts returns the workout repository for this store.
func (s *Store) Workouts() *WorkoutRepository {
	return &WorkoutRepository{db: s.db}
}

// Create inserts a workout and its pose counts in one transaction.
func (r *WorkoutRepository) Create(w *Workout) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO workouts (id, exercise, reps, frames, skipped_frames,
		 squat_threshold, standing_threshold, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Exercise, w.Reps, w.Frames, w.SkippedFrames,
		w.SquatThreshold, w.StandingThreshold, w.StartedAt.UTC(), w.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert workout: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO workout_poses (workout_id, pose, frames) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for p, n := range w.PoseCounts {
		if n == 0 {
			continue
		}
		if _, err := stmt.Exec(w.ID, string(p), n); err != nil {
			return fmt.Errorf("insert pose count %s: %w", p, err)
		}
	}

	return tx.Commit()
}

const workoutColumns = `id, exercise, reps, frames, skipped_frames,
	squat_threshold, standing_threshold, started_at, ended_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row scanner) (*Workout, error) {
	w := &Workout{}
	err := row.Scan(&w.ID, &w.Exercise, &w.Reps, &w.Frames, &w.SkippedFrames,
		&w.SquatThreshold, &w.StandingThreshold, &w.StartedAt, &w.EndedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// GetByID retrieves a workout with its pose counts.
func (r *WorkoutRepository) GetByID(id string) (*Workout, error) {
	w, err := scanWorkout(r.db.QueryRow(
		`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	counts, err := r.PoseCounts(id)
	if err != nil {
		return nil, err
	}
	w.PoseCounts = counts

	return w, nil
}

// List retrieves workouts, newest first. A limit of zero or less returns all.
func (r *WorkoutRepository) List(limit int) ([]*Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

// Delete removes a workout and its pose counts.
func (r *WorkoutRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// PoseCounts returns the per-pose frame counts of one workout.
func (r *WorkoutRepository) PoseCounts(id string) (map[pose.Type]int, error) {
	return r.poseCounts(`SELECT pose, frames FROM workout_poses WHERE workout_id = ?`, id)
}

func (r *WorkoutRepository) poseCounts(query string, args ...any) (map[pose.Type]int, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[pose.Type]int)
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, err
		}
		counts[pose.Type(p)] = n
	}

	return counts, rows.Err()
}

// Totals sums reps, frames and pose counts over every workout.
func (r *WorkoutRepository) Totals() (*Totals, error) {
	t := &Totals{}
	err := r.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(reps), 0), COALESCE(SUM(frames), 0) FROM workouts`,
	).Scan(&t.Workouts, &t.Reps, &t.Frames)
	if err != nil {
		return nil, err
	}

	t.Poses, err = r.poseCounts(`SELECT pose, SUM(frames) FROM workout_poses GROUP BY pose`)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// RecordWorkout stores the summary of an ended session.
func (s *Store) RecordWorkout(sum session.Summary) error {
	counts := make(map[pose.Type]int, len(sum.PoseCounts))
	for p, n := range sum.PoseCounts {
		counts[p] = n
	}

	endedAt := sum.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}

	return s.Workouts().Create(&Workout{
		ID:                sum.ID,
		Exercise:          sum.Exercise,
		Reps:              sum.Reps,
		Frames:            sum.Frames,
		SkippedFrames:     sum.Skipped,
		SquatThreshold:    sum.Thresholds.Squat,
		StandingThreshold: sum.Thresholds.Standing,
		StartedAt:         sum.StartedAt,
		EndedAt:           endedAt,
		PoseCounts:        counts,
	})
}
