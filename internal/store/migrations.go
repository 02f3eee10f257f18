package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Workouts table - one row per ended tracking session
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			exercise TEXT NOT NULL,
			reps INTEGER NOT NULL DEFAULT 0 CHECK(reps >= 0),
			frames INTEGER NOT NULL DEFAULT 0,
			skipped_frames INTEGER NOT NULL DEFAULT 0,
			squat_threshold REAL NOT NULL,
			standing_threshold REAL NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		)`,

		// Workout poses table - how many frames of each pose a workout saw
		`CREATE TABLE IF NOT EXISTS workout_poses (
			workout_id TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
			pose TEXT NOT NULL,
			frames INTEGER NOT NULL,
			PRIMARY KEY (workout_id, pose)
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_started_at ON workouts(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
