package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Command journal - one row per submitted command and its outcome
		`CREATE TABLE IF NOT EXISTS commands (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			channel TEXT NOT NULL CHECK(channel IN ('gesture', 'voice')),
			action TEXT NOT NULL,
			confidence REAL NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			at DATETIME NOT NULL
		)`,

		// Settings table - runtime overrides as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_commands_at ON commands(at)`,
		`CREATE INDEX IF NOT EXISTS idx_commands_id ON commands(id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
