package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Command is one row of the command journal.
type Command struct {
	Seq        int64
	ID         string
	Channel    string
	Action     string
	Confidence float64
	Outcome    string
	Message    string
	Source     string
	At         time.Time
}

// CommandLog appends and reads journal rows.
type CommandLog struct {
	db *sql.DB
}

// Commands returns the command journal for this store.
func (s *Store) Commands() *CommandLog {
	return &CommandLog{db: s.db}
}

// Append inserts c and sets its Seq.
func (r *CommandLog) Append(c *Command) error {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	res, err := r.db.Exec(
		`INSERT INTO commands (id, channel, action, confidence, outcome, message, source, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Channel, c.Action, c.Confidence, c.Outcome, c.Message, c.Source, c.At.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append command %s: %w", c.ID, err)
	}
	c.Seq, err = res.LastInsertId()
	return err
}

// Recent returns up to limit rows, newest first.
func (r *CommandLog) Recent(limit int) ([]*Command, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT seq, id, channel, action, confidence, outcome, message, source, at
		 FROM commands ORDER BY seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []*Command
	for rows.Next() {
		c := &Command{}
		if err := rows.Scan(&c.Seq, &c.ID, &c.Channel, &c.Action, &c.Confidence,
			&c.Outcome, &c.Message, &c.Source, &c.At); err != nil {
			return nil, err
		}
		commands = append(commands, c)
	}
	return commands, rows.Err()
}

// Count returns the number of rows.
func (r *CommandLog) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM commands`).Scan(&n)
	return n, err
}

// CountByOutcome returns row counts grouped by outcome.
func (r *CommandLog) CountByOutcome() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT outcome, COUNT(*) FROM commands GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}

// Prune deletes all but the newest keep rows and returns how many were removed.
func (r *CommandLog) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := r.db.Exec(
		`DELETE FROM commands WHERE seq NOT IN (SELECT seq FROM commands ORDER BY seq DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune commands: %w", err)
	}
	return res.RowsAffected()
}
