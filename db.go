// db.go
//
// Database helpers for the guess-the-sentence server.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys,
//     immediate transactions so match read-modify-writes serialize).
//   - Applying migrations from ./sql/*.sql (idempotent, recorded in _migrations).
//   - Seeding the sentence pool on first run.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/guessentence/go-server/internal/game"
	"github.com/guessentence/go-server/internal/store"
)

// openDB opens (and creates if missing) a SQLite database file.
//
//   - Ensures the parent directory exists for relative DSNs (e.g. ./data/game.db).
//   - Configures busy timeout, WAL journaling, and immediate transaction
//     locking so concurrent writers queue instead of failing.
//   - Enforces foreign keys.
func openDB(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies SQL migrations from the ./sql directory.
//
//   - Uses a _migrations table to track applied files.
//   - Executes each *.sql file in lexical order inside a transaction.
//   - Skips files already applied.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	root := "sql"
	var files []string
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk sql dir: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Info().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* --------------------------- sentence seeding ---------------------------- */

// seedNormal is the ranked sentence pool, inserted on first run.
var seedNormal = []string{
	"PRACTICE MAKES PERFECT ONLY WITH FEEDBACK",
	"EVERY PUZZLE STARTS SIMPLE THEN TURNS TRICKY",
	"KEEP CALM AND CODE YOUR WAY TO VICTORY",
	"LOGIC IS THE ART OF MAKING GOOD GUESSES",
	"SHORT STEPS BUILD LONG AND LASTING JOURNEYS",
	"NOTHING GREAT COMES WITHOUT SMALL FAILURES",
	"DEBUGGING IS TWICE AS HARD AS CODING",
	"TESTS HELP YOU TRUST WHAT YOU CANNOT SEE",
	"FOCUS BEATS TALENT WHEN TALENT IS UNFOCUSED",
	"CHOOSE CLARITY OVER CLEVERNESS EVERY TIME",
	"GOOD NAMES EXPLAIN WHAT CODE ACTUALLY DOES",
	"YOUR FUTURE IS BUILT ONE COMMIT AT A TIME",
	"MOVE SLOW WHEN YOU WANT TO MOVE FAST",
	"PRACTICE PATIENCE PRECISION AND PERSISTENCE",
	"TODAY IS A GOOD DAY TO LEARN SOMETHING",
	"ASSUMPTIONS ARE THE MOTHER OF ALL MISTAKES",
	"READING CODE IS HARDER THAN WRITING CODE",
	"CLEAN CODE IS LIKE A WELL TOLD STORY",
	"SIMPLE IS NOT EASY BUT ALWAYS WORTH IT",
	"GREAT SOFTWARE IS BUILT BY GREAT HABITS",
}

// seedGuest is the guest sentence pool.
var seedGuest = []string{
	"GUESS THE SENTENCE WITHOUT ANY COINS",
	"THREE SECRET PHRASES AWAIT THE BRAVE",
	"PLAY FOR FUN AND LEARN THE RULES HERE",
}

// seedSentences fills the sentence pool when the table is empty.
func seedSentences(ctx context.Context, st *store.SQLite) error {
	n, err := st.CountSentences(ctx)
	if err != nil {
		return fmt.Errorf("count sentences: %w", err)
	}
	if n > 0 {
		return nil
	}
	insert := func(texts []string, guest bool) error {
		for _, t := range texts {
			s := &game.Sentence{ID: uuid.NewString(), Text: t, Guest: guest}
			if err := st.AddSentence(ctx, s); err != nil {
				return fmt.Errorf("insert sentence: %w", err)
			}
		}
		return nil
	}
	if err := insert(seedNormal, false); err != nil {
		return err
	}
	if err := insert(seedGuest, true); err != nil {
		return err
	}
	log.Info().Int("normal", len(seedNormal)).Int("guest", len(seedGuest)).Msg("seeded sentence pool")
	return nil
}
