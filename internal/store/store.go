package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/grunwald/internal/word"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// Store persists words and their images in SQLite.
// A Store owns its database file exclusively.
type Store struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

type scanner interface {
	Scan(dest ...any) error
}

// Open opens (creating if needed) the database at path and applies the schema
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "store")

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, dbError("open", err)
	}
	// One connection: in-memory databases are per connection and the
	// exclusive lock below is held by whoever opened the file.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, log: log}
	if err := s.init(ctx); err != nil {
		db.Close()
		log.Error("failed to initialise database", "path", path, "error", err)
		return nil, err
	}

	log.Info("database opened", "path", path)
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA locking_mode = EXCLUSIVE"); err != nil {
		return dbError("pragma", err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return dbError("schema", err)
		}
	}
	return nil
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

// Close releases the database
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return dbError("close", err)
	}
	return nil
}

// Exists reports whether a word with exactly this name is stored
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM word WHERE name = ?)", name).Scan(&exists)
	if err != nil {
		s.log.Warn("exists check failed", "name", name, "error", err)
		return false, dbError("exists", err)
	}
	return exists, nil
}

// Add stores a new word, and its image when the word carries one.
// The returned word has the assigned ids filled in.
func (s *Store) Add(ctx context.Context, w word.Word) (word.Word, error) {
	var stored word.Word
	err := s.inTx(ctx, "add", func(tx *sql.Tx) error {
		imageID := word.UnsavedID
		if w.HasImage() {
			id, err := insertImage(ctx, tx, w.Image)
			if err != nil {
				return err
			}
			imageID = id
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO word (id_image, name, transcription, translation, association,
			                  etymology, description, type, date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			imageID, w.Name, w.Transcription, w.Translation, w.Association,
			w.Etymology, w.Description, int(w.Type), nullTime(w.Date))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}

		stored = withIDs(w, id, imageID)
		return nil
	})
	if err != nil {
		return word.Word{}, err
	}

	s.log.Debug("word added", "name", w.Name, "id", stored.ID, "image_id", stored.Image.ID)
	return stored, nil
}

// Update rewrites a stored word. An image row is created, rewritten or
// deleted so that only nouns own one.
func (s *Store) Update(ctx context.Context, w word.Word) (word.Word, error) {
	if !w.IsSaved() {
		return word.Word{}, &DBError{Op: "update", Message: fmt.Sprintf("word %q has no id", w.Name), Code: NoCode}
	}

	var stored word.Word
	err := s.inTx(ctx, "update", func(tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx, "SELECT id_image FROM word WHERE id = ?", w.ID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no word with id %d", w.ID)
		}
		if err != nil {
			return err
		}

		imageID := current
		switch {
		case w.HasImage() && current >= 0:
			_, err = tx.ExecContext(ctx,
				"UPDATE word_image SET url = ?, width = ?, height = ?, data = ? WHERE id = ?",
				w.Image.URL, w.Image.Width, w.Image.Height, w.Image.Data, current)
		case w.HasImage():
			imageID, err = insertImage(ctx, tx, w.Image)
		case current >= 0:
			_, err = tx.ExecContext(ctx, "DELETE FROM word_image WHERE id = ?", current)
			imageID = word.UnsavedID
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE word SET id_image = ?, name = ?, transcription = ?, translation = ?,
			                association = ?, etymology = ?, description = ?, type = ?, date = ?
			WHERE id = ?`,
			imageID, w.Name, w.Transcription, w.Translation, w.Association,
			w.Etymology, w.Description, int(w.Type), nullTime(w.Date), w.ID)
		if err != nil {
			return err
		}

		stored = withIDs(w, w.ID, imageID)
		return nil
	})
	if err != nil {
		return word.Word{}, err
	}

	s.log.Debug("word updated", "name", w.Name, "id", w.ID, "image_id", stored.Image.ID)
	return stored, nil
}

// Remove deletes a word and the image it owns. The word is matched by id
// when it has one and by name otherwise. It reports whether a row was deleted.
func (s *Store) Remove(ctx context.Context, w word.Word) (bool, error) {
	removed := false
	err := s.inTx(ctx, "remove", func(tx *sql.Tx) error {
		var (
			id, imageID int64
			err         error
		)
		if w.IsSaved() {
			err = tx.QueryRowContext(ctx, "SELECT id, id_image FROM word WHERE id = ?", w.ID).Scan(&id, &imageID)
		} else {
			err = tx.QueryRowContext(ctx, "SELECT id, id_image FROM word WHERE name = ?", w.Name).Scan(&id, &imageID)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM word WHERE id = ?", id); err != nil {
			return err
		}
		if imageID >= 0 {
			if _, err := tx.ExecContext(ctx, "DELETE FROM word_image WHERE id = ?", imageID); err != nil {
				return err
			}
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	s.log.Debug("word removed", "name", w.Name, "removed", removed)
	return removed, nil
}

// Get returns the word with the given id, or word.Empty when there is none
func (s *Store) Get(ctx context.Context, id int64) (word.Word, error) {
	row := s.db.QueryRowContext(ctx, selectWord+" WHERE word.id = ?", id)
	w, err := scanWord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return word.Empty, nil
	}
	if err != nil {
		s.log.Warn("get failed", "id", id, "error", err)
		return word.Word{}, dbError("get", err)
	}
	return w, nil
}

// All returns every stored word in storage order
func (s *Store) All(ctx context.Context) ([]word.Word, error) {
	return s.query(ctx, "all", selectWord)
}

// Search returns the words stored under exactly this name
func (s *Store) Search(ctx context.Context, name string) ([]word.Word, error) {
	return s.query(ctx, "search", selectWord+" WHERE word.name = ?", name)
}

// Reset deletes all words and images. Failures are logged, not returned.
func (s *Store) Reset(ctx context.Context) {
	err := s.inTx(ctx, "reset", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM word"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM word_image")
		return err
	})
	if err != nil {
		return
	}
	s.log.Info("database reset", "path", s.path)
}

func (s *Store) query(ctx context.Context, op, query string, args ...any) ([]word.Word, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.log.Warn("query failed", "op", op, "error", err)
		return nil, dbError(op, err)
	}
	defer rows.Close()

	var words []word.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			s.log.Warn("scan failed", "op", op, "error", err)
			return nil, dbError(op, err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn("rows failed", "op", op, "error", err)
		return nil, dbError(op, err)
	}
	return words, nil
}

// inTx runs fn in a transaction, rolling back on any error
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.log.Error("begin failed", "op", op, "error", err)
		return dbError(op, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed", "op", op, "error", rbErr)
		}
		s.log.Error("transaction failed", "op", op, "error", err)
		return dbError(op, err)
	}

	if err := tx.Commit(); err != nil {
		s.log.Error("commit failed", "op", op, "error", err)
		return dbError(op, err)
	}
	return nil
}

func insertImage(ctx context.Context, tx *sql.Tx, img word.Image) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO word_image (url, width, height, data) VALUES (?, ?, ?, ?)",
		img.URL, img.Width, img.Height, img.Data)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanWord(row scanner) (word.Word, error) {
	var (
		w          word.Word
		typ        int
		date       sql.NullTime
		imageID    sql.NullInt64
		imageURL   sql.NullString
		imageW     sql.NullInt64
		imageH     sql.NullInt64
		imageBytes []byte
	)
	err := row.Scan(&w.ID, &w.Name, &w.Transcription, &w.Translation,
		&w.Association, &w.Etymology, &w.Description, &typ, &date,
		&imageID, &imageURL, &imageW, &imageH, &imageBytes)
	if err != nil {
		return word.Word{}, err
	}

	w.Type = word.Type(typ)
	if date.Valid {
		w.Date = date.Time
	}
	if imageID.Valid {
		w.Image = word.Image{
			ID:     imageID.Int64,
			URL:    imageURL.String,
			Width:  int(imageW.Int64),
			Height: int(imageH.Int64),
			Data:   imageBytes,
		}
	}
	return w, nil
}

func withIDs(w word.Word, id, imageID int64) word.Word {
	stored := w.Clone()
	stored.ID = id
	if w.HasImage() {
		stored.Image.ID = imageID
	} else {
		stored.Image = word.Image{}
	}
	return stored
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
