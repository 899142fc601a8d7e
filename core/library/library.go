// Package library exports a parsed hymnal to a SQLite database.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/FocuswithJustin/JuniperHymnal/core/batch"
	herrors "github.com/FocuswithJustin/JuniperHymnal/core/errors"
	"github.com/FocuswithJustin/JuniperHymnal/core/scripture"
	"github.com/FocuswithJustin/JuniperHymnal/core/song"
	"github.com/FocuswithJustin/JuniperHymnal/core/sqlite"
)

// Scripture reference sources.
const (
	SourceMajesty = "majesty"
	SourceReading = "reading"
)

var schema = []string{
	`DROP TABLE IF EXISTS scripture_refs`,
	`DROP TABLE IF EXISTS stanza_lines`,
	`DROP TABLE IF EXISTS stanzas`,
	`DROP TABLE IF EXISTS songs`,
	`DROP TABLE IF EXISTS documents`,
	`CREATE TABLE documents (
		id INTEGER PRIMARY KEY,
		path TEXT NOT NULL,
		sha256 TEXT NOT NULL,
		blake3 TEXT NOT NULL,
		lines INTEGER NOT NULL,
		songs INTEGER NOT NULL
	)`,
	`CREATE TABLE songs (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		majesty_number INTEGER,
		tune TEXT,
		author TEXT,
		author2 TEXT,
		arranged_by TEXT,
		adapted_by TEXT,
		translated_by TEXT,
		versified_by TEXT,
		altered_by TEXT,
		scripture_text TEXT,
		scripture_reference TEXT,
		copyright TEXT
	)`,
	`CREATE TABLE stanzas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		song_id INTEGER NOT NULL REFERENCES songs(id),
		position INTEGER NOT NULL,
		majesty_verse INTEGER NOT NULL
	)`,
	`CREATE TABLE stanza_lines (
		stanza_id INTEGER NOT NULL REFERENCES stanzas(id),
		position INTEGER NOT NULL,
		text TEXT NOT NULL
	)`,
	`CREATE TABLE scripture_refs (
		song_id INTEGER NOT NULL REFERENCES songs(id),
		source TEXT NOT NULL,
		raw TEXT NOT NULL,
		book TEXT,
		chapter_start INTEGER,
		verse_start INTEGER,
		chapter_end INTEGER,
		verse_end INTEGER
	)`,
	`CREATE INDEX idx_songs_majesty_number ON songs(majesty_number)`,
	`CREATE INDEX idx_stanzas_song ON stanzas(song_id)`,
}

// ExportFile writes report to the SQLite database at path, replacing any
// previous export.
func ExportFile(ctx context.Context, path string, report *batch.Report) error {
	db, err := sqlite.Open(path)
	if err != nil {
		return herrors.NewIO("open", path, err)
	}
	defer db.Close()
	if err := Export(ctx, db, report); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// Export writes report to db in a single transaction.
func Export(ctx context.Context, db *sql.DB, report *batch.Report) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	for i, d := range report.Documents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, path, sha256, blake3, lines, songs) VALUES (?, ?, ?, ?, ?, ?)`,
			i+1, d.Path, d.SHA256, d.BLAKE3, d.Lines, d.Songs); err != nil {
			return fmt.Errorf("insert document %s: %w", d.Path, err)
		}
	}

	for _, s := range report.Songs {
		if err := insertSong(ctx, tx, s); err != nil {
			return fmt.Errorf("insert song %d: %w", s.ID, err)
		}
	}
	return tx.Commit()
}

func insertSong(ctx context.Context, tx *sql.Tx, s *song.Song) error {
	cols := []any{s.ID, s.Title, nullInt(s.MajestyNumber), nullString(s.Tune)}
	for _, v := range []any{s.Author, s.Author2, s.ArrangedBy, s.AdaptedBy, s.TranslatedBy, s.VersifiedBy, s.AlteredBy} {
		enc, err := jsonColumn(v)
		if err != nil {
			return err
		}
		cols = append(cols, enc)
	}
	var text, ref sql.NullString
	if s.MajestyScripture != nil {
		text = sql.NullString{String: s.MajestyScripture.Text, Valid: true}
		ref = sql.NullString{String: s.MajestyScripture.Reference, Valid: true}
	}
	cols = append(cols, text, ref, nullString(s.Copyright))

	if _, err := tx.ExecContext(ctx, `INSERT INTO songs (
		id, title, majesty_number, tune,
		author, author2, arranged_by, adapted_by, translated_by, versified_by, altered_by,
		scripture_text, scripture_reference, copyright
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, cols...); err != nil {
		return err
	}

	for pos, st := range s.Stanzas {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO stanzas (song_id, position, majesty_verse) VALUES (?, ?, ?)`,
			s.ID, pos+1, st.MajestyVerse)
		if err != nil {
			return err
		}
		stanzaID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for lpos, line := range st.Lines {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO stanza_lines (stanza_id, position, text) VALUES (?, ?, ?)`,
				stanzaID, lpos+1, line); err != nil {
				return err
			}
		}
	}

	if s.MajestyScripture != nil {
		if err := insertReference(ctx, tx, s.ID, SourceMajesty, s.MajestyScripture.Reference); err != nil {
			return err
		}
	}
	if s.IsScriptureReading() {
		if err := insertReference(ctx, tx, s.ID, SourceReading, s.Author.Text); err != nil {
			return err
		}
	}
	return nil
}

// insertReference stores raw and, when it parses, its structured parts.
func insertReference(ctx context.Context, tx *sql.Tx, songID int, source, raw string) error {
	var book sql.NullString
	var cs, vs, ce, ve sql.NullInt64
	if ref, err := scripture.Parse(raw); err == nil {
		book = sql.NullString{String: ref.Book, Valid: true}
		cs, vs, ce, ve = nullInt(ref.ChapterStart), nullInt(ref.VerseStart), nullInt(ref.ChapterEnd), nullInt(ref.VerseEnd)
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO scripture_refs
		(song_id, source, raw, book, chapter_start, verse_start, chapter_end, verse_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		songID, source, raw, book, cs, vs, ce, ve)
	return err
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// jsonColumn encodes an optional author or attribution in its library JSON
// shape; nil pointers become NULL.
func jsonColumn(v any) (sql.NullString, error) {
	switch p := v.(type) {
	case *song.Author:
		if p == nil {
			return sql.NullString{}, nil
		}
	case *song.Attribution:
		if p == nil {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
