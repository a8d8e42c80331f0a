package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"

	"github.com/lrclib/lrclib/src/catalog"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// driverName is a sqlite3 driver variant registered with a connect hook,
// so the pragmas below apply to every pooled connection instead of only
// the first one opened.
const driverName = "sqlite3_lrclib"

var registerDriver sync.Once

// SqliteStore is a SQLite implementation of the Store interface.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database file at path and
// prepares the schema. maxConns bounds the connection pool; zero or
// less falls back to 30.
func NewSqliteStore(path string, maxConns int) (*SqliteStore, error) {
	registerDriver.Do(func() {
		sql.Register(driverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				pragmas := []string{
					"PRAGMA journal_mode = WAL",
					"PRAGMA synchronous = NORMAL",
					"PRAGMA temp_store = MEMORY",
					"PRAGMA mmap_size = 30000000000",
				}
				for _, pragma := range pragmas {
					if _, err := conn.Exec(pragma, nil); err != nil {
						return err
					}
				}
				return nil
			},
		})
	})

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	if maxConns <= 0 {
		maxConns = 30
	}
	db.SetMaxOpenConns(maxConns)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SqliteStore{db: db}, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx, so writes can run
// standalone or inside a caller-owned transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

const trackColumns = `
		tracks.id,
		tracks.name,
		tracks.name_lower,
		tracks.artist_name,
		tracks.artist_name_lower,
		tracks.album_name,
		tracks.album_name_lower,
		tracks.duration,
		tracks.last_lyrics_id,
		lyrics.id,
		lyrics.plain_lyrics,
		lyrics.synced_lyrics,
		lyrics.has_plain_lyrics,
		lyrics.has_synced_lyrics,
		lyrics.instrumental`

func scanTrack(row scanner) (*catalog.Track, error) {
	var t catalog.Track
	var lastLyricsID, lyricsID sql.NullInt64
	var plain, synced sql.NullString
	var hasPlain, hasSynced, instrumental sql.NullBool

	err := row.Scan(
		&t.ID, &t.Name, &t.NameLower,
		&t.ArtistName, &t.ArtistNameLower,
		&t.AlbumName, &t.AlbumNameLower,
		&t.Duration, &lastLyricsID,
		&lyricsID, &plain, &synced, &hasPlain, &hasSynced, &instrumental,
	)
	if err != nil {
		return nil, err
	}

	if lastLyricsID.Valid {
		t.LastLyricsID = &lastLyricsID.Int64
	}
	if lyricsID.Valid {
		l := catalog.Lyrics{
			ID:              lyricsID.Int64,
			HasPlainLyrics:  hasPlain.Bool,
			HasSyncedLyrics: hasSynced.Bool,
			Instrumental:    instrumental.Bool,
			TrackID:         t.ID,
		}
		if plain.Valid {
			l.PlainLyrics = &plain.String
		}
		if synced.Valid {
			l.SyncedLyrics = &synced.String
		}
		t.Lyrics = &l
	}

	return &t, nil
}

// GetTrackByID returns the track joined with its current lyrics, or nil.
func (s *SqliteStore) GetTrackByID(ctx context.Context, id int64) (*catalog.Track, error) {
	query := `
		SELECT` + trackColumns + `
		FROM tracks
		LEFT JOIN lyrics ON tracks.last_lyrics_id = lyrics.id
		WHERE tracks.id = ?`

	track, err := scanTrack(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

// GetTrackByMetadata returns the lowest-id track whose normalized name
// and artist match exactly. An empty albumLower skips the album
// condition; a nil duration skips the two-second window condition.
func (s *SqliteStore) GetTrackByMetadata(ctx context.Context, nameLower, artistLower, albumLower string, duration *float64) (*catalog.Track, error) {
	conditions := []string{"tracks.name_lower = ?", "tracks.artist_name_lower = ?"}
	args := []any{nameLower, artistLower}
	if albumLower != "" {
		conditions = append(conditions, "tracks.album_name_lower = ?")
		args = append(args, albumLower)
	}
	if duration != nil {
		conditions = append(conditions, "tracks.duration >= ?", "tracks.duration <= ?")
		args = append(args, *duration-2.0, *duration+2.0)
	}

	query := `
		SELECT` + trackColumns + `
		FROM tracks
		LEFT JOIN lyrics ON tracks.last_lyrics_id = lyrics.id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY tracks.id`

	track, err := scanTrack(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

const trackIDByMetadataQuery = `
		SELECT tracks.id
		FROM tracks
		WHERE tracks.name_lower = ?
			AND tracks.artist_name_lower = ?
			AND tracks.album_name_lower = ?
			AND tracks.duration >= ?
			AND tracks.duration <= ?
		ORDER BY tracks.id`

func getTrackIDByMetadata(ctx context.Context, q rowQueryer, name, artistName, albumName string, duration float64) (int64, bool, error) {
	nameLower := catalog.Normalize(name)
	artistLower := catalog.Normalize(artistName)
	albumLower := catalog.Normalize(albumName)

	var id int64
	err := q.QueryRowContext(ctx, trackIDByMetadataQuery,
		nameLower, artistLower, albumLower, duration-2.0, duration+2.0).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// GetTrackIDByMetadata returns the lowest id among tracks matching the
// given raw metadata after normalization, with duration within two
// seconds. All four fields are required.
func (s *SqliteStore) GetTrackIDByMetadata(ctx context.Context, name, artistName, albumName string, duration float64) (int64, bool, error) {
	return getTrackIDByMetadata(ctx, s.db, name, artistName, albumName, duration)
}

// GetTrackIDByMetadataTx is GetTrackIDByMetadata inside a caller-owned transaction.
func (s *SqliteStore) GetTrackIDByMetadataTx(ctx context.Context, tx *sql.Tx, name, artistName, albumName string, duration float64) (int64, bool, error) {
	return getTrackIDByMetadata(ctx, tx, name, artistName, albumName, duration)
}

// SearchTracks runs ftsQuery against the tracks_fts index and returns
// the matching tracks joined with their current lyrics, preserving the
// order produced by the inner FTS query.
func (s *SqliteStore) SearchTracks(ctx context.Context, ftsQuery string, orderByRank bool, limit int) ([]*catalog.Track, error) {
	sub := `SELECT rank, rowid FROM tracks_fts WHERE tracks_fts MATCH ?`
	if orderByRank {
		sub += ` ORDER BY rank`
	}
	sub += ` LIMIT ?`

	query := `
		SELECT` + trackColumns + `
		FROM (` + sub + `) AS search_results
		LEFT JOIN tracks ON search_results.rowid = tracks.id
		LEFT JOIN lyrics ON tracks.last_lyrics_id = lyrics.id`

	rows, err := s.db.QueryContext(ctx, query, ftsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []*catalog.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

const addTrackQuery = `
		INSERT INTO tracks (
			name,
			name_lower,
			artist_name,
			artist_name_lower,
			album_name,
			album_name_lower,
			duration,
			created_at,
			updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, DATETIME('now'), DATETIME('now'))`

func addTrack(ctx context.Context, e execer, name, artistName, albumName string, duration float64) (int64, error) {
	res, err := e.ExecContext(ctx, addTrackQuery,
		name, catalog.Normalize(name),
		artistName, catalog.Normalize(artistName),
		albumName, catalog.Normalize(albumName),
		duration)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddTrack inserts a track, storing both raw and normalized metadata,
// and returns the new id.
func (s *SqliteStore) AddTrack(ctx context.Context, name, artistName, albumName string, duration float64) (int64, error) {
	return addTrack(ctx, s.db, name, artistName, albumName, duration)
}

// AddTrackTx is AddTrack inside a caller-owned transaction.
func (s *SqliteStore) AddTrackTx(ctx context.Context, tx *sql.Tx, name, artistName, albumName string, duration float64) (int64, error) {
	return addTrack(ctx, tx, name, artistName, albumName, duration)
}

const addLyricsQuery = `
		INSERT INTO lyrics (
			plain_lyrics,
			synced_lyrics,
			has_plain_lyrics,
			has_synced_lyrics,
			instrumental,
			track_id,
			source,
			created_at,
			updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, DATETIME('now'), DATETIME('now'))`

func addLyrics(ctx context.Context, e execer, plain, synced *string, trackID int64, instrumental bool, source *string) (int64, error) {
	plain = emptyToNil(plain)
	synced = emptyToNil(synced)

	res, err := e.ExecContext(ctx, addLyricsQuery,
		plain, synced, plain != nil, synced != nil, instrumental, trackID, source)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = e.ExecContext(ctx,
		`UPDATE tracks SET last_lyrics_id = ?, updated_at = DATETIME('now') WHERE id = ?`,
		id, trackID)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddLyrics inserts a lyrics row and points the track's last_lyrics_id
// at it. Empty strings are coerced to null; the has_plain_lyrics and
// has_synced_lyrics columns are derived after coercion. Both writes run
// in one transaction.
func (s *SqliteStore) AddLyrics(ctx context.Context, plain, synced *string, trackID int64, instrumental bool, source *string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	id, err := addLyrics(ctx, tx, plain, synced, trackID, instrumental, source)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// AddLyricsTx is AddLyrics inside a caller-owned transaction.
func (s *SqliteStore) AddLyricsTx(ctx context.Context, tx *sql.Tx, plain, synced *string, trackID int64, instrumental bool, source *string) (int64, error) {
	return addLyrics(ctx, tx, plain, synced, trackID, instrumental, source)
}

func emptyToNil(s *string) *string {
	if s != nil && *s == "" {
		return nil
	}
	return s
}

// FlagTrackLastLyrics records a flag against the track's current
// lyrics. A track without lyrics yields no flag row.
func (s *SqliteStore) FlagTrackLastLyrics(ctx context.Context, trackID int64, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flags (lyrics_id, content, created_at)
		SELECT tracks.last_lyrics_id, ?, DATETIME('now')
		FROM tracks
		WHERE tracks.id = ? AND tracks.last_lyrics_id IS NOT NULL`,
		content, trackID)
	return err
}

// RecentPublishCount counts lyrics published through the API in the
// last ten minutes.
func (s *SqliteStore) RecentPublishCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lyrics
		WHERE created_at > DATETIME('now', '-10 minute')
		AND source = 'lrclib'`).Scan(&count)
	return count, err
}

// GetMissingTrackIDByMetadata returns the id of a queued missing track
// matching mt after normalization, with duration within two seconds.
func (s *SqliteStore) GetMissingTrackIDByMetadata(ctx context.Context, mt catalog.MissingTrack) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT missing_tracks.id
		FROM missing_tracks
		WHERE missing_tracks.name_lower = ?
			AND missing_tracks.artist_name_lower = ?
			AND missing_tracks.album_name_lower = ?
			AND duration >= ?
			AND duration <= ?
		ORDER BY missing_tracks.id`,
		catalog.Normalize(mt.Name), catalog.Normalize(mt.ArtistName), catalog.Normalize(mt.AlbumName),
		mt.Duration-2.0, mt.Duration+2.0).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// AddMissingTrack records a track requested by clients but absent from
// the catalog.
func (s *SqliteStore) AddMissingTrack(ctx context.Context, mt catalog.MissingTrack) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO missing_tracks (
			name,
			name_lower,
			artist_name,
			artist_name_lower,
			album_name,
			album_name_lower,
			duration,
			created_at,
			updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, DATETIME('now'), DATETIME('now'))`,
		mt.Name, catalog.Normalize(mt.Name),
		mt.ArtistName, catalog.Normalize(mt.ArtistName),
		mt.AlbumName, catalog.Normalize(mt.AlbumName),
		mt.Duration)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CleanOldMissingTracks deletes missing tracks older than 14 days, at
// most 10000 per call, and returns the number deleted.
func (s *SqliteStore) CleanOldMissingTracks(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM missing_tracks
		WHERE id IN (
			SELECT id FROM missing_tracks
			WHERE created_at < DATETIME('now', '-14 day')
			LIMIT 10000
		)`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Begin starts a transaction for multi-write flows.
func (s *SqliteStore) Begin(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// Close closes the underlying connection pool.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}
