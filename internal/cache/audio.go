package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/newsbreeze/internal/logger"
)

// AudioCache keeps synthesized clips in a local SQLite file so that
// replaying a headline does not hit the speech backend again. Entries
// expire after the configured TTL; the app works fine without it.
type AudioCache struct {
	db     *sqlx.DB
	ttl    time.Duration
	logger *logger.Log
}

type clipRow struct {
	CacheKey  string    `db:"cache_key"`
	Voice     string    `db:"voice"`
	Format    string    `db:"format"`
	Audio     []byte    `db:"audio"`
	CreatedAt time.Time `db:"created_at"`
}

func NewAudioCache(path string, ttl time.Duration) (*AudioCache, error) {
	if path == "" {
		path = "newsbreeze.db"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	c := &AudioCache{db: db, ttl: ttl, logger: logger.New()}
	if err := c.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	c.logger.Info(fmt.Sprintf("audio cache ready at %s (ttl %s)", path, ttl))
	return c, nil
}

func (c *AudioCache) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audio_clips (
		cache_key TEXT PRIMARY KEY,
		voice TEXT NOT NULL,
		format TEXT NOT NULL,
		audio BLOB NOT NULL,
		created_at DATETIME NOT NULL
	);`

	if _, err := c.db.Exec(schema); err != nil {
		return err
	}

	index := `CREATE INDEX IF NOT EXISTS idx_audio_clips_created_at ON audio_clips(created_at);`
	_, err := c.db.Exec(index)
	return err
}

// Get returns a cached clip if present and not expired. Expired rows
// are deleted on the way out.
func (c *AudioCache) Get(key string) ([]byte, string, bool) {
	var row clipRow
	err := c.db.Get(&row, `SELECT cache_key, voice, format, audio, created_at FROM audio_clips WHERE cache_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", false
	}
	if err != nil {
		c.logger.WithError(err).Warn("audio cache lookup failed")
		return nil, "", false
	}

	if time.Since(row.CreatedAt) > c.ttl {
		if _, err := c.db.Exec(`DELETE FROM audio_clips WHERE cache_key = ?`, key); err != nil {
			c.logger.WithError(err).Warn("failed to delete expired clip")
		}
		return nil, "", false
	}

	return row.Audio, row.Format, true
}

func (c *AudioCache) Put(key, voice, format string, audio []byte) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO audio_clips (cache_key, voice, format, audio, created_at) VALUES (?, ?, ?, ?, ?)`,
		key, voice, format, audio, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store clip: %w", err)
	}
	return nil
}

// Purge removes all expired clips.
func (c *AudioCache) Purge() error {
	cutoff := time.Now().UTC().Add(-c.ttl)
	res, err := c.db.Exec(`DELETE FROM audio_clips WHERE created_at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge clips: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.logger.Debug(fmt.Sprintf("purged %d expired clips", n))
	}
	return nil
}

func (c *AudioCache) Close() error {
	return c.db.Close()
}
