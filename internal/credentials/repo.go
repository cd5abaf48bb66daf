package credentials

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/gourmand-app/gourmand/internal/domain"
	"github.com/gourmand-app/gourmand/internal/logger"
	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/chacha20poly1305"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when the key has no stored value.
const ErrNotFound = errors.Sentinel("credential key not found")

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// Repo is the device-local secure key-value store backing the persisted
// credential cache. Values are sealed at rest with a key derived from the
// configured storage secret. The store is string-only and offers no
// multi-key atomicity; callers sequence their writes.
type Repo struct {
	log  zerolog.Logger
	db   *sql.DB
	aead cipher.AEAD
}

func NewRepo(log logger.Logger, cfg *domain.Config) (*Repo, error) {
	dir := cfg.Storage.Path
	if dir == "" {
		dir = cfg.ConfigPath
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "gourmand.db"))
	if err != nil {
		return nil, errors.Wrap(err, "could not open credential store")
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Wrap(err, "could not create credentials table")
	}

	key := sha256.Sum256([]byte(cfg.StorageSecret))
	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize credential cipher")
	}

	return &Repo{
		log:  log.With().Str("repo", "credentials").Logger(),
		db:   db,
		aead: aead,
	}, nil
}

func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	query, args, err := sq.Select("value").
		From("credentials").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return "", errors.Wrap(err, "could not build query")
	}

	var sealed []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&sealed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Wrap(err, "could not read credential %q", key)
	}

	value, err := r.open(sealed)
	if err != nil {
		return "", errors.Wrap(err, "could not unseal credential %q", key)
	}

	return value, nil
}

func (r *Repo) Set(ctx context.Context, key string, value string) error {
	sealed, err := r.seal(value)
	if err != nil {
		return errors.Wrap(err, "could not seal credential %q", key)
	}

	query, args, err := sq.Insert("credentials").
		Columns("key", "value").
		Values(key, sealed).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "could not build query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "could not write credential %q", key)
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete("credentials").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "could not build query")
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "could not delete credential %q", key)
	}

	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) Close() error {
	return r.db.Close()
}

// seal encrypts the value with a fresh nonce prepended to the ciphertext.
func (r *Repo) seal(value string) ([]byte, error) {
	nonce := make([]byte, r.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return r.aead.Seal(nonce, nonce, []byte(value), nil), nil
}

func (r *Repo) open(sealed []byte) (string, error) {
	if len(sealed) < r.aead.NonceSize() {
		return "", errors.New("sealed value too short")
	}
	nonce, ciphertext := sealed[:r.aead.NonceSize()], sealed[r.aead.NonceSize():]
	plain, err := r.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

var _ domain.CredentialRepo = (*Repo)(nil)
