// Package auth manages operator accounts: a sqlite users table, bcrypt
// password hashes and HS256 bearer tokens.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aretw0/minbar/pkg/core"
)

var (
	// ErrEmailTaken is returned by Register for an already registered address.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", core.ErrInvalidArgument)
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", core.ErrAuth)
	// ErrInvalidToken is returned by Verify for any token it refuses.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", core.ErrAuth)
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);`

// User is one operator account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Config configures the account service.
type Config struct {
	DBPath     string
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	Logger     *slog.Logger
	Now        func() time.Time
}

// DefaultTokenTTL is used when Config.TokenTTL is zero.
const DefaultTokenTTL = 24 * time.Hour

// Service registers, authenticates and issues tokens for operators.
type Service struct {
	db     *sql.DB
	secret []byte
	ttl    time.Duration
	cost   int
	logger *slog.Logger
	now    func() time.Time
}

// Open opens or creates the users database at cfg.DBPath.
func Open(cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: jwt secret is required", core.ErrInvalidArgument)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%w: db path is required", core.ErrInvalidArgument)
	}
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Service{
		db:     db,
		secret: cfg.Secret,
		ttl:    cfg.TokenTTL,
		cost:   cfg.BcryptCost,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTokenTTL
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and returns a token for it.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", core.ErrInvalidArgument)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("%w: hash password: %v", core.ErrInvalidArgument, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, string(hash), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	s.logger.Info("user registered", "email", email)
	return s.Issue(email)
}

// Login checks credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.logger.Warn("login rejected", "email", email)
		return "", ErrInvalidCredentials
	}
	return s.Issue(email)
}

// Users lists every account ordered by id.
func (s *Service) Users(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var created string
		if err := rows.Scan(&u.ID, &u.Email, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339, created)
		users = append(users, u)
	}
	return users, rows.Err()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
