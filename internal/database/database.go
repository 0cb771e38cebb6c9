package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the global database connection
var DB *sql.DB

// Config holds database configuration
type Config struct {
	Path string
}

// Open initializes the database connection and runs migrations
func Open(cfg Config) error {
	// Ensure directory exists
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	var err error
	DB, err = sql.Open("sqlite", cfg.Path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Run migrations
	if err := Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// Migrate runs all database migrations against DB. Exposed so tests can run
// the schema against an in-memory database.
func Migrate() error {
	// Create migrations table
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Run each migration
	for _, m := range migrations {
		if err := runMigration(m); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
	}

	return nil
}

type migration struct {
	name string
	up   string
}

func runMigration(m migration) error {
	// Check if already applied
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM migrations WHERE name = ?", m.name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Already applied
	}

	// Run migration
	if _, err := DB.Exec(m.up); err != nil {
		return err
	}

	// Record migration
	_, err = DB.Exec("INSERT INTO migrations (name) VALUES (?)", m.name)
	return err
}

var migrations = []migration{
	{
		name: "001_create_admin_users",
		up: `
			CREATE TABLE admin_users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE COLLATE NOCASE,
				name TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'editor',
				password_hash TEXT NOT NULL,
				password_salt TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				last_login_at DATETIME
			);
			CREATE INDEX idx_admin_users_email ON admin_users(email);
		`,
	},
	{
		name: "002_create_admin_sessions",
		up: `
			CREATE TABLE admin_sessions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				token_hash TEXT NOT NULL UNIQUE,
				role TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				expires_at DATETIME NOT NULL,
				last_seen_at DATETIME NOT NULL,
				user_agent TEXT,
				FOREIGN KEY (user_id) REFERENCES admin_users(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_admin_sessions_token_hash ON admin_sessions(token_hash);
			CREATE INDEX idx_admin_sessions_user_id ON admin_sessions(user_id);
			CREATE INDEX idx_admin_sessions_expires_at ON admin_sessions(expires_at);
		`,
	},
	{
		name: "003_create_login_rate_limits",
		up: `
			CREATE TABLE login_rate_limits (
				key TEXT PRIMARY KEY,
				count INTEGER NOT NULL DEFAULT 1,
				first_attempt_at DATETIME NOT NULL,
				blocked_until DATETIME
			);
		`,
	},
	{
		name: "004_create_categories",
		up: `
			CREATE TABLE categories (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				slug TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				description TEXT,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_categories_slug ON categories(slug);
		`,
	},
	{
		name: "005_create_posts",
		up: `
			CREATE TABLE posts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				slug TEXT NOT NULL UNIQUE,
				title TEXT NOT NULL,
				excerpt TEXT,
				content TEXT NOT NULL,
				category_id INTEGER,
				author_id INTEGER NOT NULL,
				status TEXT NOT NULL DEFAULT 'draft',
				published_at DATETIME,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL,
				FOREIGN KEY (author_id) REFERENCES admin_users(id) ON DELETE CASCADE
			);
			CREATE INDEX idx_posts_slug ON posts(slug);
			CREATE INDEX idx_posts_status ON posts(status);
			CREATE INDEX idx_posts_category_id ON posts(category_id);
		`,
	},
	{
		name: "006_create_media_files",
		up: `
			CREATE TABLE media_files (
				id TEXT PRIMARY KEY,
				original_name TEXT NOT NULL,
				stored_name TEXT NOT NULL UNIQUE,
				content_type TEXT NOT NULL,
				size_bytes INTEGER NOT NULL,
				uploaded_by INTEGER NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (uploaded_by) REFERENCES admin_users(id) ON DELETE CASCADE
			);
		`,
	},
	{
		name: "007_create_subscribers",
		up: `
			CREATE TABLE subscribers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				email TEXT NOT NULL UNIQUE COLLATE NOCASE,
				subscribed_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		name: "008_create_page_views",
		up: `
			CREATE TABLE page_views (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				path TEXT NOT NULL,
				referrer TEXT,
				day TEXT NOT NULL,
				created_at DATETIME DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX idx_page_views_path ON page_views(path);
			CREATE INDEX idx_page_views_day ON page_views(day);
		`,
	},
	{
		name: "009_create_audit_logs",
		up: `
			CREATE TABLE audit_logs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER,
				email TEXT,
				action TEXT NOT NULL,
				target TEXT,
				details TEXT,
				ip_address TEXT,
				FOREIGN KEY (user_id) REFERENCES admin_users(id) ON DELETE SET NULL
			);
			CREATE INDEX idx_audit_logs_timestamp ON audit_logs(timestamp);
			CREATE INDEX idx_audit_logs_action ON audit_logs(action);
		`,
	},
}
