package backend

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"loanschedule/internal/config"
	applog "loanschedule/internal/log"
	"loanschedule/internal/store/file"
	"loanschedule/internal/store/memory"
	"loanschedule/internal/store/redisstore"
	"loanschedule/internal/store/sqlite"
)

func testFactory() Factory {
	return NewFactory(applog.New(applog.Config{Component: applog.ComponentStorage, Writer: &bytes.Buffer{}}))
}

func TestCreateBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, r *BackendResult)
	}{
		{
			name:   "file",
			config: Config{Type: FileBackend, SaveDir: filepath.Join(dir, "loan_data")},
			check: func(t *testing.T, r *BackendResult) {
				if _, ok := r.Store.(*file.Store); !ok {
					t.Fatalf("expected *file.Store, got %T", r.Store)
				}
			},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "loans.db")},
			check: func(t *testing.T, r *BackendResult) {
				if _, ok := r.Store.(*sqlite.Repository); !ok {
					t.Fatalf("expected *sqlite.Repository, got %T", r.Store)
				}
			},
		},
		{
			name:   "redis",
			config: Config{Type: RedisBackend, RedisAddr: mr.Addr(), Timeout: time.Second},
			check: func(t *testing.T, r *BackendResult) {
				if _, ok := r.Store.(*redisstore.Store); !ok {
					t.Fatalf("expected *redisstore.Store, got %T", r.Store)
				}
			},
		},
		{
			name:   "memory",
			config: Config{Type: MemoryBackend},
			check: func(t *testing.T, r *BackendResult) {
				if _, ok := r.Store.(*memory.Store); !ok {
					t.Fatalf("expected *memory.Store, got %T", r.Store)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := testFactory().CreateBackend(context.Background(), tt.config)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			tt.check(t, r)
			if err := r.Cleanup(); err != nil {
				t.Fatalf("cleanup: %v", err)
			}
		})
	}
}

func TestCreateBackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"unknown type", Config{Type: "sheets"}, "invalid backend type: sheets"},
		{"file without dir", Config{Type: FileBackend}, "save directory is required"},
		{"sqlite without path", Config{Type: SQLiteBackend}, "SQLite database path is required"},
		{"redis without addr", Config{Type: RedisBackend}, "redis address is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testFactory().CreateBackend(context.Background(), tt.config)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}

	app := &config.Config{
		DataBackend:    "redis",
		SaveDir:        "loan_data",
		RedisAddr:      "cache:6379",
		RedisDB:        4,
		RedisKeyPrefix: "x:",
		StoreTimeout:   3 * time.Second,
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != RedisBackend || cfg.RedisAddr != "cache:6379" || cfg.RedisDB != 4 || cfg.Timeout != 3*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	app.DataBackend = "postgres"
	if _, err := FromAppConfig(app); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestBackendTypes(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Errorf("sheets should not be valid")
	}
}
