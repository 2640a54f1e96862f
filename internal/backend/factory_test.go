package backend

import (
	"context"
	"path/filepath"
	"testing"

	"financas/internal/config"
	applog "financas/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil", nil, "", true},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"memory", &config.Config{DataBackend: "memory"}, MemoryBackend, false},
		{"sheets is gone", &config.Config{DataBackend: "sheets"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(applog.Discard())

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatal(err)
		}
		defer res.Cleanup()
		if err := res.Store.Ping(ctx); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "financas.db")
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
		if err != nil {
			t.Fatal(err)
		}
		defer res.Cleanup()
		cats, err := res.Store.ListCategories(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(cats) == 0 {
			t.Error("default categories should be seeded")
		}
	})

	t.Run("sqlite without path", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend}); err == nil {
			t.Fatal("expected error")
		}
	})
}
