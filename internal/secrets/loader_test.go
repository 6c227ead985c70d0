package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dsnFile := filepath.Join(dir, "dsn")
	if err := os.WriteFile(dsnFile, []byte("  postgres://ranker@localhost/ranker\n"), 0o600); err != nil {
		t.Fatalf("write dsn file: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write empty file: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr bool
	}{
		{
			name: "file takes precedence",
			src:  Source{Name: "database dsn", Value: "inline", File: dsnFile},
			want: "postgres://ranker@localhost/ranker",
		},
		{
			name: "inline value",
			src:  Source{Value: "  file:ranker.db  "},
			want: "file:ranker.db",
		},
		{
			name:    "missing file",
			src:     Source{File: filepath.Join(dir, "missing")},
			wantErr: true,
		},
		{
			name:    "empty file",
			src:     Source{File: emptyFile, Optional: true},
			wantErr: true,
		},
		{
			name:    "required but unset",
			src:     Source{Name: "database dsn"},
			wantErr: true,
		},
		{
			name: "optional and unset",
			src:  Source{Optional: true},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Load(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
