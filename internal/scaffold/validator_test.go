package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckExisting(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(dir string)
		wantErr string
	}{
		{
			name:  "empty directory",
			setup: func(dir string) {},
		},
		{
			name: "unrelated files",
			setup: func(dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
			},
		},
		{
			name: "existing spoor.yml",
			setup: func(dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "spoor.yml"), []byte("version: '1.0'"), 0644))
			},
			wantErr: "spoor init --force",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(dir)

			err := CheckExisting(dir)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
