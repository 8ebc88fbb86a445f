package cli

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/typediagram/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	xdg := t.TempDir()

	tests := []struct {
		name string
		xdg  string
		want func() (string, error)
	}{
		{
			name: "XDG_CACHE_HOME",
			xdg:  xdg,
			want: func() (string, error) { return filepath.Join(xdg, appName), nil },
		},
		{
			name: "default",
			xdg:  "",
			want: cache.DefaultDir,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			want, err := tt.want()
			if err != nil {
				t.Skipf("no home directory: %v", err)
			}
			got, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if got != want {
				t.Errorf("cacheDir() = %q, want %q", got, want)
			}
			if filepath.Base(got) != appName {
				t.Errorf("cacheDir() = %q, want a %q directory", got, appName)
			}
		})
	}
}
