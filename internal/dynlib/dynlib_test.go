//go:build linux

package dynlib

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSearchPaths(t *testing.T) {
	require.Equal(t, []string{"/a", "/b/c"}, parseSearchPaths("/a::/b/c:", true))
	require.Empty(t, parseSearchPaths("", true))
	require.Contains(t, parseSearchPaths("", false), "/opt/rocm/lib")
}

func TestLoadLibraryPaths(t *testing.T) {
	dir := t.TempDir()
	confD := filepath.Join(dir, "ld.so.conf.d")
	require.NoError(t, os.Mkdir(confD, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(confD, "rocm.conf"), []byte("/opt/rocm-6.2.0/lib\n/opt/rocm-6.2.0/lib64\n"), 0644))
	conf := filepath.Join(dir, "ld.so.conf")
	require.NoError(t, os.WriteFile(conf, []byte(fmt.Sprintf("# comment\n/usr/local/lib\ninclude %s/*.conf\n\n", confD)), 0644))

	paths := loadLibraryPaths([]string{"/first"}, conf)
	require.Equal(t, []string{"/first", "/usr/local/lib", "/opt/rocm-6.2.0/lib", "/opt/rocm-6.2.0/lib64"}, paths)

	// Missing files are simply skipped.
	require.Equal(t, []string{"/first"}, loadLibraryPaths([]string{"/first"}, filepath.Join(dir, "missing.conf")))
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "libfake.so")
	require.NoError(t, os.WriteFile(libPath, []byte("not really a library"), 0644))

	saved := searchPaths
	defer func() { searchPaths = saved }()
	searchPaths = []string{filepath.Join(dir, "missing"), dir}

	got, found := Find("libfake.so")
	require.True(t, found)
	require.Equal(t, libPath, got)
	_, found = Find("libmilliways.so")
	require.False(t, found)

	// A file that isn't a shared library fails to open, and Open moves on to the next candidate.
	_, err := Open("libfake.so")
	require.Error(t, err)
	require.ErrorContains(t, err, "libfake.so")
}

// TestOpen uses the C library, which is always present in a linux system with glibc.
func TestOpen(t *testing.T) {
	lib, err := Open("libmilliways.so", "libc.so.6")
	require.NoError(t, err)
	require.Equal(t, "libc.so.6", lib.Name())
	fmt.Printf("Loaded %s\n", lib)

	sym, err := lib.Symbol("strlen")
	require.NoError(t, err)
	require.NotNil(t, sym)

	_, err = lib.Symbol("hipMilliways")
	require.Error(t, err)

	require.NoError(t, lib.Close())
	require.NoError(t, lib.Close()) // Closing twice is a no-op.
	_, err = lib.Symbol("strlen")
	require.Error(t, err)

	_, err = Open("libmilliways.so", "libheartofgold.so")
	require.ErrorContains(t, err, "libmilliways.so")
	require.ErrorContains(t, err, "libheartofgold.so")

	_, err = Open()
	require.Error(t, err)
}
