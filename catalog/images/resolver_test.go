package images

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestResolver(t *testing.T, handler http.Handler) (*Resolver, *CacheIndex, *FailedSet, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	cache, err := LoadCacheIndex(dir)
	require.NoError(t, err)
	failed, err := LoadFailedSet(filepath.Join(dir, "failedParts.txt"))
	require.NoError(t, err)

	return NewResolver(server.Client(), server.URL, cache, failed, testLogger()), cache, failed, server
}

func TestResolveDownloadsFirstHit(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		// Only the front_11 variant exists for this part.
		if strings.HasSuffix(r.URL.Path, "_ABC123_front_11.jpg") {
			fmt.Fprint(w, "jpegbytes")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	resolver, cache, _, _ := newTestResolver(t, handler)

	name := resolver.Resolve(context.Background(), Part{
		LCSCPart:     "C25804",
		DatasheetURL: "https://datasheet.lcsc.com/lcsc/1811021045_ABC123.pdf",
	})

	assert.Equal(t, "C25804.jpg", name)
	assert.Equal(t, int32(4), atomic.LoadInt32(&requests)) // stopped at the fourth variant
	assert.True(t, cache.Has("C25804.jpg"))

	data, err := os.ReadFile(filepath.Join(cache.Dir(), "C25804.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))
}

func TestResolveExhaustionIsCachedForever(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	resolver, _, failed, _ := newTestResolver(t, handler)
	part := Part{LCSCPart: "C99999", DatasheetURL: "x_NOPE.pdf"}

	name := resolver.Resolve(context.Background(), part)
	assert.Equal(t, DefaultImage, name)
	assert.Equal(t, int32(7), atomic.LoadInt32(&requests)) // every variant probed once
	assert.True(t, failed.Has("C99999.jpg"))

	// Second resolution must not touch the network at all.
	name = resolver.Resolve(context.Background(), part)
	assert.Equal(t, DefaultImage, name)
	assert.Equal(t, int32(7), atomic.LoadInt32(&requests))
}

func TestResolveCanceledContextLeavesFailedSetAlone(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, "jpegbytes")
	})

	resolver, cache, failed, _ := newTestResolver(t, handler)
	part := Part{LCSCPart: "C777", DatasheetURL: "1811021045_XYZ.pdf"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	name := resolver.Resolve(ctx, part)
	assert.Equal(t, DefaultImage, name)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests)) // no variant was actually tried
	assert.False(t, failed.Has("C777.jpg"))

	// An interrupted run must not block a later one from succeeding.
	name = resolver.Resolve(context.Background(), part)
	assert.Equal(t, "C777.jpg", name)
	assert.True(t, cache.Has("C777.jpg"))
}

func TestResolveCacheHitSkipsNetwork(t *testing.T) {
	var requests int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	})

	resolver, cache, _, _ := newTestResolver(t, handler)
	require.NoError(t, cache.Save("C1234.jpg", []byte("cached")))

	name := resolver.Resolve(context.Background(), Part{LCSCPart: "C1234"})

	assert.Equal(t, "C1234.jpg", name)
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))
}

func TestLoadCacheIndexWritesPlaceholder(t *testing.T) {
	dir := t.TempDir()

	cache, err := LoadCacheIndex(dir)
	require.NoError(t, err)
	assert.True(t, cache.Has(DefaultImage))

	data, err := os.ReadFile(filepath.Join(dir, DefaultImage))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	// A placeholder already on disk is kept as-is.
	custom := []byte("custom")
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultImage), custom, 0o644))
	_, err = LoadCacheIndex(dir)
	require.NoError(t, err)
	kept, err := os.ReadFile(filepath.Join(dir, DefaultImage))
	require.NoError(t, err)
	assert.Equal(t, custom, kept)
}

func TestFailedSetSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failedParts.txt")

	failed, err := LoadFailedSet(path)
	require.NoError(t, err)
	require.NoError(t, failed.Add("C1.jpg"))
	require.NoError(t, failed.Add("C2.jpg"))

	reloaded, err := LoadFailedSet(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Has("C1.jpg"))
	assert.True(t, reloaded.Has("C2.jpg"))
	assert.Equal(t, 2, reloaded.Len())

	require.NoError(t, reloaded.Clear())
	assert.False(t, reloaded.Has("C1.jpg"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeriveBasename(t *testing.T) {
	testCases := []struct {
		name     string
		part     Part
		expected string
	}{
		{
			name:     "Datasheet middle segment",
			part:     Part{LCSCPart: "C1", DatasheetURL: "1811021045_ABC123.pdf"},
			expected: "ABC123",
		},
		{
			name:     "Only the first underscore splits",
			part:     Part{LCSCPart: "C1", DatasheetURL: "20180914_Vendor_Part-X1.pdf"},
			expected: "Vendor_Part-X1",
		},
		{
			name: "No datasheet synthesizes from identifiers",
			part: Part{
				LCSCPart:     "C52717",
				Manufacturer: "Texas Instruments",
				MfrPart:      "NE555DR",
			},
			expected: "Texas Instruments-NE555DR_C52717",
		},
		{
			name:     "Blank datasheet synthesizes too",
			part:     Part{LCSCPart: "C9", Manufacturer: "M", MfrPart: "P", DatasheetURL: "   "},
			expected: "M-P_C9",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, deriveBasename(tc.part))
		})
	}
}
