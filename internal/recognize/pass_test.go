// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recognize

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/latex-ocr/pkg/types"
)

// fakeRecognizer returns canned LaTeX per image stem. Stems listed in errs
// fail, stems listed in panics panic.
type fakeRecognizer struct {
	outputs map[string]string
	errs    map[string]error
	panics  map[string]bool
	calls   []string
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) Recognize(_ context.Context, img Image) (string, error) {
	f.calls = append(f.calls, img.Stem)
	if f.panics[img.Stem] {
		panic("model exploded")
	}
	if err, ok := f.errs[img.Stem]; ok {
		return "", err
	}
	return f.outputs[img.Stem], nil
}

// memCache is an in-memory Cache.
type memCache struct {
	entries map[string]string
	failGet bool
}

func (m *memCache) Lookup(_ context.Context, key string) (string, bool, error) {
	if m.failGet {
		return "", false, errors.New("disk on fire")
	}
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Store(_ context.Context, key, _, latex string) error {
	m.entries[key] = latex
	return nil
}

func setupImages(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, n := range names {
		// Distinct sizes give each fixture distinct content.
		paths[i] = writePNG(t, dir, n, 8+i, 8)
	}
	return paths
}

func TestPass_IsolatesFailures(t *testing.T) {
	paths := setupImages(t, "a.png", "b.png", "c.png", "d.png")
	// Replace b.png with garbage so loading fails.
	require.NoError(t, os.WriteFile(paths[1], []byte("garbage"), 0o644))

	rec := &fakeRecognizer{
		outputs: map[string]string{"a": `x^2`, "c": `\alpha`, "d": "  y = mx + b\n"},
		errs:    map[string]error{"c": errors.New("decoder exception")},
	}
	var logBuf bytes.Buffer
	out := Pass(context.Background(), rec, paths, PassOptions{Logger: zerolog.New(&logBuf)})

	require.NoError(t, out.Err)
	require.Len(t, out.Formulas, 2)
	assert.Equal(t, types.Formula{SourcePath: paths[0], Stem: "a", LaTeX: "x^2"}, out.Formulas[0])
	assert.Equal(t, types.Formula{SourcePath: paths[3], Stem: "d", LaTeX: "y = mx + b"}, out.Formulas[1])

	require.Len(t, out.Failures, 2)
	assert.Equal(t, paths[1], out.Failures[0].SourcePath)
	assert.Equal(t, paths[2], out.Failures[1].SourcePath)
	assert.Contains(t, out.Failures[1].Reason, "decoder exception")

	// The recognizer is never called for an image that failed to load.
	assert.Equal(t, []string{"a", "c", "d"}, rec.calls)

	logs := logBuf.String()
	assert.Contains(t, logs, paths[1])
	assert.Contains(t, logs, "error recognizing image")
}

func TestPass_AllFail(t *testing.T) {
	paths := setupImages(t, "a.png", "b.png")
	rec := &fakeRecognizer{errs: map[string]error{
		"a": errors.New("bad"),
		"b": errors.New("bad"),
	}}

	out := Pass(context.Background(), rec, paths, PassOptions{Logger: zerolog.Nop()})
	assert.Empty(t, out.Formulas)
	assert.NotNil(t, out.Formulas)
	assert.Len(t, out.Failures, 2)
}

func TestTry(t *testing.T) {
	tests := []struct {
		name       string
		rec        *fakeRecognizer
		wantLaTeX  string
		wantReason string
	}{
		{
			name:      "success",
			rec:       &fakeRecognizer{outputs: map[string]string{"eq": `E=mc^2`}},
			wantLaTeX: `E=mc^2`,
		},
		{
			name:       "empty output is a failure",
			rec:        &fakeRecognizer{outputs: map[string]string{"eq": "   \n"}},
			wantReason: ErrEmptyResult.Error(),
		},
		{
			name:       "panic is recovered",
			rec:        &fakeRecognizer{panics: map[string]bool{"eq": true}},
			wantReason: "recognizer panicked: model exploded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := setupImages(t, "eq.png")[0]
			a := Try(context.Background(), tt.rec, path, PassOptions{Logger: zerolog.Nop()})
			if tt.wantReason != "" {
				require.Nil(t, a.Formula)
				require.NotNil(t, a.Failure)
				assert.Contains(t, a.Failure.Reason, tt.wantReason)
				return
			}
			require.Nil(t, a.Failure)
			require.NotNil(t, a.Formula)
			assert.Equal(t, tt.wantLaTeX, a.Formula.LaTeX)
			assert.Equal(t, "eq", a.Formula.Stem)
		})
	}
}

func TestPass_Cache(t *testing.T) {
	paths := setupImages(t, "a.png", "b.png")
	cache := &memCache{entries: map[string]string{}}
	rec := &fakeRecognizer{outputs: map[string]string{"a": "x", "b": "y"}}
	opts := PassOptions{Cache: cache, Logger: zerolog.Nop()}

	first := Pass(context.Background(), rec, paths, opts)
	assert.Equal(t, 0, first.CacheHits)
	assert.Len(t, cache.entries, 2)

	second := Pass(context.Background(), rec, paths, opts)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, first.Formulas, second.Formulas)
	assert.Equal(t, []string{"a", "b"}, rec.calls, "cached images are not recognized again")
}

func TestPass_CacheErrorDoesNotFailImage(t *testing.T) {
	paths := setupImages(t, "a.png")
	cache := &memCache{entries: map[string]string{}, failGet: true}
	rec := &fakeRecognizer{outputs: map[string]string{"a": "x"}}
	var logBuf bytes.Buffer

	out := Pass(context.Background(), rec, paths, PassOptions{Cache: cache, Logger: zerolog.New(&logBuf)})
	require.Len(t, out.Formulas, 1)
	assert.Contains(t, logBuf.String(), "cache lookup failed")
}

func TestPass_Cancelled(t *testing.T) {
	paths := setupImages(t, "a.png", "b.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &fakeRecognizer{outputs: map[string]string{"a": "x", "b": "y"}}
	out := Pass(ctx, rec, paths, PassOptions{Logger: zerolog.Nop()})
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestCacheKey(t *testing.T) {
	img := Image{Digest: strings.Repeat("a", 64)}
	base := CacheKey(img, "container:pix2tex:latest", types.PreprocessConfig{})

	assert.Equal(t, base, CacheKey(img, "container:pix2tex:latest", types.PreprocessConfig{}))
	assert.NotEqual(t, base, CacheKey(img, "http:http://localhost:8502", types.PreprocessConfig{}))
	assert.NotEqual(t, base, CacheKey(img, "container:pix2tex:latest", types.PreprocessConfig{Grayscale: true}))

	other := Image{Digest: strings.Repeat("b", 64)}
	assert.NotEqual(t, base, CacheKey(other, "container:pix2tex:latest", types.PreprocessConfig{}))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	long := strings.Repeat("α", 60)
	got := preview(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 53, len([]rune(got)))
}
