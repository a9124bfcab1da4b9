package merge_test

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/docxmerge/internal/docx"
	"github.com/dgallion1/docxmerge/internal/extract"
	"github.com/dgallion1/docxmerge/internal/merge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestDocx writes a package with a single paragraph holding text.
func createTestDocx(t *testing.T, text string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create(docx.MainPart)
	require.NoError(t, err)
	_, err = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:r>
        <w:t>%s</w:t>
      </w:r>
    </w:p>
  </w:body>
</w:document>`, text)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func extractPath(_ context.Context, path string, strip bool) (string, error) {
	return docx.ExtractFile(path, strip)
}

// fake maps a source name to its text; names starting with "fail" error out.
type fake struct {
	calls atomic.Int32
	delay map[string]time.Duration
}

func (f *fake) extract(ctx context.Context, src string, strip bool) (string, error) {
	f.calls.Add(1)
	if d := f.delay[src]; d > 0 {
		time.Sleep(d)
	}
	if strings.HasPrefix(src, "fail") {
		return "", extract.NewError(extract.KindMalformedMarkup, src, errors.New("boom"))
	}
	if strip {
		return strings.ToUpper(src), nil
	}
	return src, nil
}

func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("two one-run documents", func(t *testing.T) {
		t.Parallel()

		a := createTestDocx(t, "A.")
		b := createTestDocx(t, "B.")

		got, err := merge.Merge(context.Background(), []string{a, b}, extractPath, false)
		require.NoError(t, err)
		assert.Equal(t, "A.\n\nB.", got)
	})

	t.Run("equals joined single extractions", func(t *testing.T) {
		t.Parallel()

		a := createTestDocx(t, "First document text.")
		b := createTestDocx(t, "Second document text.")
		for _, strip := range []bool{true, false} {
			ea, err := docx.ExtractFile(a, strip)
			require.NoError(t, err)
			eb, err := docx.ExtractFile(b, strip)
			require.NoError(t, err)

			got, err := merge.Merge(context.Background(), []string{a, b}, extractPath, strip)
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(ea+"\n\n"+eb), got)
		}
	})

	t.Run("preserves order and duplicates", func(t *testing.T) {
		t.Parallel()

		f := &fake{}
		got, err := merge.Merge(context.Background(), []string{"c", "a", "b", "a"}, f.extract, false)
		require.NoError(t, err)
		assert.Equal(t, "c\n\na\n\nb\n\na", got)
	})

	t.Run("passes the strip flag through", func(t *testing.T) {
		t.Parallel()

		f := &fake{}
		got, err := merge.Merge(context.Background(), []string{"x", "y"}, f.extract, true)
		require.NoError(t, err)
		assert.Equal(t, "X\n\nY", got)
	})

	t.Run("no sources", func(t *testing.T) {
		t.Parallel()

		f := &fake{}
		got, err := merge.Merge(context.Background(), nil, f.extract, false)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty documents do not leave outer separators", func(t *testing.T) {
		t.Parallel()

		f := &fake{}
		got, err := merge.Merge(context.Background(), []string{"", "mid", ""}, f.extract, false)
		require.NoError(t, err)
		assert.Equal(t, "mid", got)
	})

	t.Run("fails fast", func(t *testing.T) {
		t.Parallel()

		f := &fake{}
		got, err := merge.Merge(context.Background(), []string{"a", "fail-1", "b", "fail-2"}, f.extract, false)
		require.Error(t, err)
		assert.Empty(t, got)
		assert.ErrorIs(t, err, extract.ErrMalformedMarkup)
		assert.Contains(t, err.Error(), "fail-1")
		assert.Contains(t, err.Error(), "merge source 1")
		assert.EqualValues(t, 2, f.calls.Load())
	})

	t.Run("invalid package aborts the merge", func(t *testing.T) {
		t.Parallel()

		good := createTestDocx(t, "ok")
		bad := filepath.Join(t.TempDir(), "invalid.docx")
		require.NoError(t, os.WriteFile(bad, []byte("Not a valid docx file"), 0o644))

		_, err := merge.Merge(context.Background(), []string{good, bad}, extractPath, false)
		require.Error(t, err)
		assert.Equal(t, extract.KindArchiveEntryNotFound, extract.KindOf(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &fake{}
		_, err := merge.Merge(ctx, []string{"a"}, f.extract, false)
		assert.ErrorIs(t, err, context.Canceled)
		assert.EqualValues(t, 0, f.calls.Load())
	})
}

func TestMergeConcurrent(t *testing.T) {
	t.Parallel()

	t.Run("matches sequential output", func(t *testing.T) {
		t.Parallel()

		sources := []string{"one", "two", "three", "four", "five", "six"}
		f := &fake{delay: map[string]time.Duration{"one": 20 * time.Millisecond, "three": 10 * time.Millisecond}}

		want, err := merge.Merge(context.Background(), sources, f.extract, false)
		require.NoError(t, err)

		for _, limit := range []int{0, 1, 2, 8} {
			got, err := merge.MergeConcurrent(context.Background(), sources, f.extract, false, limit)
			require.NoError(t, err)
			assert.Equal(t, want, got, "limit %d", limit)
		}
	})

	t.Run("reports the lowest failing source", func(t *testing.T) {
		t.Parallel()

		// fail-late finishes first, but fail-early comes first in order.
		sources := []string{"a", "fail-early", "b", "fail-late"}
		f := &fake{delay: map[string]time.Duration{"fail-early": 30 * time.Millisecond}}

		_, seqErr := merge.Merge(context.Background(), sources, (&fake{}).extract, false)
		require.Error(t, seqErr)

		_, err := merge.MergeConcurrent(context.Background(), sources, f.extract, false, 4)
		require.Error(t, err)
		assert.Equal(t, seqErr.Error(), err.Error())
		assert.Contains(t, err.Error(), "fail-early")
	})

	t.Run("real packages", func(t *testing.T) {
		t.Parallel()

		paths := []string{createTestDocx(t, "A."), createTestDocx(t, "B."), createTestDocx(t, "C.")}
		got, err := merge.MergeConcurrent(context.Background(), paths, extractPath, true, 2)
		require.NoError(t, err)
		assert.Equal(t, "A.\n\nB.\n\nC.", got)
	})
}

func TestJoin(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\n\nb", merge.Join([]string{"a", "b"}))
	assert.Equal(t, "", merge.Join(nil))
}
