// Package merge joins the extracted text of several documents.
package merge

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Separator goes between the texts of consecutive documents.
const Separator = "\n\n"

// ExtractFunc produces the text of one source.
type ExtractFunc[S any] func(ctx context.Context, source S, stripFieldInstructions bool) (string, error)

// Merge extracts every source in order and joins the results with
// Separator. The first failure aborts the merge; later sources are not
// touched and no partial text is returned.
func Merge[S any](ctx context.Context, sources []S, fn ExtractFunc[S], stripFieldInstructions bool) (string, error) {
	var out strings.Builder
	for i, src := range sources {
		text, err := extractOne(ctx, fn, src, stripFieldInstructions)
		if err != nil {
			return "", fmt.Errorf("merge source %d: %w", i, err)
		}
		out.WriteString(text)
		out.WriteString(Separator)
	}
	return strings.TrimSpace(out.String()), nil
}

// MergeConcurrent extracts up to limit sources at a time (no limit when
// limit <= 0) and returns exactly what Merge would: texts joined in input
// order, or the error of the lowest-indexed failing source. Once a source
// fails, sources after it that have not started are skipped.
func MergeConcurrent[S any](ctx context.Context, sources []S, fn ExtractFunc[S], stripFieldInstructions bool, limit int) (string, error) {
	texts := make([]string, len(sources))
	errs := make([]error, len(sources))

	var firstFailed atomic.Int64
	firstFailed.Store(int64(len(sources)))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if int64(i) > firstFailed.Load() {
				return nil
			}
			text, err := extractOne(ctx, fn, src, stripFieldInstructions)
			if err != nil {
				errs[i] = err
				lowerTo(&firstFailed, int64(i))
				return nil
			}
			texts[i] = text
			return nil
		})
	}
	_ = g.Wait()

	if i := int(firstFailed.Load()); i < len(sources) {
		return "", fmt.Errorf("merge source %d: %w", i, errs[i])
	}
	return Join(texts), nil
}

// Join concatenates already extracted texts the way Merge does.
func Join(texts []string) string {
	var out strings.Builder
	for _, text := range texts {
		out.WriteString(text)
		out.WriteString(Separator)
	}
	return strings.TrimSpace(out.String())
}

func extractOne[S any](ctx context.Context, fn ExtractFunc[S], src S, strip bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fn(ctx, src, strip)
}

func lowerTo(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if n >= cur || v.CompareAndSwap(cur, n) {
			return
		}
	}
}
