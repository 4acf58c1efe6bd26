package fileproc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depscope/depscope/pkg/analyzer"
)

func TestMapOrdered_PreservesInputOrder(t *testing.T) {
	items := make([]string, 50)
	for i := range items {
		items[i] = fmt.Sprintf("file%02d.py", i)
	}

	fn := func(_ context.Context, item string) (string, error) {
		// Jitter completion order.
		if strings.HasSuffix(item, "0.py") {
			time.Sleep(time.Millisecond)
		}
		return "r:" + item, nil
	}

	results, errs := MapOrdered(context.Background(), items, 8, fn)
	require.Nil(t, errs)
	require.Len(t, results, len(items))

	for i, r := range results {
		assert.Equal(t, "r:"+items[i], r)
	}
}

func TestMapOrdered_Reproducible(t *testing.T) {
	items := []string{"c.py", "a.py", "b.py"}
	fn := func(_ context.Context, item string) (string, error) {
		return item, nil
	}

	first, _ := MapOrdered(context.Background(), items, 4, fn)
	second, _ := MapOrdered(context.Background(), items, 4, fn)
	assert.Equal(t, first, second)
}

func TestMapOrdered_CollectsErrors(t *testing.T) {
	items := []string{"ok1.py", "bad.py", "ok2.py"}
	failure := errors.New("boom")

	fn := func(_ context.Context, item string) (string, error) {
		if item == "bad.py" {
			return "", failure
		}
		return item, nil
	}

	results, errs := MapOrdered(context.Background(), items, 2, fn)

	// Failed items are dropped from results, not zero-filled.
	assert.Equal(t, []string{"ok1.py", "ok2.py"}, results)
	require.NotNil(t, errs)
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, "bad.py", errs.Errors[0].Path)
	assert.ErrorIs(t, errs.Errors[0].Err, failure)
}

func TestMapOrdered_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	items := make([]string, 100)
	for i := range items {
		items[i] = fmt.Sprintf("f%d.py", i)
	}

	var processed atomic.Int32
	fn := func(_ context.Context, item string) (string, error) {
		if processed.Add(1) == 3 {
			cancel()
		}
		time.Sleep(time.Millisecond)
		return item, nil
	}

	results, errs := MapOrdered(ctx, items, 1, fn)

	// In-flight items finish, undispatched items are recorded as skipped.
	require.NotNil(t, errs)
	assert.Less(t, len(results), len(items))
	foundCanceled := false
	for _, pe := range errs.Errors {
		if errors.Is(pe.Err, context.Canceled) {
			foundCanceled = true
		}
	}
	assert.True(t, foundCanceled)
}

func TestMapOrdered_Empty(t *testing.T) {
	results, errs := MapOrdered(context.Background(), nil, 4, func(_ context.Context, s string) (int, error) {
		return 0, nil
	})
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestMapOrdered_Progress(t *testing.T) {
	var ticks atomic.Int32
	tracker := analyzer.NewTracker(func(_, _ int, _ string) {
		ticks.Add(1)
	})
	tracker.SetTotal(3)
	ctx := analyzer.WithTracker(context.Background(), tracker)

	items := []string{"a", "b", "c"}
	_, errs := MapOrdered(ctx, items, 2, func(_ context.Context, s string) (string, error) {
		return s, nil
	})
	require.Nil(t, errs)
	assert.Equal(t, int32(3), ticks.Load())
}

func TestMap_ReturnsAllResults(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	results, errs := Map(context.Background(), items, 2, func(_ context.Context, s string) (string, error) {
		return s, nil
	})
	require.Nil(t, errs)
	assert.ElementsMatch(t, items, results)
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no errors", errs.Error())

	errs.Add("a.py", errors.New("first"))
	assert.True(t, errs.HasErrors())
	assert.Equal(t, "a.py: first", errs.Error())

	errs.Add("b.py", errors.New("second"))
	assert.Contains(t, errs.Error(), "2 files failed")
}
