package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clintcan/lecturebench/internal/errkind"
)

func TestBarrierCompletesAtExpectedCount(t *testing.T) {
	b := NewBarrier(3)
	defer b.Close()

	go func() {
		b.Confirm("origin")
		time.Sleep(5 * time.Millisecond)
		b.Confirm("1")
		time.Sleep(5 * time.Millisecond)
		b.Confirm("2")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := b.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, result.Count)
	require.GreaterOrEqual(t, result.TotalDuration, time.Duration(0))
}

func TestBarrierMonotonicityT5(t *testing.T) {
	b := NewBarrier(2)
	defer b.Close()

	b.Confirm("origin")
	time.Sleep(10 * time.Millisecond)
	b.Confirm("1")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := b.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, result.Last.Sub(result.First), result.TotalDuration)
	require.GreaterOrEqual(t, result.TotalDuration, time.Duration(0))
}

func TestBarrierIncompleteOnDeadline(t *testing.T) {
	b := NewBarrier(5)
	defer b.Close()

	b.Confirm("origin")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	result, err := b.Await(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, errkind.BarrierIncomplete))
	require.Equal(t, 1, result.Count)
}

func TestBarrierCountsDuplicates(t *testing.T) {
	b := NewBarrier(2)
	defer b.Close()

	b.Confirm("origin")
	b.Confirm("origin")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := b.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, result.Count)
}
