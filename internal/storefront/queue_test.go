package storefront

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"furniro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDispatcher_RunsInOrder(t *testing.T) {
	d := NewDispatcher(2, time.Second)
	defer d.Close()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.True(t, d.Enqueue("step", func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}))
	}
	d.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestDispatcher_FailuresDoNotStopWorker(t *testing.T) {
	d := NewDispatcher(4, time.Second)
	defer d.Close()

	var ran atomic.Int32
	d.Enqueue("fail", func(context.Context) error { return errors.New("boom") })
	d.Enqueue("panic", func(context.Context) error { panic("boom") })
	d.Enqueue("ok", func(context.Context) error {
		ran.Add(1)
		return nil
	})
	d.Wait()
	assert.EqualValues(t, 1, ran.Load())
}

func TestDispatcher_TaskTimeout(t *testing.T) {
	d := NewDispatcher(1, 20*time.Millisecond)
	defer d.Close()

	var deadline atomic.Bool
	d.Enqueue("slow", func(ctx context.Context) error {
		<-ctx.Done()
		deadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})
	d.Wait()
	assert.True(t, deadline.Load())
}

func TestDispatcher_CloseDrainsQueue(t *testing.T) {
	d := NewDispatcher(8, time.Second)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		d.Enqueue("task", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	d.Close()
	assert.EqualValues(t, 5, ran.Load())
	assert.False(t, d.Enqueue("late", func(context.Context) error { return nil }))
	d.Close()
}

func TestDispatcher_EnqueueWhileWaiting(t *testing.T) {
	d := NewDispatcher(4, time.Second)
	defer d.Close()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d.Enqueue("task", func(context.Context) error {
					ran.Add(1)
					return nil
				})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d.Wait()
			}
		}()
	}
	wg.Wait()
	d.Wait()
	assert.EqualValues(t, 400, ran.Load())
}

func TestNotifier_AutoDismiss(t *testing.T) {
	var shown []Notification
	n := NewNotifier(30*time.Millisecond, func(note Notification) { shown = append(shown, note) })

	n.Success("Login successful! Welcome back.")
	note, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, LevelSuccess, note.Level)
	require.Len(t, shown, 1)

	assert.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestNotifier_NewerMessageRestartsTimer(t *testing.T) {
	n := NewNotifier(200*time.Millisecond, nil)

	n.Info("first")
	time.Sleep(120 * time.Millisecond)
	n.Error("second")
	time.Sleep(120 * time.Millisecond)

	note, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "second", note.Message)

	n.Dismiss()
	_, ok = n.Current()
	assert.False(t, ok)
}

func TestNotifier_DefaultTTL(t *testing.T) {
	n := NewNotifier(0, nil)
	assert.Equal(t, 3*time.Second, n.ttl)
}

func TestProductMemo_CachesPerFilter(t *testing.T) {
	m := newProductMemo(ProductCacheTTL)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	calls := 0
	fetch := func(_ context.Context, f models.ProductFilter) ([]models.Product, error) {
		calls++
		return []models.Product{{ID: primitive.NewObjectID(), Category: f.Category}}, nil
	}
	ctx := context.Background()

	_, err := m.get(ctx, models.ProductFilter{Category: "Sofa"}, fetch)
	require.NoError(t, err)
	_, err = m.get(ctx, models.ProductFilter{Category: "Sofa"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = m.get(ctx, models.ProductFilter{Category: "Chair"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	now = now.Add(31 * time.Minute)
	_, err = m.get(ctx, models.ProductFilter{Category: "Sofa"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	m.invalidate()
	_, err = m.get(ctx, models.ProductFilter{Category: "Chair"}, fetch)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestProductMemo_ErrorsAreNotCached(t *testing.T) {
	m := newProductMemo(ProductCacheTTL)
	fail := true
	fetch := func(context.Context, models.ProductFilter) ([]models.Product, error) {
		if fail {
			return nil, errors.New("down")
		}
		return []models.Product{{Name: "Asgaard"}}, nil
	}

	_, err := m.get(context.Background(), models.ProductFilter{}, fetch)
	require.Error(t, err)

	fail = false
	products, err := m.get(context.Background(), models.ProductFilter{}, fetch)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestProductMemo_NewRequestCancelsInflight(t *testing.T) {
	m := newProductMemo(ProductCacheTTL)
	started := make(chan struct{})

	slow := func(ctx context.Context, _ models.ProductFilter) ([]models.Product, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	fast := func(context.Context, models.ProductFilter) ([]models.Product, error) {
		return []models.Product{{Name: "Lolito"}}, nil
	}

	errc := make(chan error, 1)
	go func() {
		_, err := m.get(context.Background(), models.ProductFilter{Category: "Sofa"}, slow)
		errc <- err
	}()
	<-started

	products, err := m.get(context.Background(), models.ProductFilter{Category: "Chair"}, fast)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("la requête précédente n'a pas été annulée")
	}
}
