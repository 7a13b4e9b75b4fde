package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testItem struct {
	ID int
}

func TestPushPop(t *testing.T) {
	q := New[testItem]()

	_, ok := q.Pop()
	assert.False(t, ok, "pop from empty queue reports false")

	q.Push(testItem{ID: 1}, testItem{ID: 2})
	assert.Equal(t, 2, q.Len())

	first, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 1, q.Len())
}

func TestDrainPreservesOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}

	items := q.Drain()
	assert.Len(t, items, 10)
	for i, v := range items {
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 0, q.Len())
}

func TestConcurrentProducers(t *testing.T) {
	q := New[int]()

	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, q.Len())
	assert.Len(t, q.Drain(), 800)
}
