package random_test

import (
	"sync"
	"testing"

	"github.com/aretw0/tgquest/pkg/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocked_IndexInRange(t *testing.T) {
	src, err := random.New()
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		k := src.Index(3)
		assert.GreaterOrEqual(t, k, 0)
		assert.Less(t, k, 3)
		seen[k] = true
	}
	assert.Len(t, seen, 3, "500 draws over 3 slots should hit every slot")
}

func TestLocked_SeededIsReproducible(t *testing.T) {
	a := random.NewSeeded(1, 2)
	b := random.NewSeeded(1, 2)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Index(10), b.Index(10))
	}
}

func TestLocked_ConcurrentUse(t *testing.T) {
	src := random.NewSeeded(7, 7)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = src.Index(5)
			}
		}()
	}
	wg.Wait()
}

func TestFixed(t *testing.T) {
	assert.Equal(t, 2, random.Fixed(2).Index(3))
	assert.Equal(t, 2, random.Fixed(9).Index(3))
	assert.Equal(t, 0, random.Fixed(-1).Index(3))
}
