package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otogelab/constprop/internal/domain/dedupe"
)

func TestSeenAndRecord(t *testing.T) {
	ctx := context.Background()
	d := dedupe.NewInMemoryDeduper()

	assert.False(t, d.SeenAndRecord(ctx, "a"))
	assert.True(t, d.SeenAndRecord(ctx, "a"))
	assert.False(t, d.SeenAndRecord(ctx, "b"))
	assert.Equal(t, int64(2), d.Size())
}

func TestWithInitialCapacity(t *testing.T) {
	d := dedupe.NewInMemoryDeduper(dedupe.WithInitialCapacity(64))
	assert.Equal(t, int64(0), d.Size())
}

func TestConcurrentRecording(t *testing.T) {
	ctx := context.Background()
	d := dedupe.NewInMemoryDeduper()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("id-%d", i))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(100), d.Size())
}
