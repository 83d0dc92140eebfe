// ABOUTME: Concurrency tests for dispatching through a shared resolver.
// ABOUTME: Runs parallel creates, lists and widget renders against a file-backed database.

package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/2389/panel/internal/definition"
	"github.com/2389/panel/internal/store"
	"github.com/2389/panel/panel"
)

func TestConcurrentDispatch(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "concurrent.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	def, err := definition.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	r := New(s, def).Resolver()
	ctx := context.Background()

	numWriters := 10
	numReaders := 10
	operationsPerGoroutine := 20
	var wg sync.WaitGroup
	var errorCount int32

	for i := 0; i < numWriters; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				_, err := r.CreateModel(ctx, "posts", panel.Params{"title": fmt.Sprintf("post %d-%d", id, j)})
				if err != nil {
					atomic.AddInt32(&errorCount, 1)
					t.Logf("create error: %v", err)
				}
			}
		}(i)
	}

	for i := 0; i < numReaders; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				if _, err := r.ListModel(ctx, "posts", panel.Params{"draw": j, "length": 10, "search": "post"}); err != nil {
					atomic.AddInt32(&errorCount, 1)
					t.Logf("list error: %v", err)
				}
				if _, ok := r.PageConfig("/dashboard/posts"); !ok {
					atomic.AddInt32(&errorCount, 1)
				}
			}
		}(i)
	}

	wg.Wait()

	if errorCount > 0 {
		t.Errorf("Expected 0 errors, got %d", errorCount)
	}

	res, err := r.GlobalActionModel(ctx, "posts", "count", nil)
	if err != nil {
		t.Fatalf("count error = %v", err)
	}
	if want := numWriters * operationsPerGoroutine; res.(map[string]any)["count"] != want {
		t.Errorf("Expected %d posts, got %v", want, res)
	}
}
