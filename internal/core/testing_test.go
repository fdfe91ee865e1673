package core

import (
	"fmt"
	"sync"
	"testing"
)

func TestSyncBuffer_ConcurrentWrites(t *testing.T) {
	var buf SyncBuffer

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			fmt.Fprintf(&buf, "line %d\n", n)
		}(i)
	}
	wg.Wait()

	if got := len(buf.Lines()); got != 10 {
		t.Errorf("expected 10 lines, got %d", got)
	}
}

func TestSyncBuffer_Empty(t *testing.T) {
	var buf SyncBuffer

	if buf.Len() != 0 {
		t.Errorf("expected empty buffer, got %d bytes", buf.Len())
	}
	if buf.Lines() != nil {
		t.Errorf("expected no lines, got %q", buf.Lines())
	}
}
