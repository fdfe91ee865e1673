package core

import (
	"strings"
	"sync"
)

// SyncBuffer is an io.Writer that several workers may write to at once.
// Tests use it to capture console and log output.
type SyncBuffer struct {
	mu   sync.Mutex
	data []byte
}

func (b *SyncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

func (b *SyncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Lines returns the captured output split on newlines, without the trailing empty line.
func (b *SyncBuffer) Lines() []string {
	out := strings.TrimSuffix(b.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
