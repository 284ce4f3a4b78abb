package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyLock_Serializes_Same_Key(t *testing.T) {
	req := require.New(t)
	locks := New()
	counter := 0
	var wg sync.WaitGroup

	// When 50 goroutines increment a counter under the same key
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("conversation")
			defer unlock()
			current := counter
			time.Sleep(time.Microsecond)
			counter = current + 1
		}()
	}
	wg.Wait()

	// Then no increment is lost
	req.Equal(50, counter)
	// And the entry has been released
	req.Equal(0, locks.Len())
}

func TestKeyLock_Different_Keys_Do_Not_Block(t *testing.T) {
	req := require.New(t)
	locks := New()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("lock on another key must not wait")
	}
}

func TestKeyLock_Unlock_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	locks := New()
	unlock := locks.Lock("a")
	unlock()
	unlock()
	req.Equal(0, locks.Len())

	// The key can be taken again
	unlock = locks.Lock("a")
	req.Equal(1, locks.Len())
	unlock()
}
