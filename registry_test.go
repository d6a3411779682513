package notifyfwd

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryTakeOnce(t *testing.T) {
	r := NewRegistry()
	require.Nil(t, r.Take(1))

	calls := 0
	r.Register(1, func(string, uint32, ...any) { calls++ })
	require.NotNil(t, r.Get(1))
	require.NotNil(t, r.Get(1))

	h := r.Take(1)
	require.NotNil(t, h)
	h(PacketClose, 1)
	require.Equal(t, 1, calls)
	require.Nil(t, r.Take(1))
	require.Nil(t, r.Get(1))
}

func TestRegistryLastWriterWins(t *testing.T) {
	r := NewRegistry()
	var got string
	r.Register(3, func(string, uint32, ...any) { got = "first" })
	r.Register(3, func(string, uint32, ...any) { got = "second" })
	r.Take(3)(PacketClose, 3)
	require.Equal(t, "second", got)
}

func TestRegistryIgnoresNil(t *testing.T) {
	r := NewRegistry()
	r.Register(1, nil)
	require.Nil(t, r.Take(1))
}

func TestRegistryConcurrentTake(t *testing.T) {
	r := NewRegistry()
	var calls atomic.Int32
	r.Register(9, func(string, uint32, ...any) { calls.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h := r.Take(9); h != nil {
				h(PacketClose, 9)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, calls.Load())
}
