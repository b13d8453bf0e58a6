package slab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/runlen/slab"
)

func TestPool(t *testing.T) {
	var p slab.Pool

	buf, err := p.Get()
	require.NoError(t, err)
	require.Len(t, buf, 0)
	require.Equal(t, slab.Capacity, cap(buf))

	for i := 0; i < slab.Capacity; i++ {
		buf = append(buf, uint32(i))
	}
	require.Equal(t, slab.Capacity, cap(buf))
	require.Equal(t, uint32(slab.Capacity-1), buf[slab.Capacity-1])

	alloc, free := p.Stat()
	require.Equal(t, slab.ChunkSize, alloc)
	require.Zero(t, free)

	first := &buf[0]
	p.Put(buf)
	alloc, free = p.Stat()
	require.Zero(t, alloc)
	require.Equal(t, slab.ChunkSize, free)

	again, err := p.Get()
	require.NoError(t, err)
	require.True(t, first == &again[:1][0])

	other, err := p.Get()
	require.NoError(t, err)
	require.False(t, first == &other[:1][0])
	alloc, _ = p.Stat()
	require.Equal(t, 2*slab.ChunkSize, alloc)

	p.Put(again)
	p.Put(other)
	require.NoError(t, p.Release())
	alloc, free = p.Stat()
	require.Zero(t, alloc)
	require.Zero(t, free)
	require.Empty(t, p.Free)
}

func TestPutForeign(t *testing.T) {
	var p slab.Pool
	require.Panics(t, func() {
		p.Put(make([]uint32, 10))
	})
}
