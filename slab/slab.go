// Package slab hands out fixed-capacity uint32 scratch buffers backed by
// anonymous memory maps outside the Go heap.
package slab

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const ChunkSizeShift = 18
const ChunkSize = 1 << ChunkSizeShift

// Capacity is the number of values a single buffer holds.
const Capacity = ChunkSize / 4

type Chunk [ChunkSize]byte

func mmap() (*Chunk, error) {
	b, err := unix.Mmap(-1, 0, ChunkSize, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	return (*Chunk)(b), nil
}

func munmap(c *Chunk) error {
	return unix.Munmap(c[:])
}

type Pool struct {
	sync.Mutex
	Free       []*Chunk
	TotalAlloc int
	TotalFree  int
}

// Get returns an empty buffer with Capacity values of room. Appending past
// its capacity detaches the buffer from the pool.
func (p *Pool) Get() ([]uint32, error) {
	p.Lock()
	defer p.Unlock()
	var c *Chunk
	if n := len(p.Free); n > 0 {
		c = p.Free[n-1]
		p.Free[n-1] = nil
		p.Free = p.Free[:n-1]
		p.TotalFree -= ChunkSize
	} else {
		var err error
		if c, err = mmap(); err != nil {
			return nil, err
		}
	}
	p.TotalAlloc += ChunkSize
	return unsafe.Slice((*uint32)(unsafe.Pointer(c)), Capacity)[:0], nil
}

func (p *Pool) Put(buf []uint32) {
	if cap(buf) != Capacity {
		panic("slab: buffer not from pool")
	}
	c := (*Chunk)(unsafe.Pointer(unsafe.SliceData(buf)))
	p.Lock()
	defer p.Unlock()
	p.Free = append(p.Free, c)
	p.TotalAlloc -= ChunkSize
	p.TotalFree += ChunkSize
}

// Release unmaps every idle chunk.
func (p *Pool) Release() error {
	p.Lock()
	defer p.Unlock()
	for i, c := range p.Free {
		if err := munmap(c); err != nil {
			p.Free = p.Free[i:]
			return err
		}
		p.TotalFree -= ChunkSize
	}
	p.Free = nil
	return nil
}

func (p *Pool) Stat() (alloc, free int) {
	p.Lock()
	defer p.Unlock()
	return p.TotalAlloc, p.TotalFree
}
