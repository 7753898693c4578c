package surface

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Format is one of the two shared-memory pixel formats the core supports
// (spec.md §6; this expansion, F.4.2, drops every other SHM format the
// real protocol enumerates since this core's renderer bridge only ever
// needs these two).
type Format uint32

const (
	FormatARGB8888 Format = iota
	FormatXRGB8888
)

func (f Format) bytesPerPixel() int32 { return 4 }

// Pool is one client's wl_shm_pool: a single POSIX shared-memory region,
// memory-mapped read-only, out of which Buffer values are carved as
// bounds-checked sub-slices.
type Pool struct {
	fd   int
	size int32
	data []byte
}

// NewPool maps fd (already sized to size by the client, per the
// wl_shm_pool protocol) read-only and shared.
func NewPool(fd int, size int32) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("surface: shm pool size must be positive, got %d", size)
	}
	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("surface: mmap shm pool: %w", err)
	}
	return &Pool{fd: fd, size: size, data: data}, nil
}

// Resize re-maps the pool to a new (larger) size, as wl_shm_pool.resize
// requires; shrinking is rejected since the protocol forbids it.
func (p *Pool) Resize(newSize int32) error {
	if newSize < p.size {
		return fmt.Errorf("surface: shm pool cannot shrink (%d -> %d)", p.size, newSize)
	}
	if err := unix.Munmap(p.data); err != nil {
		return fmt.Errorf("surface: munmap during resize: %w", err)
	}
	data, err := unix.Mmap(p.fd, 0, int(newSize), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("surface: remap shm pool: %w", err)
	}
	p.data = data
	p.size = newSize
	return nil
}

// Close releases the pool's mapping. The backing fd is owned by the
// caller and is not closed here.
func (p *Pool) Close() error {
	if p.data == nil {
		return nil
	}
	err := unix.Munmap(p.data)
	p.data = nil
	return err
}

// CreateBuffer validates and carves out a Buffer view over the pool's
// mapped region. A bounds violation is a protocol error per spec.md §7.
func (p *Pool) CreateBuffer(offset, width, height, stride int32, format Format) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("surface: buffer dimensions must be positive, got %dx%d", width, height)
	}
	minStride := width * format.bytesPerPixel()
	if stride < minStride {
		return nil, fmt.Errorf("surface: stride %d too small for width %d (need >= %d)", stride, width, minStride)
	}
	if offset < 0 {
		return nil, fmt.Errorf("surface: negative buffer offset %d", offset)
	}
	end := offset + stride*height
	if end > p.size {
		return nil, fmt.Errorf("surface: buffer [%d:%d] exceeds pool size %d", offset, end, p.size)
	}
	return &Buffer{
		data:   p.data[offset:end],
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
	}, nil
}

// Buffer is a client-supplied pixel source attached to a surface. Zero
// value is never valid; Buffer is only constructed by Pool.CreateBuffer.
type Buffer struct {
	data   []byte
	Width  int32
	Height int32
	Stride int32
	Format Format
}

// Pixels returns the buffer's backing bytes. The caller must not retain
// this slice past the buffer's release, since the underlying pool
// mapping may be resized or unmapped.
func (b *Buffer) Pixels() []byte { return b.data }
