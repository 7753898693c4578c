package surface

import (
	"testing"

	"golang.org/x/sys/unix"
)

// newMemfd creates an anonymous memory-backed fd of the given size for
// exercising Pool against a real mmap-able descriptor, the same
// mechanism a real SHM pool arrives over the wire as.
func newMemfd(t *testing.T, size int) (fd int, cleanup func()) {
	t.Helper()
	memfd, err := unix.MemfdCreate("wlcore-test-pool", 0)
	if err != nil {
		t.Fatalf("memfd_create: %v", err)
	}
	if err := unix.Ftruncate(memfd, int64(size)); err != nil {
		unix.Close(memfd)
		t.Fatalf("ftruncate: %v", err)
	}
	return memfd, func() { unix.Close(memfd) }
}
