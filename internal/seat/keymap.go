package seat

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/bnema/wlcore/internal/seat/xkb"
)

// KeymapFile is a memfd-backed copy of the keymap text, ready to be
// passed as the fd argument of wl_keyboard.keymap (spec.md §4.4
// "Keymap handoff: an anonymous, sealed, read-only memory file
// carrying the keymap text, sized and shared the same way SHM buffers
// are"). Grounded on the same mmap-backed-file pattern as
// internal/surface/shm.go's Pool, the only other place in this
// codebase that hands a client a raw memory-backed fd.
type KeymapFile struct {
	FD   int
	Size int64
}

// NewKeymapFile serializes the default keymap text into a sealed,
// read-only anonymous file suitable for sending over the wire.
func NewKeymapFile() (*KeymapFile, error) {
	text := xkb.DefaultKeymapText()
	size := int64(len(text))

	fd, err := unix.MemfdCreate("wlcore-keymap", unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("seat: memfd_create keymap: %w", err)
	}
	if err := unix.Ftruncate(fd, size); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("seat: ftruncate keymap: %w", err)
	}

	data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("seat: mmap keymap: %w", err)
	}
	copy(data, text)
	if err := unix.Munmap(data); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("seat: munmap keymap: %w", err)
	}

	// Seal against growth, shrink, and writes: the keymap never changes
	// after being handed to a client.
	_, _, errno := unix.Syscall(unix.SYS_FCNTL, uintptr(fd), unix.F_ADD_SEALS,
		uintptr(unix.F_SEAL_SHRINK|unix.F_SEAL_GROW|unix.F_SEAL_WRITE|unix.F_SEAL_SEAL))
	if errno != 0 {
		unix.Close(fd)
		return nil, fmt.Errorf("seat: seal keymap fd: %w", errno)
	}

	return &KeymapFile{FD: fd, Size: size}, nil
}

// Close releases the underlying fd.
func (k *KeymapFile) Close() error {
	return unix.Close(k.FD)
}
