// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

// Handle is an open playback file. Every operation takes the device lock,
// so the fill loop and other users of the same card never interleave.
type Handle struct {
	dev    *device
	device Device
	name   string
	f      afero.File
	size   int64
}

var (
	_ io.ReadSeekCloser = (*Handle)(nil)
	_ io.ReaderAt       = (*Handle)(nil)
)

func (h *Handle) Read(p []byte) (int, error) {
	h.dev.mu.Lock()
	defer h.dev.mu.Unlock()

	if h.f == nil {
		return 0, fs.ErrClosed
	}
	return h.f.Read(p)
}

func (h *Handle) ReadAt(p []byte, off int64) (int, error) {
	h.dev.mu.Lock()
	defer h.dev.mu.Unlock()

	if h.f == nil {
		return 0, fs.ErrClosed
	}
	return h.f.ReadAt(p, off)
}

func (h *Handle) Seek(offset int64, whence int) (int64, error) {
	h.dev.mu.Lock()
	defer h.dev.mu.Unlock()

	if h.f == nil {
		return 0, fs.ErrClosed
	}
	return h.f.Seek(offset, whence)
}

// Close is safe to call more than once. Reads and seeks after Close fail
// with fs.ErrClosed.
func (h *Handle) Close() error {
	h.dev.mu.Lock()
	defer h.dev.mu.Unlock()

	if h.f == nil {
		return nil
	}
	err := h.f.Close()
	h.f = nil
	if err != nil {
		return fmt.Errorf("closing %s: %w", h.name, err)
	}

	return nil
}

// Size returns the file size captured at open.
func (h *Handle) Size() int64 { return h.size }

// Name returns the path on the device.
func (h *Handle) Name() string { return h.name }

// Device returns the device the file lives on.
func (h *Handle) Device() Device { return h.device }
