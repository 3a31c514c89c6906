// SPDX-License-Identifier: EPL-2.0

package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Device names one of the two storage namespaces.
type Device int

const (
	Removable Device = iota
	Flash

	numDevices
)

func (d Device) String() string {
	switch d {
	case Removable:
		return "removable"
	case Flash:
		return "flash"
	default:
		return fmt.Sprintf("device(%d)", int(d))
	}
}

// FlashPrefix routes a path to the Flash device. Everything else goes to
// Removable.
const FlashPrefix = "/flash/"

// device is one filesystem and the lock that serializes access to it.
type device struct {
	fs afero.Fs
	mu sync.Mutex
}

// With runs fn while holding the device lock.
func (d *device) With(fn func(afero.Fs) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return fn(d.fs)
}

// Storage resolves playback paths to files on the removable card or the
// onboard flash. Each device has one lock; opening, closing, stat, listing
// and every read on a device happen under it.
type Storage struct {
	devices [numDevices]*device
	log     *slog.Logger
}

type Option func(*Storage)

func WithLogger(l *slog.Logger) Option {
	return func(s *Storage) { s.log = l }
}

// New builds a Storage over the given filesystems. A nil filesystem leaves
// that device unavailable.
func New(removable, flash afero.Fs, opts ...Option) *Storage {
	s := &Storage{log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "storage")

	if removable != nil {
		s.devices[Removable] = &device{fs: removable}
	}
	if flash != nil {
		s.devices[Flash] = &device{fs: flash}
	}

	return s
}

// NewFromRoots mounts two host directories. Flash is mounted read-only.
// An empty root leaves the device unavailable.
func NewFromRoots(removableRoot, flashRoot string, opts ...Option) *Storage {
	var removable, flash afero.Fs

	if removableRoot != "" {
		removable = afero.NewBasePathFs(afero.NewOsFs(), removableRoot)
	}
	if flashRoot != "" {
		flash = afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), flashRoot))
	}

	return New(removable, flash, opts...)
}

// Resolve splits a playback path into its device and the path on that device.
func Resolve(p string) (Device, string) {
	if strings.HasPrefix(p, FlashPrefix) {
		return Flash, "/" + strings.TrimPrefix(p, FlashPrefix)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return Removable, p
}

func (s *Storage) device(d Device) (*device, error) {
	if d < 0 || d >= numDevices || s.devices[d] == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, d)
	}
	return s.devices[d], nil
}

// With runs fn with exclusive access to a device's filesystem.
func (s *Storage) With(d Device, fn func(afero.Fs) error) error {
	dev, err := s.device(d)
	if err != nil {
		return err
	}
	return dev.With(fn)
}

// Open opens a file for playback.
func (s *Storage) Open(p string) (*Handle, error) {
	d, name := Resolve(p)
	dev, err := s.device(d)
	if err != nil {
		return nil, err
	}

	h := &Handle{dev: dev, device: d, name: name}
	err = dev.With(func(fsys afero.Fs) error {
		f, err := fsys.Open(name)
		if err != nil {
			return err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}
		if info.IsDir() {
			f.Close()
			return fs.ErrNotExist
		}
		h.f, h.size = f, info.Size()
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s on %s", ErrNotFound, name, d)
		}
		return nil, fmt.Errorf("opening %s on %s: %w", name, d, err)
	}

	s.log.Debug("opened", "device", d, "path", name, "size", h.size)

	return h, nil
}

// Exists reports whether p names a regular file.
func (s *Storage) Exists(p string) bool {
	d, name := Resolve(p)
	dev, err := s.device(d)
	if err != nil {
		return false
	}

	found := false
	_ = dev.With(func(fsys afero.Fs) error {
		info, err := fsys.Stat(name)
		found = err == nil && !info.IsDir()
		return nil
	})

	return found
}

// List returns the sorted names of the regular files in dir on device d.
func (s *Storage) List(d Device, dir string) ([]string, error) {
	dev, err := s.device(d)
	if err != nil {
		return nil, err
	}

	var names []string
	err = dev.With(func(fsys afero.Fs) error {
		infos, err := afero.ReadDir(fsys, path.Clean("/"+dir))
		if err != nil {
			return err
		}
		for _, info := range infos {
			if !info.IsDir() {
				names = append(names, info.Name())
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s on %s", ErrNotFound, dir, d)
		}
		return nil, fmt.Errorf("listing %s on %s: %w", dir, d, err)
	}

	sort.Strings(names)

	return names, nil
}

// Available reports whether device d is configured.
func (s *Storage) Available(d Device) bool {
	_, err := s.device(d)
	return err == nil
}
