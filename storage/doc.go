// SPDX-License-Identifier: EPL-2.0

/*
Package storage maps playback paths onto two filesystems: the removable
card and the onboard flash.

Paths that start with FlashPrefix resolve to the Flash device; every other
path resolves to Removable. Both devices are afero filesystems, so tests and
tools can mount in-memory trees while the player mounts host directories.

	st := storage.New(afero.NewMemMapFs(), afero.NewMemMapFs())
	h, err := st.Open("/flash/beep.wav")
	if err != nil {
		return err
	}
	defer h.Close()

A device carries a single lock. Open, Close, Stat, List and every read or seek
on a Handle take it, so a stream refill never interleaves with another file
operation on the same card.
*/
package storage
