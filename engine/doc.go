// SPDX-License-Identifier: EPL-2.0

/*
Package engine mixes several audio streams read from storage into one stereo
output.

Each stream lives in a slot. A slot owns a ring of decoded samples, the open
file, the decoded source and, for compressed formats, one decoder borrowed
from a fixed per-codec pool. Two goroutines share the slots:

  - The control goroutine starts and stops slots and calls Fill to move
    decoded audio into the rings and Reap to retire streams that have
    finished and drained. Run does both on a ticker. These calls serialize
    on the engine mutex.
  - The output goroutine calls MixFrame, usually through Read from an audio
    device pull callback. It pops one frame per active slot, applies the gain
    and sums with clamping. It never locks.

Starting a stream on a busy slot replaces what was playing. Play picks the
first idle slot and falls back to slot 0 when all are busy:

	st := storage.New(cardFs, flashFs)
	eng := engine.New(st, engine.Config{})
	go eng.Run(ctx, 0)

	if _, err := eng.Play("/bank1/01.mp3"); err != nil {
		log.Println(err)
	}

	player := otoCtx.NewPlayer(eng)

# Formats

WAV and AIFF are read directly. MP3, AAC (ADTS) and Ogg Vorbis borrow a
decoder from their pool and fail with ErrNoDecoder when the pool is empty.
M4A files go through the mp4 container parser, which feeds ADTS-wrapped
frames to an AAC decoder. Sources with more than two channels are folded to
mono.

Sample-rate conversion is not done: a stream whose rate differs from the
output rate plays at the wrong speed and a warning is logged.
*/
package engine
