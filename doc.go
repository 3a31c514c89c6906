// SPDX-License-Identifier: EPL-2.0

// Package audtrig is a trigger-driven audio player: it plays short clips from
// a removable card or onboard flash on command and mixes several of them in
// real time.
//
// The work is split across subpackages:
//   - audio: the Source interface, stream rings, decoder pools, format
//     classification and the mono down-mixer
//   - formats/wav, formats/aiff: raw PCM sources
//   - formats/mp3, formats/vorbis, formats/aac: pooled decoders
//   - formats/mp4: the M4A container parser that feeds AAC frames
//   - storage: the two storage devices and their locks
//   - engine: stream slots, the fill loop and the mixer
//   - output: the sound card and offline WAV renders
//   - config: settings from defaults, YAML and the environment
//
// # Quick Start
//
// Play two files at once on the sound card:
//
//	st := storage.NewFromRoots("/media/card", "/var/lib/audtrig/flash")
//	eng := engine.New(st, engine.Config{})
//	defer eng.Close()
//
//	dev, err := output.Open(eng, eng.SampleRate())
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	go eng.Run(ctx, 0)
//	eng.Play("/bank1/kick.wav")
//	eng.Play("/flash/voice/ready.m4a")
//
// # Offline Helpers
//
// DecodeToInt16 drains a single decoded source into memory and MixFiles
// mixes whole files into an interleaved stereo slice, which is handy in
// tests and tools:
//
//	mix, err := audtrig.MixFiles(st, engine.Config{}, "/a.wav", "/b.mp3")
//
// See the individual subpackages for more detailed documentation.
package audtrig
