// SPDX-License-Identifier: EPL-2.0

// Package output connects the mixer to a sink: the sound card through oto
// for live playback, or a WAV file for offline renders.
//
// Live playback hands the mixer to oto as an io.Reader. oto's audio thread
// pulls from it at the card's rate, so that thread is the mixer's output
// side and the caller only has to keep the control loop running.
package output
