// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ik5/audtrig/audio"
	"github.com/ik5/audtrig/formats/aac"
	"github.com/ik5/audtrig/formats/aiff"
	"github.com/ik5/audtrig/formats/mp3"
	"github.com/ik5/audtrig/formats/mp4"
	"github.com/ik5/audtrig/formats/vorbis"
	"github.com/ik5/audtrig/formats/wav"
	"github.com/ik5/audtrig/storage"
)

func newProbeCommand(app *App) *cobra.Command {
	var frames int

	cmd := &cobra.Command{
		Use:   "probe FILE",
		Short: "Describe a file the way the player sees it",
		Long: `Probe classifies FILE, runs container discovery for M4A and lists the
first frames of AAC and M4A streams.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.NewStorage(app.cfg.Storage)
			return probe(app.Out, st, args[0], frames)
		},
	}

	cmd.Flags().IntVarP(&frames, "frames", "n", 5, "number of frames to list for AAC and M4A")

	return cmd
}

func probe(w io.Writer, st *storage.Storage, path string, listFrames int) error {
	format := audio.Classify(path)
	if format == audio.FormatUnsupported {
		return fmt.Errorf("%s: unsupported format", path)
	}

	h, err := st.Open(path)
	if err != nil {
		return err
	}
	defer h.Close()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "file\t%s\n", path)
	fmt.Fprintf(tw, "device\t%s\n", h.Device())
	fmt.Fprintf(tw, "size\t%d\n", h.Size())
	fmt.Fprintf(tw, "format\t%s\n", format)
	fmt.Fprintf(tw, "codec\t%s\n", format.Codec())

	switch format {
	case audio.FormatM4A:
		p, err := mp4.Open(h, h.Size())
		if err != nil {
			return fmt.Errorf("container: %w", err)
		}
		info := p.Track()
		fmt.Fprintf(tw, "sample rate\t%d\n", info.SampleRate)
		fmt.Fprintf(tw, "channels\t%d\n", info.Channels)
		fmt.Fprintf(tw, "samples\t%d\n", info.SampleCount)
		fmt.Fprintf(tw, "chunks\t%d\n", info.ChunkCount)
		fmt.Fprintf(tw, "mdat offset\t%d\n", p.MediaDataOffset())
		return listADTS(tw, p, listFrames)
	case audio.FormatAAC:
		return listADTS(tw, aac.NewADTSReader(h), listFrames)
	}

	var dec audio.Decoder
	switch format {
	case audio.FormatWAV:
		dec = wav.Decoder{}
	case audio.FormatAIFF:
		dec = aiff.Decoder{}
	case audio.FormatMP3:
		dec = mp3.NewDecoder()
	case audio.FormatOgg:
		dec = vorbis.NewDecoder()
	}

	src, err := dec.Decode(h)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	defer src.Close()

	fmt.Fprintf(tw, "sample rate\t%d\n", src.SampleRate())
	fmt.Fprintf(tw, "channels\t%d\n", src.Channels())

	return nil
}

func listADTS(w io.Writer, fs audio.FrameSource, limit int) error {
	buf := make([]byte, aac.MaxFrameSize)
	for i := range limit {
		n, err := fs.ReadNextFrame(buf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		hdr, err := aac.ParseHeader(buf[:n])
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		fmt.Fprintf(w, "frame %d\t%d bytes, %d Hz, %d ch\n", i, hdr.FrameLen, hdr.SampleRate(), hdr.Channels)
	}
	return nil
}
