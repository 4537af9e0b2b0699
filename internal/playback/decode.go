package playback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/desertthunder/sdos/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// Format is a container/codec the speaker output can decode.
type Format string

const (
	FormatUnknown Format = ""
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatFLAC    Format = "flac"
	FormatVorbis  Format = "vorbis"
	FormatM4A     Format = "m4a"
)

// DetectFormat sniffs the first bytes of data, then falls back to the content type and url extension.
func DetectFormat(data []byte, contentType, url string) Format {
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && string(data[8:12]) == "WAVE":
		return FormatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatVorbis
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return FormatM4A
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}

	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/mpeg", "audio/mp3":
			return FormatMP3
		case "audio/wav", "audio/x-wav", "audio/wave":
			return FormatWAV
		case "audio/flac", "audio/x-flac":
			return FormatFLAC
		case "audio/ogg", "audio/vorbis":
			return FormatVorbis
		case "audio/mp4", "audio/x-m4a", "audio/aac":
			return FormatM4A
		}
	}

	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	switch strings.ToLower(path.Ext(url)) {
	case ".mp3":
		return FormatMP3
	case ".wav":
		return FormatWAV
	case ".flac":
		return FormatFLAC
	case ".ogg", ".oga":
		return FormatVorbis
	case ".m4a", ".mp4", ".aac":
		return FormatM4A
	}
	return FormatUnknown
}

// readSeekNopCloser lets in-memory previews satisfy decoders that want a ReadSeekCloser.
type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// decode opens data as format.
func decode(data []byte, format Format) (beep.StreamSeekCloser, beep.Format, error) {
	rc := readSeekNopCloser{bytes.NewReader(data)}
	switch format {
	case FormatMP3:
		return mp3.Decode(rc)
	case FormatWAV:
		return wav.Decode(rc)
	case FormatFLAC:
		return flac.Decode(rc)
	case FormatVorbis:
		return vorbis.Decode(rc)
	case FormatM4A:
		return decodeM4A(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: could not detect format", shared.ErrUnsupportedFormat)
	}
}

// m4aDecoder decodes AAC audio from an MP4 container into beep frames.
//
// Catalog previews are 30s AAC clips, so ALAC is not handled.
type m4aDecoder struct {
	container  *m4a.Reader
	aac        *faad2.Decoder
	closer     io.Closer
	format     beep.Format
	channels   int
	totalLen   int
	currentIdx int
	pcm        [][2]float64
	pcmOffset  int
	err        error
}

func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if container.Codec() != m4a.CodecAAC {
		return nil, beep.Format{}, fmt.Errorf("%w: %s in mp4 container", shared.ErrUnsupportedFormat, container.Codec())
	}

	sampleRate := container.SampleRate()
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}

	aac, err := faad2.NewDecoder(context.Background())
	if err != nil {
		return nil, beep.Format{}, err
	}
	if err := aac.Init(context.Background(), container.CodecConfig()); err != nil {
		aac.Close(context.Background())
		return nil, beep.Format{}, err
	}

	return &m4aDecoder{
		container: container,
		aac:       aac,
		closer:    rc,
		format:    format,
		channels:  int(container.Channels()),
		totalLen:  int(container.Duration().Seconds() * float64(sampleRate)),
	}, format, nil
}

func (d *m4aDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if d.pcmOffset < len(d.pcm) {
			copied := copy(samples[n:], d.pcm[d.pcmOffset:])
			d.pcmOffset += copied
			n += copied
			continue
		}

		if d.currentIdx >= d.container.SampleCount() {
			return n, n > 0
		}

		frame, err := d.container.ReadSample(d.currentIdx)
		if err != nil {
			d.err = err
			return n, n > 0
		}
		d.currentIdx++

		pcm, err := d.aac.Decode(context.Background(), frame)
		if err != nil {
			d.err = err
			return n, n > 0
		}
		d.pcm = toStereo(pcm, d.channels)
		d.pcmOffset = 0
	}
	return n, true
}

// toStereo converts interleaved int16 PCM to float frames, duplicating mono.
func toStereo(pcm []int16, channels int) [][2]float64 {
	if channels == 2 {
		frames := make([][2]float64, len(pcm)/2)
		for i := range frames {
			frames[i][0] = float64(pcm[i*2]) / 32768.0
			frames[i][1] = float64(pcm[i*2+1]) / 32768.0
		}
		return frames
	}
	frames := make([][2]float64, len(pcm))
	for i, s := range pcm {
		v := float64(s) / 32768.0
		frames[i] = [2]float64{v, v}
	}
	return frames
}

func (d *m4aDecoder) Err() error { return d.err }

func (d *m4aDecoder) Len() int { return d.totalLen }

func (d *m4aDecoder) Position() int {
	pos := d.container.SampleTime(d.currentIdx)
	return int(pos.Seconds() * float64(d.container.SampleRate()))
}

func (d *m4aDecoder) Seek(p int) error {
	p = min(max(p, 0), d.totalLen)
	pos := time.Duration(float64(p) / float64(d.container.SampleRate()) * float64(time.Second))
	d.currentIdx = d.container.SeekToTime(pos)
	d.pcm, d.pcmOffset, d.err = nil, 0, nil
	return nil
}

func (d *m4aDecoder) Close() error {
	if d.aac != nil {
		d.aac.Close(context.Background())
	}
	return d.closer.Close()
}
