package playback

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	// SpeakerSampleRate is the rate the speaker is initialised at; sources are resampled to it.
	SpeakerSampleRate beep.SampleRate = 44100
	maxPreviewBytes                   = 20 << 20
	resampleQuality                   = 4
)

var speakerOnce struct {
	sync.Once
	err error
}

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerOnce.err = speaker.Init(SpeakerSampleRate, SpeakerSampleRate.N(time.Second/10))
	})
	return speakerOnce.err
}

// SpeakerOutput plays previews fetched over HTTP on the system audio device.
type SpeakerOutput struct {
	client *http.Client
	logger *log.Logger

	mu       sync.Mutex
	ctrl     *beep.Ctrl
	streamer beep.StreamSeekCloser
	format   beep.Format
	started  bool
	onEnded  func()
}

// NewSpeakerOutput creates an output. The audio device is opened on first load.
func NewSpeakerOutput(client *http.Client, logger *log.Logger) *SpeakerOutput {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &SpeakerOutput{client: client, logger: logger}
}

// Load fetches and decodes url. The previous source is stopped first.
func (o *SpeakerOutput) Load(ctx context.Context, url string, onEnded func()) error {
	o.Stop()

	data, contentType, err := o.fetch(ctx, url)
	if err != nil {
		return err
	}

	format := DetectFormat(data, contentType, url)
	streamer, bf, err := decode(data, format)
	if err != nil {
		return fmt.Errorf("failed to decode %s preview: %w", format, err)
	}

	if err := initSpeaker(); err != nil {
		streamer.Close()
		return fmt.Errorf("failed to open audio device: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamer = streamer
	o.format = bf
	o.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	o.started = false
	o.onEnded = onEnded

	o.logger.Debug("preview loaded", "url", url, "format", format, "duration", bf.SampleRate.D(streamer.Len()))
	return nil
}

func (o *SpeakerOutput) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("%w: preview returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read preview: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Play starts the loaded source or resumes it.
func (o *SpeakerOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctrl == nil {
		return shared.ErrNothingLoaded
	}

	if !o.started {
		var src beep.Streamer = o.ctrl
		if o.format.SampleRate != SpeakerSampleRate {
			src = beep.Resample(resampleQuality, o.format.SampleRate, SpeakerSampleRate, o.ctrl)
		}
		onEnded := o.onEnded
		speaker.Lock()
		o.ctrl.Paused = false
		speaker.Unlock()
		// The callback runs with the speaker lock held.
		speaker.Play(beep.Seq(src, beep.Callback(func() {
			if onEnded != nil {
				go onEnded()
			}
		})))
		o.started = true
		return nil
	}

	speaker.Lock()
	o.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (o *SpeakerOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctrl == nil {
		return
	}
	speaker.Lock()
	o.ctrl.Paused = true
	speaker.Unlock()
}

// Stop clears the speaker and releases the decoder.
func (o *SpeakerOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctrl == nil {
		return
	}
	speaker.Clear()
	if err := o.streamer.Close(); err != nil {
		o.logger.Debug("failed to close preview decoder", "error", err)
	}
	o.ctrl, o.streamer, o.onEnded, o.started = nil, nil, nil, false
}

func (o *SpeakerOutput) Paused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctrl == nil {
		return true
	}
	speaker.Lock()
	defer speaker.Unlock()
	return o.ctrl.Paused
}

func (o *SpeakerOutput) Position() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return o.format.SampleRate.D(o.streamer.Position())
}

func (o *SpeakerOutput) Duration() (time.Duration, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.streamer == nil || o.streamer.Len() <= 0 {
		return 0, false
	}
	return o.format.SampleRate.D(o.streamer.Len()), true
}

var _ Output = (*SpeakerOutput)(nil)
