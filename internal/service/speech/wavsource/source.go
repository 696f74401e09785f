// Package wavsource feeds a WAV recording to a streaming recognizer as 16-bit
// little-endian mono PCM, paced like a live microphone.
package wavsource

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// ErrInvalidWAV is returned when the file is not a readable PCM WAV.
var ErrInvalidWAV = errors.New("not a valid PCM WAV file")

// DefaultChunk is the audio duration delivered per read.
const DefaultChunk = 100 * time.Millisecond

// Source opens a WAV file for each listening session.
type Source struct {
	fs       afero.Fs
	path     string
	chunk    time.Duration
	realtime bool
}

// Option configures a Source.
type Option func(*Source)

// WithChunk sets the duration of audio returned per read.
func WithChunk(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.chunk = d
		}
	}
}

// WithRealtime paces reads at the recording's natural speed.
func WithRealtime(enabled bool) Option {
	return func(s *Source) { s.realtime = enabled }
}

// New creates a source reading path from fs.
func New(fs afero.Fs, path string, opts ...Option) *Source {
	s := &Source{fs: fs, path: path, chunk: DefaultChunk, realtime: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleRate reports the recording's sample rate without decoding the samples.
func (s *Source) SampleRate() (int, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%s: %w", s.path, ErrInvalidWAV)
	}
	return int(dec.SampleRate), nil
}

// Open decodes the recording and returns its PCM stream.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", s.path, ErrInvalidWAV)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}

	pcm := toLinear16Mono(buf)
	rate := 16000
	if buf.Format != nil && buf.Format.SampleRate > 0 {
		rate = buf.Format.SampleRate
	}
	chunkBytes := int(s.chunk.Seconds()*float64(rate)) * 2
	if chunkBytes < 2 {
		chunkBytes = 2
	}

	return &pacedReader{
		ctx:        ctx,
		r:          bytes.NewReader(pcm),
		chunkBytes: chunkBytes,
		interval:   s.chunk,
		realtime:   s.realtime,
	}, nil
}

// toLinear16Mono keeps the first channel and rescales samples to 16 bits.
func toLinear16Mono(buf *audio.IntBuffer) []byte {
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = 16
	}

	out := make([]byte, 0, len(buf.Data)/channels*2)
	var sample [2]byte
	for i := 0; i < len(buf.Data); i += channels {
		v := buf.Data[i]
		switch {
		case depth == 8:
			// 8-bit WAV is unsigned
			v = (v - 128) << 8
		case depth > 16:
			v >>= depth - 16
		}
		binary.LittleEndian.PutUint16(sample[:], uint16(int16(v)))
		out = append(out, sample[:]...)
	}
	return out
}

type pacedReader struct {
	ctx        context.Context
	r          *bytes.Reader
	chunkBytes int
	interval   time.Duration
	realtime   bool
	started    bool
}

func (p *pacedReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	if p.realtime && p.started {
		select {
		case <-p.ctx.Done():
			return 0, p.ctx.Err()
		case <-time.After(p.interval):
		}
	}
	p.started = true

	if len(b) > p.chunkBytes {
		b = b[:p.chunkBytes]
	}
	return p.r.Read(b)
}

func (p *pacedReader) Close() error { return nil }
