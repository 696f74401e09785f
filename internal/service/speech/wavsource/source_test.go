package wavsource

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

func writeWAV(t *testing.T, fs afero.Fs, path string, rate, depth, channels int, data []int) {
	t.Helper()
	f, err := fs.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	enc := wav.NewEncoder(f, rate, depth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func samples(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestSource_ReadsMonoPCM(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "answer.wav", 16000, 16, 1, []int{0, 100, -100, 32767, -32768})

	src := New(fs, "answer.wav", WithRealtime(false))

	rate, err := src.SampleRate()
	if err != nil {
		t.Fatalf("sample rate: %v", err)
	}
	if rate != 16000 {
		t.Errorf("expected 16000 Hz, got %d", rate)
	}

	r, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	pcm, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	got := samples(pcm)
	want := []int16{0, 100, -100, 32767, -32768}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSource_DownmixesToFirstChannel(t *testing.T) {
	fs := afero.NewMemMapFs()
	// interleaved L/R
	writeWAV(t, fs, "stereo.wav", 8000, 16, 2, []int{1, -1, 2, -2, 3, -3})

	r, err := New(fs, "stereo.wav", WithRealtime(false)).Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	pcm, _ := io.ReadAll(r)

	got := samples(pcm)
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("unexpected mono samples: %v", got)
	}
}

func TestSource_ChunkedReads(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "long.wav", 1000, 16, 1, make([]int, 1000))

	// 100ms at 1 kHz = 100 samples = 200 bytes per read
	r, err := New(fs, "long.wav", WithRealtime(false)).Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	buf := make([]byte, 4096)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 200 {
		t.Errorf("expected 200 byte chunk, got %d", n)
	}
}

func TestSource_StopsOnCancel(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeWAV(t, fs, "answer.wav", 16000, 16, 1, make([]int, 16000))

	ctx, cancel := context.WithCancel(context.Background())
	r, err := New(fs, "answer.wav").Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	cancel()

	if _, err := r.Read(make([]byte, 64)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSource_InvalidFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "notes.txt", []byte("not audio at all, just text"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(fs, "notes.txt").Open(context.Background())
	if !errors.Is(err, ErrInvalidWAV) {
		t.Errorf("expected ErrInvalidWAV, got %v", err)
	}
}

func TestSource_MissingFile(t *testing.T) {
	if _, err := New(afero.NewMemMapFs(), "missing.wav").Open(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
