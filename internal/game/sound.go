package game

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

const (
	sampleRate = beep.SampleRate(44100)

	toneFrequency = 1320
	toneLength    = 60 * time.Millisecond
)

// clickSound holds a short, fully buffered sound played on confirmed taps.
type clickSound struct {
	buf *beep.Buffer
}

// newClickSound decodes the file at path, or synthesizes a short tone when
// path is empty, and initializes the speaker.
func newClickSound(path string) (*clickSound, error) {
	format := beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(format)

	if path == "" {
		buf.Append(tone(sampleRate, toneFrequency, toneLength))
	} else {
		streamer, f, err := decode(path)
		if err != nil {
			return nil, err
		}
		buf.Append(beep.Resample(4, f.SampleRate, sampleRate, streamer))
		_ = streamer.Close()
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	return &clickSound{buf: buf}, nil
}

func (c *clickSound) play() {
	if c == nil {
		return
	}
	speaker.Play(c.buf.Streamer(0, c.buf.Len()))
}

// decode opens an audio file based on its extension.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, beep.Format{}, errors.New("unsupported sound type: " + ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return streamer, format, nil
}

// tone is a sine blip with a linear fade out.
func tone(sr beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	n, i := sr.N(d), 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		k := 0
		for ; k < len(samples) && i < n; k++ {
			env := 1 - float64(i)/float64(n)
			v := 0.3 * env * math.Sin(2*math.Pi*freq*float64(i)/float64(sr))
			samples[k] = [2]float64{v, v}
			i++
		}
		return k, true
	})
}
