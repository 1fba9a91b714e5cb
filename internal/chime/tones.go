// Package chime plays a short generated tone when a run finishes.
package chime

import (
	"math"
	"time"
)

// SampleRate is the PCM sample rate in Hz.
const SampleRate = 44100

// Segment is a single tone burst. Frequency 0 is silence.
type Segment struct {
	Frequency float64
	Duration  time.Duration
	Volume    float64 // 0.0 to 1.0
}

// Tone is a named sequence of segments.
type Tone struct {
	Name     string
	Segments []Segment
}

var (
	// Success is an ascending major chord.
	Success = Tone{
		Name: "success",
		Segments: []Segment{
			{Frequency: 523.25, Duration: 120 * time.Millisecond, Volume: 0.6}, // C5
			{Frequency: 659.25, Duration: 120 * time.Millisecond, Volume: 0.6}, // E5
			{Frequency: 783.99, Duration: 250 * time.Millisecond, Volume: 0.7}, // G5
		},
	}
	// Failure is a low descending buzz.
	Failure = Tone{
		Name: "error",
		Segments: []Segment{
			{Frequency: 400, Duration: 200 * time.Millisecond, Volume: 0.8},
			{Frequency: 300, Duration: 200 * time.Millisecond, Volume: 0.8},
			{Frequency: 200, Duration: 300 * time.Millisecond, Volume: 0.9},
		},
	}
)

// PCM renders t as stereo 16-bit signed little-endian samples.
func (t Tone) PCM() []byte {
	total := 0
	for _, seg := range t.Segments {
		total += int(float64(SampleRate) * seg.Duration.Seconds())
	}
	// 4 bytes per frame: 2 channels x 2 bytes.
	buf := make([]byte, 0, total*4)

	for _, seg := range t.Segments {
		n := int(float64(SampleRate) * seg.Duration.Seconds())
		fade := SampleRate * 5 / 1000 // 5ms fade in/out

		for i := 0; i < n; i++ {
			ts := float64(i) / float64(SampleRate)

			// Envelope to avoid clicks
			env := 1.0
			if i < fade {
				env = float64(i) / float64(fade)
			} else if i > n-fade {
				env = float64(n-i) / float64(fade)
			}

			var val float64
			if seg.Frequency > 0 {
				val = math.Sin(2*math.Pi*seg.Frequency*ts) * seg.Volume * env
			}

			sample := int16(val * 32767)
			lo, hi := byte(sample), byte(sample>>8)
			buf = append(buf, lo, hi, lo, hi)
		}
	}
	return buf
}

// For returns Success when ok, Failure otherwise.
func For(ok bool) Tone {
	if ok {
		return Success
	}
	return Failure
}
