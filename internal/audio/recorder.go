package audio

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// FramesPerBuffer is the read chunk size used against the device.
const FramesPerBuffer = 512

// Device is an open, exclusive session on an audio input. Read fills buf
// with the next frames from the device, blocking until they are available.
type Device interface {
	Read(buf []float32) error
	Close() error
}

// OpenDeviceFunc opens an input device for mono capture at the given rate.
type OpenDeviceFunc func(sampleRate, framesPerBuffer int) (Device, error)

// Recorder records fixed-duration samples from an input device. A Recorder
// owns its device exclusively for the span of each Record call; a concurrent
// Record on the same Recorder fails with ErrDeviceBusy rather than queueing.
type Recorder struct {
	mu   sync.Mutex
	open OpenDeviceFunc
}

// NewRecorder creates a Recorder on top of the given device opener.
// Production code uses OpenDefaultDevice; tests supply fakes.
func NewRecorder(open OpenDeviceFunc) *Recorder {
	return &Recorder{open: open}
}

// Record captures approximately duration of audio at sampleRate and blocks
// until the recording completes, the context is canceled, or the device
// fails. On failure no partial sample is returned.
func (r *Recorder) Record(ctx context.Context, duration time.Duration, sampleRate int) (Sample, error) {
	if duration <= 0 {
		return Sample{}, fmt.Errorf("audio: duration must be positive, got %v", duration)
	}
	if sampleRate <= 0 {
		return Sample{}, fmt.Errorf("audio: sample rate must be positive, got %d", sampleRate)
	}

	if !r.mu.TryLock() {
		return Sample{}, ErrDeviceBusy
	}
	defer r.mu.Unlock()

	dev, err := r.open(sampleRate, FramesPerBuffer)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	defer dev.Close()

	total := int(duration.Seconds() * float64(sampleRate))
	samples := make([]float32, 0, total)
	buf := make([]float32, FramesPerBuffer)

	for len(samples) < total {
		select {
		case <-ctx.Done():
			return Sample{}, ctx.Err()
		default:
		}

		if err := dev.Read(buf); err != nil {
			return Sample{}, fmt.Errorf("%w: %v", ErrDeviceRead, err)
		}

		n := total - len(samples)
		if n > len(buf) {
			n = len(buf)
		}
		samples = append(samples, buf[:n]...)
	}

	return Sample{Data: samples, Rate: sampleRate}, nil
}
