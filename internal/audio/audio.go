package audio

import (
	"errors"
	"time"
)

var (
	// ErrDeviceUnavailable means no input device is present or permission was denied.
	ErrDeviceUnavailable = errors.New("audio: input device unavailable")
	// ErrDeviceBusy means another recording currently holds the device.
	ErrDeviceBusy = errors.New("audio: input device busy")
	// ErrDeviceRead means the device failed mid-recording; no partial sample is returned.
	ErrDeviceRead = errors.New("audio: device read failed")
)

// Sample is one attempt's recorded audio: mono float32 PCM at a fixed rate.
// Samples are attempt-local and are never persisted.
type Sample struct {
	Data []float32
	Rate int
}

// Duration returns the playback length of the sample.
func (s Sample) Duration() time.Duration {
	if s.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.Data)) / float64(s.Rate) * float64(time.Second))
}

// Empty reports whether the sample carries no audio data.
func (s Sample) Empty() bool {
	return len(s.Data) == 0
}
