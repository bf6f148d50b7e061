package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// portaudioDevice wraps a PortAudio input stream. The stream reads into the
// buffer bound at open time; Read copies it out to the caller.
type portaudioDevice struct {
	stream *portaudio.Stream
	buf    []float32
}

// OpenDefaultDevice opens the system default input device for mono capture.
// It satisfies OpenDeviceFunc and is the production opener for Recorder.
func OpenDefaultDevice(sampleRate, framesPerBuffer int) (Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(
		1, // input channels (mono)
		0, // output channels
		float64(sampleRate),
		framesPerBuffer,
		buf,
	)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open default input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	return &portaudioDevice{stream: stream, buf: buf}, nil
}

func (d *portaudioDevice) Read(buf []float32) error {
	if err := d.stream.Read(); err != nil {
		return err
	}
	copy(buf, d.buf)
	return nil
}

func (d *portaudioDevice) Close() error {
	d.stream.Stop()
	err := d.stream.Close()
	portaudio.Terminate()
	return err
}
