// Package registry owns the process-wide model handles. Loading a model is
// expensive (weights on disk or a remote warm-up), so each kind is built
// lazily, exactly once, and shared by every grading attempt afterwards.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oralquiz/grader/internal/stt"
)

// ErrModelLoad means a model handle could not be constructed. The failure is
// cached: retrying within the same process will not help until the operator
// fixes the environment (network, disk, backend server).
var ErrModelLoad = errors.New("registry: model load failed")

// Embedder is the capability the grading pipeline needs from the embedding
// model handle.
type Embedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// TranscriberFactory constructs the transcription model handle.
type TranscriberFactory func() (stt.Transcriber, error)

// EmbedderFactory constructs the embedding model handle.
type EmbedderFactory func() (Embedder, error)

type lazyTranscriber struct {
	once sync.Once
	val  stt.Transcriber
	err  error
}

type lazyEmbedder struct {
	once sync.Once
	val  Embedder
	err  error
}

// Registry caches one transcriber handle and one embedder handle for the
// process lifetime. Concurrent first calls for a kind wait on the single
// in-flight construction; loaded handles are safe for concurrent use.
type Registry struct {
	newTranscriber TranscriberFactory
	newEmbedder    EmbedderFactory

	transcriber lazyTranscriber
	embedder    lazyEmbedder
}

// New creates a Registry from the given factories. Nothing is constructed
// until the first Transcriber or Embedder call.
func New(tf TranscriberFactory, ef EmbedderFactory) *Registry {
	return &Registry{newTranscriber: tf, newEmbedder: ef}
}

// Transcriber returns the cached transcription handle, constructing it on
// first use. Every call after a failure returns the same wrapped error.
func (r *Registry) Transcriber() (stt.Transcriber, error) {
	r.transcriber.once.Do(func() {
		v, err := r.newTranscriber()
		if err != nil {
			r.transcriber.err = fmt.Errorf("%w: transcriber: %v", ErrModelLoad, err)
			return
		}
		r.transcriber.val = v
	})
	return r.transcriber.val, r.transcriber.err
}

// Embedder returns the cached embedding handle, constructing it on first use.
func (r *Registry) Embedder() (Embedder, error) {
	r.embedder.once.Do(func() {
		v, err := r.newEmbedder()
		if err != nil {
			r.embedder.err = fmt.Errorf("%w: embedder: %v", ErrModelLoad, err)
			return
		}
		r.embedder.val = v
	})
	return r.embedder.val, r.embedder.err
}
