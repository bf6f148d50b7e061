package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/oralquiz/grader/internal/audio"
	"github.com/oralquiz/grader/internal/config"
	"github.com/oralquiz/grader/internal/database"
	"github.com/oralquiz/grader/internal/embedding"
	"github.com/oralquiz/grader/internal/grading"
	"github.com/oralquiz/grader/internal/questions"
	"github.com/oralquiz/grader/internal/registry"
	"github.com/oralquiz/grader/internal/stt"
)

// grader runs one oral-answer attempt from the terminal: show a question,
// record from the default microphone, transcribe, and print the grade.
func main() {
	questionID := flag.Int("question", 0, "grade against this question id (0 = random)")
	reference := flag.String("reference", "", "grade against an ad-hoc reference text instead of the bank")
	keywords := flag.String("keywords", "", "transcription hint keywords for an ad-hoc reference")
	durationSec := flag.Float64("duration", 10, "recording length in seconds")
	threshold := flag.Float64("threshold", -1, "pass threshold percent, 0-100 (negative = configured default)")
	flag.Parse()

	// Keep stdout for results; diagnostics go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config: %v", err)
	}

	ctx := context.Background()

	passAt := *threshold
	if passAt < 0 {
		passAt = cfg.Grading.ThresholdPercent
	}

	attempt := grading.AttemptRequest{
		Duration:         time.Duration(*durationSec * float64(time.Second)),
		Reference:        *reference,
		Keywords:         *keywords,
		Language:         cfg.STT.Language,
		ThresholdPercent: &passAt,
	}

	if attempt.Reference == "" {
		q := pickQuestion(ctx, cfg, *questionID)
		attempt.Reference = q.Reference
		attempt.Keywords = q.Keywords

		fmt.Printf("Question: %s\n", q.Question)
		if kws := q.KeywordList(); len(kws) > 0 {
			fmt.Printf("Keywords: %s\n", strings.Join(kws, ", "))
		}
	}

	reg := registry.New(
		func() (stt.Transcriber, error) {
			return stt.FromConfig(cfg.STT), nil
		},
		func() (registry.Embedder, error) {
			return embedding.FromConfig(cfg.Embedding), nil
		},
	)
	svc := grading.NewService(audio.NewRecorder(audio.OpenDefaultDevice), grading.NewPipeline(reg))

	fmt.Printf("\nRecording for %gs, speak your answer now...\n", attempt.Duration.Seconds())

	result, err := svc.RecordAndGrade(ctx, attempt)
	if err != nil {
		fatal("grading failed: %v", err)
	}

	fmt.Printf("\nTranscript: %s\n", result.Transcript)
	fmt.Printf("Score: %.1f%% (threshold %.0f%%)\n", result.ScorePercent, passAt)
	if result.Passed {
		fmt.Println("Result: PASS")
	} else {
		fmt.Println("Result: FAIL")
	}
}

func pickQuestion(ctx context.Context, cfg *config.Config, id int) questions.Question {
	store := openStore(ctx, cfg)
	if store == nil {
		return questions.Fallback
	}

	if id > 0 {
		q, err := store.Get(ctx, id)
		if err != nil {
			fatal("question %d: %v", id, err)
		}
		return q
	}

	q, err := store.Random(ctx)
	if err != nil {
		fatal("pick question: %v", err)
	}
	return q
}

// openStore honors the configured question source, the same way the API
// server does. A nil return means only the fallback question is available.
func openStore(ctx context.Context, cfg *config.Config) questions.Store {
	if cfg.Questions.Source == "postgres" && cfg.Database.URL != "" {
		db, err := database.NewPool(ctx, cfg.Database)
		if err == nil {
			return questions.NewPostgresStore(db)
		}
		slog.Warn("database unavailable, falling back to file bank", "error", err)
	}

	store, err := questions.NewFileStore(cfg.Questions.FilePath)
	if err != nil {
		slog.Warn("question bank unavailable, using fallback question", "error", err)
		return nil
	}
	return store
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "grader: "+format+"\n", args...)
	os.Exit(1)
}
