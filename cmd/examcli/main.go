package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourusername/examprep/internal/client/backend"
	"github.com/yourusername/examprep/internal/config"
	"github.com/yourusername/examprep/internal/domain/entity"
	"github.com/yourusername/examprep/internal/domain/repository"
	"github.com/yourusername/examprep/internal/service/session"
	"github.com/yourusername/examprep/internal/shell"
)

func main() {
	examName := flag.String("exam", "", "exam name, e.g. \"JEE Main\" (selects the marking scheme and question pool)")
	examID := flag.Uint("exam-id", 0, "exam id")
	subjectID := flag.Uint("subject", 0, "subject id")
	mode := flag.String("mode", entity.AttemptModePractice, "attempt mode: practice, mock or topic")
	topic := flag.String("topic", "", "topic (required for -mode topic)")
	flag.Parse()

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if err := cfg.ValidateClient(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	client, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout(),
	})
	if err != nil {
		log.Printf("Failed to create backend client: %v", err)
		os.Exit(1)
	}

	sessionConfig := session.DefaultConfig()
	if cfg.Session.DurationMinutes > 0 {
		sessionConfig.Duration = time.Duration(cfg.Session.DurationMinutes) * time.Minute
	}
	if cfg.Session.SubmitTimeoutSec > 0 {
		sessionConfig.SubmitTimeout = time.Duration(cfg.Session.SubmitTimeoutSec) * time.Second
	}
	sessionConfig.NumericMaxLength = cfg.Session.NumericMaxLength
	sessionConfig.FlushPendingOnTimeout = cfg.Session.FlushPendingOnTimeout

	// Ctrl+C завершает попытку так же, как команда q
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sh := shell.New(client, os.Stdin, os.Stdout, shell.Options{
		UserID: cfg.Backend.UserID,
		Request: repository.StartAttemptRequest{
			ExamID:    *examID,
			SubjectID: *subjectID,
			ExamName:  *examName,
			Mode:      *mode,
			Topic:     *topic,
		},
		Session: sessionConfig,
	})
	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("Exam session failed: %v", err)
		os.Exit(1)
	}
}
