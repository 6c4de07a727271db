package main

import (
	"context"
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/gokatarajesh/math-quiz/internal/config"
	"github.com/gokatarajesh/math-quiz/internal/logging"
	"github.com/gokatarajesh/math-quiz/internal/question"
	"github.com/gokatarajesh/math-quiz/internal/quiz"
	"github.com/gokatarajesh/math-quiz/internal/ui/term"
)

func main() {
	var (
		logFile = flag.String("log", "quizterm.log", "File to write logs to")
		noColor = flag.Bool("no-color", false, "Disable colors")
	)
	flag.Parse()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer f.Close()
	logger := logging.NewWithWriter(f, cfg.Name, cfg.Env, cfg.LogLevel)

	store := question.NewStore(question.StoreOptions{
		Path:     cfg.Questions.Path,
		Fallback: cfg.Questions.Fallback,
	}, logger)

	svc := quiz.NewService(store, question.NewAssets(cfg.Questions.ImageRoot), quiz.NewMemoryStateStore(0), quiz.ServiceOptions{
		Defaults: quiz.Options{
			Strategy:     quiz.Strategy(cfg.Quiz.Strategy),
			Timed:        cfg.Quiz.Timed,
			TimerSeconds: cfg.Quiz.TimerSeconds,
		},
	}, logger)

	view, err := svc.Create(ctx, quiz.Overrides{})
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}

	model := term.NewModel(svc, view, term.Options{NoColor: *noColor || os.Getenv("NO_COLOR") != ""})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		log.Fatalf("terminal UI error: %v", err)
	}
}
