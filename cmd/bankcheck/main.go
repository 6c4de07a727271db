package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/math-quiz/internal/question"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run checks a question bank file. Exit codes: 0 clean, 1 bank has problems,
// 2 bad usage.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("bankcheck", flag.ContinueOnError)
	var (
		command   = fs.String("command", "validate", "Command: validate or summary")
		path      = fs.String("file", getEnv("QUESTIONS_PATH", "data/questions.json"), "Question bank file (.json, .yaml, .yml)")
		imageRoot = fs.String("images", getEnv("IMAGE_ROOT", "data"), "Directory image paths are relative to")
	)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	bank, _, err := question.Load(*path)
	if err != nil {
		log.Error().Err(err).Str("file", *path).Msg("failed to load question bank")
		return 1
	}

	switch *command {
	case "summary":
		stats := bank.Stats()
		for _, s := range bank.Subjects {
			fmt.Fprintf(stdout, "%-30s %4d\n", s.Name, len(s.Questions))
		}
		fmt.Fprintf(stdout, "%d subjects with questions, %d questions\n", stats.SubjectsWithQuestions, stats.TotalQuestions)
		return 0

	case "validate":
		problems := 0
		for _, issue := range bank.Issues() {
			log.Warn().Str("subject", issue.Subject).Int("number", issue.Index+1).Msg(issue.Problem)
			problems++
		}

		assets := question.NewAssets(*imageRoot)
		for _, s := range bank.Subjects {
			for i, q := range s.Questions {
				if q.Image == "" {
					continue
				}
				if _, err := assets.Resolve(q.Image); err != nil {
					log.Warn().Str("subject", s.Name).Int("number", i+1).Err(err).Msg("image does not resolve")
					problems++
				}
			}
		}

		if problems > 0 {
			fmt.Fprintf(stdout, "%s: %d problem(s)\n", *path, problems)
			return 1
		}
		fmt.Fprintf(stdout, "%s: ok\n", *path)
		return 0

	default:
		log.Error().Str("command", *command).Msg("unknown command. Use: validate or summary")
		return 2
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
