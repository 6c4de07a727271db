package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "math-quiz", cfg.Name)
	assert.Equal(t, "data/questions.json", cfg.Questions.Path)
	assert.Equal(t, "sample", cfg.Questions.Fallback)
	assert.Equal(t, 5*time.Second, cfg.Questions.ReloadInterval)
	assert.Equal(t, "sequential", cfg.Quiz.Strategy)
	assert.Equal(t, 300, cfg.Quiz.TimerSeconds)
	assert.Equal(t, time.Minute, cfg.Quiz.SweepInterval)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QUESTIONS_PATH", "/srv/bank.yaml")
	t.Setenv("QUIZ_STRATEGY", "random")
	t.Setenv("QUIZ_TIMED", "true")
	t.Setenv("QUIZ_TIMER_SECONDS", "90")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/srv/bank.yaml", cfg.Questions.Path)
	assert.Equal(t, "random", cfg.Quiz.Strategy)
	assert.True(t, cfg.Quiz.Timed)
	assert.Equal(t, 90, cfg.Quiz.TimerSeconds)
}

func TestLoadRejectsUnknownPolicies(t *testing.T) {
	cases := map[string]string{
		"QUESTION_FALLBACK": "guess",
		"QUIZ_STRATEGY":     "shuffle",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsTimedWithoutDuration(t *testing.T) {
	t.Setenv("QUIZ_TIMED", "true")
	t.Setenv("QUIZ_TIMER_SECONDS", "0")

	_, err := Load(context.Background())
	assert.Error(t, err)
}
