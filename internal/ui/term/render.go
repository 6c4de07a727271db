package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gokatarajesh/math-quiz/internal/quiz"
	"github.com/gokatarajesh/math-quiz/internal/quiz/scoring"
)

// renderHeader renders the title and bank totals.
func renderHeader(view quiz.View, noColor bool) string {
	line := "Math Quiz"
	if view.ActiveSubject != "" && view.Screen == quiz.ScreenQuestion {
		line += " | " + view.ActiveSubject
	}
	line += fmt.Sprintf(" | %d subjects, %d questions", view.Stats.SubjectsWithQuestions, view.Stats.TotalQuestions)
	if view.Timer != nil {
		line += " | " + formatRemaining(view.Timer)
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderNotice shows why the bank fell back, if it did.
func renderNotice(view quiz.View, noColor bool) string {
	if view.Notice == "" {
		return ""
	}
	return stylize("! "+view.Notice, noColor, lipgloss.Color("214"))
}

func renderLanding(view quiz.View, noColor bool) string {
	lines := []string{"", "Practice questions by subject."}
	if view.Options.Timed {
		lines = append(lines, fmt.Sprintf("Each question has %d seconds.", view.Options.TimerSeconds))
	}
	if view.Options.Strategy == quiz.StrategyRandom {
		lines = append(lines, "Questions are drawn at random.")
	}
	lines = append(lines, "", stylize("Press enter to start.", noColor, lipgloss.Color("42")))
	return strings.Join(lines, "\n")
}

// renderQuestion renders the question screen body.
func renderQuestion(view quiz.View, noColor bool) string {
	qv := view.Question
	if qv == nil {
		return "\nNo questions to show. Press s to pick another subject or f to reload."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nQuestion %d / %d\n\n", qv.Number, qv.Total)
	b.WriteString(qv.Prompt)
	b.WriteString("\n")
	switch {
	case qv.ImageError != "":
		b.WriteString(stylize("[image unavailable: "+qv.ImageError+"]", noColor, lipgloss.Color("203")) + "\n")
	case qv.ImageFile != "":
		b.WriteString(stylize("[image: "+qv.ImageFile+"]", noColor, lipgloss.Color("244")) + "\n")
	}
	b.WriteString("\n")

	for i, choice := range qv.Choices {
		marker := "  "
		if qv.SavedChoice != nil && *qv.SavedChoice == i {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%d. %s\n", marker, i+1, choice)
	}

	if qv.Malformed != "" {
		b.WriteString("\n" + stylize("This question is malformed: "+qv.Malformed, noColor, lipgloss.Color("203")) + "\n")
	}
	if fb := view.Feedback; fb != nil {
		b.WriteString("\n" + renderFeedback(*fb, noColor) + "\n")
	}
	if view.Progress != nil {
		b.WriteString("\n" + renderProgress(*view.Progress, noColor))
	}
	return b.String()
}

func renderFeedback(fb quiz.Feedback, noColor bool) string {
	var line string
	if fb.IsCorrect {
		line = stylize("Correct!", noColor, lipgloss.Color("42"))
	} else {
		line = stylize(fmt.Sprintf("Incorrect. The answer is %d. %s", fb.Correct+1, fb.CorrectText), noColor, lipgloss.Color("203"))
	}
	if fb.Explanation != "" {
		line += "\n" + fb.Explanation
	}
	return line
}

func renderProgress(p scoring.Summary, noColor bool) string {
	line := fmt.Sprintf("Solved %d / %d, correct %d", p.Answered, p.Total, p.Correct)
	if p.Answered > 0 {
		line += fmt.Sprintf(" (%.0f%%)", p.Accuracy*100)
	}
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderHelp lists the keys that work on the current screen.
func renderHelp(view quiz.View, picking bool, noColor bool) string {
	var keys []string
	switch {
	case view.Screen == quiz.ScreenLanding:
		keys = []string{"enter start", "f reload"}
	case view.Screen == quiz.ScreenSubjectSelect || picking:
		keys = []string{"↑/↓ move", "enter choose", "esc back"}
	default:
		keys = []string{"1-9 answer", "n next"}
		if view.Options.Strategy == quiz.StrategySequential {
			keys = append(keys, "p prev", "g go to")
		}
		if view.Options.Timed {
			keys = append(keys, "s subjects")
		} else {
			keys = append(keys, "s subject", "f reload")
		}
		keys = append(keys, "r restart", "esc home")
	}
	keys = append(keys, "q quit")
	return "\n" + stylize(strings.Join(keys, " • "), noColor, lipgloss.Color("240"))
}

func formatRemaining(t *quiz.TimerView) string {
	if t.Expired {
		return "time is up"
	}
	return fmt.Sprintf("%d:%02d left", t.RemainingSeconds/60, t.RemainingSeconds%60)
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
