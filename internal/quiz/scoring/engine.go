package scoring

// Response is a recorded answer for one question.
type Response struct {
	Choice    int  `json:"choice"`
	IsCorrect bool `json:"is_correct"`
}

// Summary is the per-subject progress line.
type Summary struct {
	Answered int     `json:"answered"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Summarize counts recorded answers for a subject with total questions.
// Formula: answered = len(responses), correct = responses with IsCorrect,
// accuracy = correct / answered (0 when nothing answered).
// Responses keyed outside [0, total) are ignored so a shrunken bank cannot
// report more answers than questions.
func Summarize(responses map[int]Response, total int) Summary {
	s := Summary{Total: total}
	for idx, r := range responses {
		if idx < 0 || idx >= total {
			continue
		}
		s.Answered++
		if r.IsCorrect {
			s.Correct++
		}
	}
	if s.Answered > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Answered)
	}
	return s
}
