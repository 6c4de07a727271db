package question

// DefaultChoiceLabels stand in for choices of image-only questions, whose
// options are printed inside the image.
var DefaultChoiceLabels = []string{"①", "②", "③", "④", "⑤"}

// Question is a single multiple-choice record as stored in the bank file.
type Question struct {
	Prompt      string   `json:"question" yaml:"question"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Choices     []string `json:"choices" yaml:"choices"`
	Answer      *int     `json:"answer" yaml:"answer"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`

	// Issue is set at load time when the record cannot be answered.
	Issue *MalformedQuestionError `json:"-" yaml:"-"`
}

// Malformed reports whether the record failed load-time validation.
func (q Question) Malformed() bool {
	return q.Issue != nil
}

// Subject is a named, ordered group of questions.
type Subject struct {
	Name      string
	Questions []Question
}

// Bank holds every subject in file order. It is read-only once loaded and is
// shared by all sessions.
type Bank struct {
	Subjects []Subject
}

// Stats summarizes the bank for the landing screen.
type Stats struct {
	SubjectsWithQuestions int `json:"subjects_with_questions"`
	TotalQuestions        int `json:"total_questions"`
}

// Subject returns the named subject.
func (b Bank) Subject(name string) (Subject, bool) {
	for _, s := range b.Subjects {
		if s.Name == name {
			return s, true
		}
	}
	return Subject{}, false
}

// Questions returns the named subject's list, or nil when absent.
func (b Bank) Questions(name string) []Question {
	s, _ := b.Subject(name)
	return s.Questions
}

// Names lists every subject in file order, empty ones included.
func (b Bank) Names() []string {
	names := make([]string, 0, len(b.Subjects))
	for _, s := range b.Subjects {
		names = append(names, s.Name)
	}
	return names
}

// SelectableSubjects lists subjects that have at least one question. When
// every subject is empty all of them are returned.
func (b Bank) SelectableSubjects() []string {
	var names []string
	for _, s := range b.Subjects {
		if len(s.Questions) > 0 {
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		return b.Names()
	}
	return names
}

// Stats counts non-empty subjects and total questions.
func (b Bank) Stats() Stats {
	var st Stats
	for _, s := range b.Subjects {
		if len(s.Questions) > 0 {
			st.SubjectsWithQuestions++
		}
		st.TotalQuestions += len(s.Questions)
	}
	return st
}

// Issues collects every malformed record, keyed by subject and index.
func (b Bank) Issues() []*MalformedQuestionError {
	var out []*MalformedQuestionError
	for _, s := range b.Subjects {
		for _, q := range s.Questions {
			if q.Issue != nil {
				out = append(out, q.Issue)
			}
		}
	}
	return out
}
