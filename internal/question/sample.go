package question

// SampleBank is served when the bank file cannot be loaded and the fallback
// policy is "sample".
func SampleBank() Bank {
	return Bank{Subjects: []Subject{
		{Name: "Algebra", Questions: []Question{
			sample("Solve for x: 2x + 3 = 11.", []string{"2", "3", "4", "5", "7"}, 2,
				"Subtract 3 then divide by 2."),
			sample("Expand (x + 1)^2.", []string{"x^2 + 1", "x^2 + x + 1", "x^2 + 2x + 1", "2x + 1"}, 2,
				"(a + b)^2 = a^2 + 2ab + b^2."),
			sample("Which value satisfies x^2 = 9 and x < 0?", []string{"-9", "-3", "0", "3"}, 1, ""),
		}},
		{Name: "Geometry", Questions: []Question{
			sample("The interior angles of a triangle sum to how many degrees?", []string{"90", "180", "270", "360"}, 1, ""),
			sample("Area of a circle with radius 2?", []string{"2π", "4π", "8π", "16π"}, 1,
				"A = πr^2 = 4π."),
		}},
		{Name: "Calculus", Questions: []Question{
			sample("d/dx of x^3?", []string{"x^2", "3x", "3x^2", "x^3 / 3"}, 2, "Power rule."),
			sample("∫ 2x dx?", []string{"x^2 + C", "2x^2 + C", "x + C", "2 + C"}, 0, ""),
		}},
	}}
}

func sample(prompt string, choices []string, answer int, explanation string) Question {
	return Question{
		Prompt:      prompt,
		Choices:     choices,
		Answer:      &answer,
		Explanation: explanation,
	}
}
