package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version identifies a loaded file revision (modification time in ns, 0 when absent).
type Version int64

// FileVersion stats path and returns its modification time.
func FileVersion(path string) Version {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return Version(info.ModTime().UnixNano())
}

// Load reads a question bank from path. JSON is the default; .yaml and .yml
// files are parsed as YAML. Subject order follows the file.
func Load(path string) (Bank, Version, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Bank{}, 0, &DataLoadError{Path: path, Reason: ReasonMissing}
		}
		return Bank{}, 0, &DataLoadError{Path: path, Reason: ReasonUnreadable, Err: err}
	}
	version := Version(info.ModTime().UnixNano())

	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, version, &DataLoadError{Path: path, Reason: ReasonUnreadable, Err: err}
	}

	var bank Bank
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		bank, err = ParseYAML(data)
	default:
		bank, err = ParseJSON(data)
	}
	if err != nil {
		return Bank{}, version, &DataLoadError{Path: path, Reason: ReasonMalformed, Err: err}
	}
	return bank, version, nil
}

// rawRecord is the format-neutral shape of one record before validation.
type rawRecord struct {
	prompt      string
	image       string
	explanation string
	choices     []string
	hasChoices  bool
	answer      *int
	// problem is set when the record could not be decoded at all.
	problem string
}

// ParseJSON decodes a JSON object of subject -> question list, keeping key order.
func ParseJSON(data []byte) (Bank, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return Bank{}, fmt.Errorf("read top level: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Bank{}, fmt.Errorf("top level must be an object of subjects")
	}

	var bank Bank
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Bank{}, fmt.Errorf("read subject name: %w", err)
		}
		name, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Bank{}, fmt.Errorf("subject %q: %w", name, err)
		}
		records, err := jsonRecords(raw)
		if err != nil {
			return Bank{}, fmt.Errorf("subject %q: %w", name, err)
		}
		bank.put(buildSubject(name, records))
	}
	if _, err := dec.Token(); err != nil {
		return Bank{}, fmt.Errorf("read closing brace: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Bank{}, fmt.Errorf("unexpected data after question bank")
	}
	return bank, nil
}

type jsonRecord struct {
	Question    string          `json:"question"`
	Image       string          `json:"image"`
	Choices     json.RawMessage `json:"choices"`
	Answer      json.RawMessage `json:"answer"`
	Explanation string          `json:"explanation"`
}

func jsonRecords(raw json.RawMessage) ([]rawRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("expected a list of questions")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}

	out := make([]rawRecord, 0, len(items))
	for _, item := range items {
		var jr jsonRecord
		if err := json.Unmarshal(item, &jr); err != nil {
			out = append(out, rawRecord{problem: "record is not a question object"})
			continue
		}
		rec := rawRecord{
			prompt:      jr.Question,
			image:       jr.Image,
			explanation: jr.Explanation,
		}
		if choices, present, err := jsonChoices(jr.Choices); err != nil {
			rec.problem = err.Error()
		} else {
			rec.choices, rec.hasChoices = choices, present
		}
		if rec.problem == "" {
			rec.answer, rec.problem = jsonAnswer(jr.Answer)
		}
		out = append(out, rec)
	}
	return out, nil
}

// jsonChoices accepts strings and bare numbers; numbers keep their literal text.
func jsonChoices(raw json.RawMessage) ([]string, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, true, fmt.Errorf("choices must be a list")
	}
	choices := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			choices = append(choices, s)
			continue
		}
		choices = append(choices, string(bytes.TrimSpace(item)))
	}
	return choices, true, nil
}

func jsonAnswer(raw json.RawMessage) (*int, string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ""
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return parseAnswer(n.String())
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return parseAnswer(s)
	}
	return nil, "answer is not an integer"
}

func parseAnswer(s string) (*int, string) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Sprintf("answer %q is not an integer", s)
	}
	return &v, ""
}

// ParseYAML decodes a YAML mapping of subject -> question list, keeping key order.
func ParseYAML(data []byte) (Bank, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Bank{}, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Bank{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Bank{}, fmt.Errorf("top level must be a mapping of subjects")
	}

	var bank Bank
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		records, err := yamlRecords(root.Content[i+1])
		if err != nil {
			return Bank{}, fmt.Errorf("subject %q: %w", name, err)
		}
		bank.put(buildSubject(name, records))
	}
	return bank, nil
}

type yamlRecord struct {
	Question    string    `yaml:"question"`
	Image       string    `yaml:"image"`
	Choices     *[]string `yaml:"choices"`
	Answer      yaml.Node `yaml:"answer"`
	Explanation string    `yaml:"explanation"`
}

func yamlRecords(node *yaml.Node) ([]rawRecord, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a list of questions")
	}

	out := make([]rawRecord, 0, len(node.Content))
	for _, item := range node.Content {
		var yr yamlRecord
		if item.Kind != yaml.MappingNode || item.Decode(&yr) != nil {
			out = append(out, rawRecord{problem: "record is not a question object"})
			continue
		}
		rec := rawRecord{
			prompt:      yr.Question,
			image:       yr.Image,
			explanation: yr.Explanation,
		}
		if yr.Choices != nil {
			rec.choices, rec.hasChoices = *yr.Choices, true
		}
		if yr.Answer.Kind == yaml.ScalarNode && yr.Answer.Tag != "!!null" {
			rec.answer, rec.problem = parseAnswer(yr.Answer.Value)
		} else if yr.Answer.Kind != 0 && yr.Answer.Kind != yaml.ScalarNode {
			rec.problem = "answer is not an integer"
		}
		out = append(out, rec)
	}
	return out, nil
}

// put adds s, or replaces an earlier subject with the same name in place. A
// repeated key keeps its first position and its last value.
func (b *Bank) put(s Subject) {
	for i := range b.Subjects {
		if b.Subjects[i].Name == s.Name {
			b.Subjects[i] = s
			return
		}
	}
	b.Subjects = append(b.Subjects, s)
}

func buildSubject(name string, records []rawRecord) Subject {
	s := Subject{Name: name, Questions: make([]Question, 0, len(records))}
	for i, rec := range records {
		s.Questions = append(s.Questions, classify(name, i, rec))
	}
	return s
}
