package quiz

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"sort"
	"strings"

	"exam-prep/internal/dataset"
)

type Alternative struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID            string        `json:"id"`
	Text          string        `json:"text"`
	Subject       string        `json:"subject"`
	Alternatives  []Alternative `json:"alternatives"`
	CorrectLetter string        `json:"correctLetter"`
}

// Option markers look like "a) ", "(b) ", "C. " or "d- ".
var (
	inlineMarker  = regexp.MustCompile(`(\s|^)(\(?[a-dA-D][).\-] )`)
	leadingMarker = regexp.MustCompile(`^(\(?[a-dA-D][).\-] )(.*)$`)
)

var errNotObject = errors.New("alternatives are not a json object")

// parsedAlternative records whether the id came from the source (a marker or
// an object key) rather than from the line position.
type parsedAlternative struct {
	Alternative
	labeled bool
}

func NormalizeAll(raw []dataset.RawQuestion) []Question {
	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		questions = append(questions, Normalize(item))
	}
	return questions
}

// Normalize never fails: malformed alternatives degrade to positional ids.
func Normalize(raw dataset.RawQuestion) Question {
	source := string(raw.Alternatives)

	parsed, err := parseStructured(source)
	if err != nil {
		parsed = parseFreeText(source)
	}
	alternatives := assignIDs(parsed)
	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].ID < alternatives[j].ID
	})

	question := Question{
		ID:            strings.TrimSpace(raw.ID),
		Text:          raw.Text,
		Subject:       raw.Subject,
		Alternatives:  alternatives,
		CorrectLetter: strings.ToUpper(strings.TrimSpace(raw.Answer)),
	}
	if question.ID == "" {
		question.ID = makeQuestionID(question)
	}
	return question
}

// parseStructured decodes a JSON object token by token so that member order
// is kept for the uniqueness pass.
func parseStructured(source string) ([]parsedAlternative, error) {
	decoder := json.NewDecoder(strings.NewReader(source))
	decoder.UseNumber()

	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, errNotObject
	}

	alternatives := make([]parsedAlternative, 0, 5)
	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyToken.(string)

		var value json.RawMessage
		if err := decoder.Decode(&value); err != nil {
			return nil, err
		}

		alternatives = append(alternatives, parsedAlternative{
			Alternative: Alternative{ID: strings.ToUpper(key), Text: rawMessageText(value)},
			labeled:     true,
		})
	}

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}
	// Trailing data means the field was not a single object.
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errNotObject
	}
	return alternatives, nil
}

func rawMessageText(value json.RawMessage) string {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return text
	}
	return string(bytes.TrimSpace(value))
}

func parseFreeText(source string) []parsedAlternative {
	text := strings.ReplaceAll(source, `\n`, "\n")
	if !strings.Contains(text, "\n") {
		text = inlineMarker.ReplaceAllString(text, "\n$2")
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	alternatives := make([]parsedAlternative, 0, len(lines))
	for _, line := range lines {
		match := leadingMarker.FindStringSubmatch(line)
		if match == nil {
			alternatives = append(alternatives, parsedAlternative{Alternative: Alternative{Text: line}})
			continue
		}
		alternatives = append(alternatives, parsedAlternative{
			Alternative: Alternative{
				ID:   strings.ToUpper(strings.Trim(match[1], "() .-")),
				Text: strings.TrimSpace(match[2]),
			},
			labeled: true,
		})
	}
	return alternatives
}

// assignIDs reserves every source label first, keeping the first holder of a
// repeated label. Unlabeled lines and later repeats then take their positional
// id when free, otherwise the first free positional id, so a source label is
// never handed to another line.
func assignIDs(parsed []parsedAlternative) []Alternative {
	alternatives := make([]Alternative, len(parsed))
	taken := make(map[string]bool, len(parsed))
	pending := make([]int, 0)

	for idx, item := range parsed {
		alternatives[idx] = item.Alternative
		if item.labeled && !taken[item.ID] {
			taken[item.ID] = true
			continue
		}
		pending = append(pending, idx)
	}

	for _, idx := range pending {
		id := positionalID(idx)
		for n := 0; taken[id]; n++ {
			id = positionalID(n)
		}
		alternatives[idx].ID = id
		taken[id] = true
	}
	return alternatives
}

// positionalID maps 0→A … 25→Z, 26→AA, 27→AB and so on.
func positionalID(n int) string {
	var id []byte
	for n++; n > 0; n = (n - 1) / 26 {
		id = append([]byte{byte('A' + (n-1)%26)}, id...)
	}
	return string(id)
}

func makeQuestionID(question Question) string {
	var keyBuilder strings.Builder
	keyBuilder.WriteString(question.Text)
	for _, alternative := range question.Alternatives {
		keyBuilder.WriteString("|")
		keyBuilder.WriteString(alternative.Text)
	}

	hash := sha1.Sum([]byte(keyBuilder.String()))
	return "q_" + hex.EncodeToString(hash[:])
}
