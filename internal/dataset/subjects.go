package dataset

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Subject struct {
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// Subjects counts questions per subject, sorted by name in Portuguese
// collation order so accented names sit next to their unaccented letter.
func Subjects(raw []RawQuestion) []Subject {
	index := make(map[string]int)
	subjects := make([]Subject, 0)
	for _, question := range raw {
		idx, ok := index[question.Subject]
		if !ok {
			idx = len(subjects)
			index[question.Subject] = idx
			subjects = append(subjects, Subject{Name: question.Subject})
		}
		subjects[idx].QuestionCount++
	}

	collator := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	sort.SliceStable(subjects, func(i, j int) bool {
		return collator.CompareString(subjects[i].Name, subjects[j].Name) < 0
	})
	return subjects
}

// FilterBySubjects keeps the questions whose subject is selected. An empty
// selection keeps everything.
func FilterBySubjects(raw []RawQuestion, selected []string) []RawQuestion {
	if len(selected) == 0 {
		return raw
	}

	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[name] = struct{}{}
	}

	filtered := make([]RawQuestion, 0, len(raw))
	for _, question := range raw {
		if _, ok := wanted[question.Subject]; ok {
			filtered = append(filtered, question)
		}
	}
	return filtered
}
