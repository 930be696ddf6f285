package quiz

import "sort"

type SubjectStat struct {
	Subject  string  `json:"subject"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

type Stats struct {
	TotalQuestions int           `json:"totalQuestions"`
	CorrectAnswers int           `json:"correctAnswers"`
	CurrentStreak  int           `json:"currentStreak"`
	SubjectStats   []SubjectStat `json:"subjectStats"`
}

func (s Stats) Accuracy() float64 {
	return accuracy(s.CorrectAnswers, s.TotalQuestions)
}

// Aggregate folds a history log into totals and per-subject accuracy.
// Subjects with more answers come first; ties keep first-seen order.
func Aggregate(log []HistoryEntry) Stats {
	stats := Stats{
		TotalQuestions: len(log),
		SubjectStats:   make([]SubjectStat, 0),
	}

	index := make(map[string]int)
	for _, entry := range log {
		idx, ok := index[entry.Subject]
		if !ok {
			idx = len(stats.SubjectStats)
			index[entry.Subject] = idx
			stats.SubjectStats = append(stats.SubjectStats, SubjectStat{Subject: entry.Subject})
		}

		stats.SubjectStats[idx].Total++
		if entry.Correct {
			stats.CorrectAnswers++
			stats.SubjectStats[idx].Correct++
			stats.CurrentStreak++
		} else {
			stats.CurrentStreak = 0
		}
	}

	for idx := range stats.SubjectStats {
		item := &stats.SubjectStats[idx]
		item.Accuracy = accuracy(item.Correct, item.Total)
	}
	sort.SliceStable(stats.SubjectStats, func(i, j int) bool {
		return stats.SubjectStats[i].Total > stats.SubjectStats[j].Total
	})

	return stats
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
