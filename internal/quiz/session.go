package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoQuestions       = errors.New("no questions available")
	ErrAlreadyAnswered   = errors.New("question already answered")
	ErrNotAnswered       = errors.New("question not answered yet")
	ErrSessionComplete   = errors.New("session is complete")
	errNoCurrentQuestion = errors.New("session has no current question")
)

// Shuffler is satisfied by *rand.Rand.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type StartOptions struct {
	// Size caps the number of questions; zero or negative means all.
	Size      int
	KeepOrder bool
	Rand      Shuffler
}

type Session struct {
	ID        string
	Questions []Question
	Index     int
	Score     int
	Selected  string
	Revealed  bool
	Complete  bool
}

type Summary struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

type HistoryEntry struct {
	QuestionID string    `json:"questionId"`
	Subject    string    `json:"subject"`
	Correct    bool      `json:"correct"`
	Date       time.Time `json:"date"`
}

func Start(pool []Question, opts StartOptions) (Session, error) {
	questions := make([]Question, len(pool))
	copy(questions, pool)

	if !opts.KeepOrder {
		shuffler := opts.Rand
		if shuffler == nil {
			shuffler = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		shuffler.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	if opts.Size > 0 && opts.Size < len(questions) {
		questions = questions[:opts.Size]
	}
	if len(questions) == 0 {
		return Session{}, ErrNoQuestions
	}

	return Session{
		ID:        uuid.NewString(),
		Questions: questions,
	}, nil
}

// SelectAnswer grades the current question. A revealed question is left
// untouched so a second selection can never be scored twice.
func SelectAnswer(s Session, altID string, at time.Time) (Session, HistoryEntry, error) {
	if s.Complete {
		return s, HistoryEntry{}, ErrSessionComplete
	}
	if s.Revealed {
		return s, HistoryEntry{}, ErrAlreadyAnswered
	}
	question, ok := s.Current()
	if !ok {
		return s, HistoryEntry{}, errNoCurrentQuestion
	}

	selected := strings.ToUpper(strings.TrimSpace(altID))
	correct := selected == question.CorrectLetter

	next := s
	next.Selected = selected
	next.Revealed = true
	if correct {
		next.Score++
	}

	entry := HistoryEntry{
		QuestionID: question.ID,
		Subject:    question.Subject,
		Correct:    correct,
		Date:       at.UTC(),
	}
	return next, entry, nil
}

func Advance(s Session) (Session, error) {
	if s.Complete {
		return s, ErrSessionComplete
	}
	if !s.Revealed {
		return s, ErrNotAnswered
	}

	next := s
	if next.Index+1 >= len(next.Questions) {
		next.Complete = true
		return next, nil
	}

	next.Index++
	next.Selected = ""
	next.Revealed = false
	return next, nil
}

func (s Session) Current() (Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Position returns the 1-based number of the current question and the total.
func (s Session) Position() (int, int) {
	return s.Index + 1, len(s.Questions)
}

func (s Session) Summary() Summary {
	return Summary{Score: s.Score, Total: len(s.Questions)}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d/%d", s.Score, s.Total)
}

// IsCorrect reports whether the revealed selection matches the answer key.
func (s Session) IsCorrect() bool {
	question, ok := s.Current()
	return ok && s.Revealed && s.Selected == question.CorrectLetter
}
