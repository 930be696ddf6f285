package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"exam-prep/internal/dataset"
	"exam-prep/internal/quiz"
)

const quitAnswer = "Q"

func (a *app) play(ctx context.Context, raw []dataset.RawQuestion, size int) error {
	session, err := quiz.Start(quiz.NormalizeAll(raw), quiz.StartOptions{Size: size, Rand: a.cfg.Rand})
	if err != nil {
		return err
	}
	a.cfg.Logger.Info("session started",
		zap.String("session_id", session.ID),
		zap.Int("questions", len(session.Questions)),
		zap.Bool("signed_in", a.signedIn),
	)

	for !session.Complete {
		question, _ := session.Current()
		number, total := session.Position()
		printQuestion(a.out, number, total, question)

		answer, err := a.readAnswer(question)
		if err != nil {
			return err
		}
		if answer == "" {
			fmt.Fprintln(a.out, "Session abandoned.")
			a.cfg.Logger.Info("session abandoned", zap.String("session_id", session.ID), zap.Int("answered", number-1))
			return nil
		}

		var entry quiz.HistoryEntry
		session, entry, err = quiz.SelectAnswer(session, answer, a.cfg.Now())
		if err != nil {
			return err
		}
		if err := a.cfg.History.Append(ctx, a.historyOwner(), entry); err != nil {
			a.cfg.Logger.Error("could not save answer", zap.String("session_id", session.ID), zap.Error(err))
			fmt.Fprintf(a.out, "error: could not save answer: %v\n", err)
		}

		if session.IsCorrect() {
			fmt.Fprintln(a.out, "Correct!")
		} else {
			fmt.Fprintf(a.out, "Wrong. Correct answer was %s\n", correctAnswerDisplay(question))
		}
		fmt.Fprintf(a.out, "Score: %d/%d\n", session.Score, number)

		session, err = quiz.Advance(session)
		if err != nil {
			return err
		}
	}

	summary := session.Summary()
	fmt.Fprintf(a.out, "\nFinished! Correct: %s\n", summary)
	a.cfg.Logger.Info("session finished", zap.String("session_id", session.ID), zap.Int("score", summary.Score), zap.Int("total", summary.Total))
	return a.showStats(ctx)
}

// readAnswer returns the chosen alternative id, or "" when the user gives up
// on the session.
func (a *app) readAnswer(question quiz.Question) (string, error) {
	invalidCount := 0
	for {
		answer, ok, err := promptAnswer(a.reader, a.out, question.Alternatives)
		if err != nil {
			return "", err
		}

		if answer == quitAnswer {
			quit, err := promptYesNo(a.reader, a.out, "Abandon this session? (yes/no): ")
			if err != nil {
				return "", err
			}
			if quit {
				return "", nil
			}
			continue
		}

		if ok {
			return answer, nil
		}

		invalidCount++
		if invalidCount < a.cfg.MaxInvalidAnswers {
			fmt.Fprintf(a.out, "Invalid input. Attempts remaining: %d\n", a.cfg.MaxInvalidAnswers-invalidCount)
			continue
		}

		quit, err := promptYesNo(a.reader, a.out, "Too many invalid answers. Abandon this session? (yes/no): ")
		if err != nil {
			return "", err
		}
		if quit {
			return "", nil
		}
		invalidCount = 0
	}
}

func printQuestion(out io.Writer, number, total int, question quiz.Question) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Question %d of %d", number, total)
	if question.Subject != "" {
		fmt.Fprintf(out, " [%s]", question.Subject)
	}
	fmt.Fprintf(out, "\n\n%s\n\n", question.Text)
	for _, alternative := range question.Alternatives {
		fmt.Fprintf(out, "%s) %s\n", alternative.ID, alternative.Text)
	}
	fmt.Fprintln(out)
}

func printStats(out io.Writer, stats quiz.Stats) {
	if stats.TotalQuestions == 0 {
		fmt.Fprintln(out, "No answers recorded yet.")
		return
	}

	fmt.Fprintf(out, "Answered: %d | Correct: %d | Accuracy: %s%% | Streak: %d\n",
		stats.TotalQuestions,
		stats.CorrectAnswers,
		formatScore(stats.Accuracy()),
		stats.CurrentStreak,
	)
	fmt.Fprintln(out, "By subject:")
	for _, item := range stats.SubjectStats {
		fmt.Fprintf(out, "  %s: %d/%d (%s%%)\n", item.Subject, item.Correct, item.Total, formatScore(item.Accuracy))
	}
}

func correctAnswerDisplay(question quiz.Question) string {
	for _, alternative := range question.Alternatives {
		if alternative.ID != question.CorrectLetter {
			continue
		}
		if strings.TrimSpace(alternative.Text) == "" {
			return alternative.ID
		}
		return fmt.Sprintf("%s) %s", alternative.ID, alternative.Text)
	}
	if question.CorrectLetter == "" {
		return "unknown"
	}
	return question.CorrectLetter
}
