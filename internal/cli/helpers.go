package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"exam-prep/internal/quiz"
)

// promptAnswer reads one line. The answer is valid when it names one of the
// alternatives; a question without alternatives takes any single token.
func promptAnswer(reader *bufio.Reader, out io.Writer, alternatives []quiz.Alternative) (string, bool, error) {
	ids := make([]string, 0, len(alternatives))
	for _, alternative := range alternatives {
		ids = append(ids, alternative.ID)
	}
	if len(ids) > 0 {
		fmt.Fprintf(out, "Your answer (%s, q to quit): ", strings.Join(ids, "/"))
	} else {
		fmt.Fprint(out, "Your answer (q to quit): ")
	}

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(line) != "") {
		return "", false, err
	}

	answer := strings.ToUpper(strings.TrimSpace(line))
	if answer == "" || strings.ContainsAny(answer, " \t") {
		return "", false, nil
	}
	if answer == quitAnswer {
		return answer, false, nil
	}
	if len(ids) == 0 {
		return answer, true, nil
	}
	for _, id := range ids {
		if answer == id {
			return answer, true, nil
		}
	}
	return "", false, nil
}

func parsePositiveLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(args[index])
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

func parseExamSize(args []string) (int, error) {
	if len(args) < 2 {
		return fullExamSize, nil
	}
	switch strings.ToLower(args[1]) {
	case "full":
		return fullExamSize, nil
	case "half":
		return halfExamSize, nil
	}
	return parsePositiveLimit(args, 1, fullExamSize)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(math.Round(score*10)/10, 'f', -1, 64)
}

func promptYesNo(reader *bufio.Reader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

// promptLine reads one line as typed, without trimming inner or edge spaces.
func promptLine(reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
