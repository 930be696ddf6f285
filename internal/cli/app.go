package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"exam-prep/internal/dataset"
	"exam-prep/internal/logging"
	"exam-prep/internal/quiz"
	"exam-prep/internal/report"
	"exam-prep/internal/users"
)

const (
	defaultMaxInvalidAnswers = 3
	fullExamSize             = 80
	halfExamSize             = 40
)

type Config struct {
	Questions         []dataset.RawQuestion
	History           *quiz.History
	Directory         *users.Directory
	Accounts          *users.Session
	MaxInvalidAnswers int
	Rand              quiz.Shuffler
	Now               func() time.Time
	Logger            *zap.Logger
}

type app struct {
	cfg      Config
	reader   *bufio.Reader
	out      io.Writer
	subjects []dataset.Subject
	selected map[string]bool
	user     users.User
	signedIn bool
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	if cfg.History == nil {
		return errors.New("history is required")
	}
	if cfg.MaxInvalidAnswers <= 0 {
		cfg.MaxInvalidAnswers = defaultMaxInvalidAnswers
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.Logger = logging.OrNop(cfg.Logger)
	if cfg.Directory == nil {
		cfg.Directory = users.NewDirectory(nil)
	}

	a := &app{
		cfg:      cfg,
		reader:   bufio.NewReader(in),
		out:      out,
		subjects: dataset.Subjects(cfg.Questions),
		selected: make(map[string]bool),
	}

	if cfg.Accounts != nil {
		user, ok, err := cfg.Accounts.Restore(ctx)
		if err != nil {
			cfg.Logger.Warn("could not restore signed-in user", zap.Error(err))
		}
		a.user, a.signedIn = user, ok
	}

	fmt.Fprintf(out, "exam-prep\nquestions=%d subjects=%d\n", len(cfg.Questions), len(a.subjects))
	if a.signedIn {
		fmt.Fprintf(out, "signed in as %s\n", a.user.Name)
	}
	fmt.Fprintln(out)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := a.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])

		if command == "exit" || command == "quit" {
			return nil
		}

		if err := a.dispatch(ctx, command, args); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "help":
		printHelp(a.out)
	case "subjects":
		a.printSubjects()
	case "select":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "usage: select <number|name>...")
			return nil
		}
		return a.toggleSubjects(args[1:])
	case "clear":
		a.selected = make(map[string]bool)
		fmt.Fprintln(a.out, "Subject selection cleared.")
	case "practice":
		pool := dataset.FilterBySubjects(a.cfg.Questions, a.selectedNames())
		return a.play(ctx, pool, 0)
	case "exam":
		size, err := parseExamSize(args)
		if err != nil {
			fmt.Fprintf(a.out, "invalid exam size: %v\n", err)
			fmt.Fprintln(a.out, "usage: exam full|half|<n>")
			return nil
		}
		return a.play(ctx, a.cfg.Questions, size)
	case "stats":
		return a.showStats(ctx)
	case "reset":
		return a.resetHistory(ctx)
	case "export":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "usage: export <file.xlsx>")
			return nil
		}
		return a.export(ctx, args[1])
	case "login":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "usage: login <email-or-name>")
			return nil
		}
		password, err := promptLine(a.reader, a.out, "Password: ")
		if err != nil {
			return err
		}
		return a.login(ctx, strings.Join(args[1:], " "), password)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		a.whoami()
	default:
		fmt.Fprintln(a.out, "unknown command. type 'help' for usage.")
	}
	return nil
}

func (a *app) historyOwner() string {
	if !a.signedIn {
		return ""
	}
	return string(a.user.ID)
}

func (a *app) printSubjects() {
	if len(a.subjects) == 0 {
		fmt.Fprintln(a.out, "No subjects in the dataset.")
		return
	}

	fmt.Fprintln(a.out, "Subjects:")
	for idx, subject := range a.subjects {
		mark := " "
		if a.selected[subject.Name] {
			mark = "x"
		}
		fmt.Fprintf(a.out, "%2d. [%s] %s (%d questions)\n", idx+1, mark, subject.Name, subject.QuestionCount)
	}
	if len(a.selected) == 0 {
		fmt.Fprintln(a.out, "No subject selected: practice uses every question.")
	}
}

// toggleSubjects accepts list numbers or, when the arguments are not all
// numbers, one subject name made of every argument.
func (a *app) toggleSubjects(args []string) error {
	numbers := make([]int, 0, len(args))
	for idx := range args {
		n, err := parsePositiveLimit(args, idx, 0)
		if err != nil {
			numbers = nil
			break
		}
		numbers = append(numbers, n)
	}

	names := make([]string, 0, len(args))
	if numbers != nil {
		for _, n := range numbers {
			if n > len(a.subjects) {
				return fmt.Errorf("no subject number %d", n)
			}
			names = append(names, a.subjects[n-1].Name)
		}
	} else {
		name := strings.Join(args, " ")
		found := false
		for _, subject := range a.subjects {
			if strings.EqualFold(subject.Name, name) {
				names = append(names, subject.Name)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown subject %q", name)
		}
	}

	for _, name := range names {
		if a.selected[name] {
			delete(a.selected, name)
			fmt.Fprintf(a.out, "- %s\n", name)
			continue
		}
		a.selected[name] = true
		fmt.Fprintf(a.out, "+ %s\n", name)
	}
	return nil
}

func (a *app) selectedNames() []string {
	names := make([]string, 0, len(a.selected))
	for _, subject := range a.subjects {
		if a.selected[subject.Name] {
			names = append(names, subject.Name)
		}
	}
	return names
}

func (a *app) showStats(ctx context.Context) error {
	stats, err := a.cfg.History.Stats(ctx, a.historyOwner())
	if err != nil {
		return err
	}
	printStats(a.out, stats)
	return nil
}

func (a *app) resetHistory(ctx context.Context) error {
	confirmed, err := promptYesNo(a.reader, a.out, "Clear all answer history? (yes/no): ")
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(a.out, "History kept.")
		return nil
	}

	if err := a.cfg.History.Reset(ctx, a.historyOwner()); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "History cleared.")
	return nil
}

func (a *app) export(ctx context.Context, path string) error {
	log, err := a.cfg.History.Load(ctx, a.historyOwner())
	if err != nil {
		return err
	}
	if err := report.WriteFile(path, quiz.Aggregate(log), log); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d answers to %s\n", len(log), path)
	return nil
}

func (a *app) login(ctx context.Context, loginName, password string) error {
	user, err := a.cfg.Directory.Authenticate(loginName, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			fmt.Fprintf(a.out, "%v\n", err)
			return nil
		}
		return err
	}

	if a.cfg.Accounts != nil {
		if err := a.cfg.Accounts.SignIn(ctx, user); err != nil {
			return err
		}
	}
	a.user, a.signedIn = user.Public(), true
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.signedIn {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	confirmed, err := promptYesNo(a.reader, a.out, "Sign out? (yes/no): ")
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	if a.cfg.Accounts != nil {
		if err := a.cfg.Accounts.SignOut(ctx); err != nil {
			return err
		}
	}
	a.user, a.signedIn = users.User{}, false
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *app) whoami() {
	if !a.signedIn {
		fmt.Fprintln(a.out, "Not signed in (guest history).")
		return
	}
	fmt.Fprintf(a.out, "%s %s <%s>\n", a.user.Avatar, a.user.Name, a.user.Email)
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  subjects")
	fmt.Fprintln(out, "  select <number|name>...")
	fmt.Fprintln(out, "  clear")
	fmt.Fprintln(out, "  practice")
	fmt.Fprintln(out, "  exam full|half|<n>")
	fmt.Fprintln(out, "  stats")
	fmt.Fprintln(out, "  reset")
	fmt.Fprintln(out, "  export <file.xlsx>")
	fmt.Fprintln(out, "  login <email-or-name>")
	fmt.Fprintln(out, "  logout")
	fmt.Fprintln(out, "  whoami")
	fmt.Fprintln(out, "  exit")
}
