package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
	"github.com/felixgeelhaar/gestaches/internal/tasks/application/settings"
)

const shellHelp = `Commands:
  add <title> [-p high|medium|low] [--due YYYY-MM-DD]
  list                      show the list with the current filter and search
  filter <name>             all, pending, completed, high, medium, low
  search [text]             narrow by title, empty clears
  toggle <id>               complete or reopen (alias: done)
  rm <id>                   delete after confirmation
  start <id> | pause <id>   run or pause a timer
  reset <id>                clear tracked time
  stats                     totals and tracked time
  theme                     switch light/dark
  settings get [key] | settings set <key> <value>
  help | quit`

var errQuit = errors.New("quit")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session with live timers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		return newShell(a, cmd.InOrStdin(), cmd.OutOrStdout()).run(cmd.Context())
	},
}

// shell is a line-oriented session. Timers keep ticking between commands
// and the list is redrawn after any change event.
type shell struct {
	app   *App
	in    io.Reader
	out   io.Writer
	query application.ListQuery
	now   func() time.Time
	dirty atomic.Bool

	lines   chan lineResult
	done    chan struct{}
	readErr error
}

type lineResult struct {
	line string
	err  error
}

func newShell(a *App, in io.Reader, out io.Writer) *shell {
	return &shell{
		app:   a,
		in:    in,
		out:   newSyncWriter(out),
		query: application.ListQuery{Filter: application.FilterAll},
		now:   time.Now,
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
}

// readInput feeds lines to the session so a blocked read cannot outlive
// a cancelled context.
func (s *shell) readInput() {
	next := readerLines(s.in)
	for {
		line, err := next()
		select {
		case s.lines <- lineResult{line: line, err: err}:
		case <-s.done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *shell) lineReader(ctx context.Context) lineReader {
	return func() (string, error) {
		if s.readErr != nil {
			return "", s.readErr
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case r := <-s.lines:
			if r.err != nil {
				s.readErr = r.err
				return "", r.err
			}
			return r.line, nil
		}
	}
}

func (s *shell) run(ctx context.Context) error {
	if s.app.EventBus != nil {
		unregister := s.app.EventBus.RegisterConsumer(eventbus.ConsumerFunc{
			Types: []string{"tasks.task.*", "tasks.timer.started", "tasks.timer.paused", "tasks.timer.reset"},
			Fn: func(ctx context.Context, event *eventbus.ConsumedEvent) error {
				s.dirty.Store(true)
				return nil
			},
		})
		defer unregister()
	}

	defer close(s.done)
	go s.readInput()
	readLine := s.lineReader(ctx)

	s.render()
	for {
		fmt.Fprint(s.out, "> ")
		line, err := readLine()
		if err != nil {
			fmt.Fprintln(s.out)
			return nil
		}

		if err := s.exec(ctx, line, readLine); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(s.out, "! %v\n", err)
		}
		if s.dirty.Swap(false) {
			s.render()
		}
	}
}

func (s *shell) render() {
	fmt.Fprintln(s.out)
	if s.query.Filter != application.FilterAll || s.query.Search != "" {
		fmt.Fprintf(s.out, "filter: %s  search: %q\n", s.query.Filter, s.query.Search)
	}
	renderList(s.out, s.app.TaskStore.List(s.query), s.now())
}

func (s *shell) exec(ctx context.Context, line string, readLine lineReader) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
		return nil
	case "add":
		title, priority, due, err := parseAddArgs(args)
		if err != nil {
			return err
		}
		return addTask(ctx, s.out, s.app, title, priority, due)
	case "list", "ls":
		s.render()
		return nil
	case "filter":
		f, err := application.ParseFilter(strings.Join(args, " "))
		if err != nil {
			return err
		}
		s.query.Filter = f
		s.dirty.Store(true)
		return nil
	case "search":
		s.query.Search = strings.Join(args, " ")
		s.dirty.Store(true)
		return nil
	case "stats":
		renderStats(s.out, s.app.TaskStore.Stats())
		return nil
	case "theme":
		if s.app.SettingsService == nil {
			return errSettingsUnavailable
		}
		return toggleTheme(ctx, s.out, s.app.SettingsService)
	case "settings":
		return s.runSettings(ctx, args)
	}

	id, err := singleID(verb, args)
	if err != nil {
		return err
	}
	switch verb {
	case "toggle", "done":
		return toggleTask(ctx, s.out, s.app, id)
	case "rm", "remove", "delete":
		return removeTask(ctx, readLine, s.out, s.app, id, false)
	case "start":
		return startTimer(ctx, s.out, s.app, id)
	case "pause":
		return pauseTimer(ctx, s.out, s.app, id)
	case "reset":
		return resetTimer(ctx, s.out, s.app, id)
	}
	return fmt.Errorf("unknown command %q, type help", verb)
}

func (s *shell) runSettings(ctx context.Context, args []string) error {
	svc := s.app.SettingsService
	if svc == nil {
		return errSettingsUnavailable
	}
	if len(args) == 0 {
		return errors.New("usage: settings get [key] | settings set <key> <value>")
	}
	switch args[0] {
	case "get":
		keys := args[1:]
		if len(keys) == 0 {
			keys = settings.KnownKeys()
		}
		return printSettings(ctx, s.out, svc, keys)
	case "set":
		if len(args) < 3 {
			return errors.New("usage: settings set <key> <value>")
		}
		if err := svc.Set(ctx, args[1], strings.Join(args[2:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Setting saved.")
		return nil
	}
	return fmt.Errorf("unknown settings command %q", args[0])
}

var shellIDVerbs = map[string]bool{
	"toggle": true, "done": true,
	"rm": true, "remove": true, "delete": true,
	"start": true, "pause": true, "reset": true,
}

func singleID(verb string, args []string) (string, error) {
	if !shellIDVerbs[verb] {
		return "", fmt.Errorf("unknown command %q, type help", verb)
	}
	if len(args) != 1 {
		return "", fmt.Errorf("usage: %s <id>", verb)
	}
	return args[0], nil
}

// parseAddArgs reads the shell's add syntax. Remaining words form the title.
func parseAddArgs(args []string) (title, priority, due string, err error) {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVarP(&priority, "priority", "p", "", "")
	fs.StringVar(&due, "due", "", "")
	if err := fs.Parse(args); err != nil {
		return "", "", "", fmt.Errorf("add: %w", err)
	}
	title = strings.Trim(strings.Join(fs.Args(), " "), `"'`)
	return title, priority, due, nil
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
