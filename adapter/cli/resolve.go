package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/felixgeelhaar/gestaches/internal/tasks/application"
)

// resolveTask turns a full id or unique prefix into a task view.
func resolveTask(a *App, ref string) (application.TaskView, error) {
	v, err := a.TaskStore.Lookup(ref)
	if err != nil {
		return application.TaskView{}, fmt.Errorf("%w: %s", err, ref)
	}
	return v, nil
}

// lineReader returns one input line per call.
type lineReader func() (string, error)

func readerLines(in io.Reader) lineReader {
	r := bufio.NewReader(in)
	return func() (string, error) {
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return line, nil
	}
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(readLine lineReader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := readLine()
	if err != nil {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// syncWriter serializes writes from command code and event consumers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) *syncWriter {
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
