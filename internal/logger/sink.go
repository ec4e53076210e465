package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Sink is the append-only textual event log named in the external
// interfaces: one record per line, "[<ISO-8601 timestamp>]: <message>\n".
// It is the Logger a Child/Program emits spawn/exit/restart events through.
type Sink struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewSink opens (creating if absent) the log file at path for appending.
func NewSink(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Sink{path: path, file: f}, nil
}

// Logf implements child.Logger / program.Logger: formats and appends one
// timestamped record.
func (s *Sink) Logf(format string, args ...any) {
	line := fmt.Sprintf("[%s]: %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		_, _ = s.file.WriteString(line)
	}
}

// Stream copies the log file's current contents to w, for the REPL's `log`
// command.
func (s *Sink) Stream(w io.Writer) error {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Close releases the underlying file handle.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
