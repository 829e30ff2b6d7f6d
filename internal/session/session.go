// Package session owns the process-wide log and trace files of a harness run.
//
// A Session is begun once, at startup, and lives until the process exits.
// There is no End: the files are released when the process terminates.
//
// Two files are written under <baseDir>/logs:
//
//	<base>_<YYYYmmdd_HHMMSS>.log        everything printed to Out and Err, plus log records
//	<base>_<YYYYmmdd_HHMMSS>.trace.log  one line per step with timestamp, file:line and function
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Options tunes Begin. Zero values select the process defaults.
type Options struct {
	// Stdout and Stderr are the console streams mirrored into the log file.
	Stdout io.Writer
	Stderr io.Writer

	// LogsDir replaces <baseDir>/logs.
	LogsDir string

	// Verbose lowers the console and log file level to debug.
	Verbose bool

	// Now is the capture-time clock used for file names and headers.
	Now func() time.Time
}

// Session is the logging context of one run.
type Session struct {
	runID     string
	logPath   string
	tracePath string

	logFile   *os.File
	traceFile *os.File

	out   io.Writer
	err   io.Writer
	log   *slog.Logger
	trace *slog.Logger
	now   func() time.Time
}

// Begin creates the logs directory if needed, opens both files and wires
// the mirrored streams and loggers.
//
// baseDir is the caller's location, not this package's; baseName is the
// caller identity. File names embed the capture time, and a numeric suffix
// is added if a file of that name already exists.
func Begin(baseDir, baseName string, opts Options) (*Session, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	dir := opts.LogsDir
	if dir == "" {
		dir = filepath.Join(baseDir, "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	started := opts.Now()
	stem := filepath.Join(dir, fmt.Sprintf("%s_%s", sanitize(baseName), started.Format("20060102_150405")))
	logFile, traceFile, err := createPair(stem)
	if err != nil {
		return nil, err
	}

	s := &Session{
		runID:     uuid.Must(uuid.NewV7()).String(),
		logPath:   logFile.Name(),
		tracePath: traceFile.Name(),
		logFile:   logFile,
		traceFile: traceFile,
		out:       io.MultiWriter(opts.Stdout, logFile),
		err:       io.MultiWriter(opts.Stderr, logFile),
		now:       opts.Now,
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	traceH := newTraceHandler(traceFile, slog.LevelDebug)
	s.trace = slog.New(traceH)
	s.log = slog.New(fanout{
		newConsoleHandler(opts.Stderr, level),
		slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}),
		traceH,
	})

	header := fmt.Sprintf("# %s session %s started %s\n", sanitize(baseName), s.runID, started.Format(time.RFC3339Nano))
	if err := writeHeader(header, logFile, traceFile); err != nil {
		return nil, err
	}
	s.trace.Debug("session started", "log", s.logPath, "trace", s.tracePath)

	return s, nil
}

// writeHeader writes header to every file. On failure all files are
// closed, since the session will never own them.
func writeHeader(header string, files ...*os.File) error {
	for _, f := range files {
		if _, err := io.WriteString(f, header); err != nil {
			for _, c := range files {
				c.Close()
			}
			return fmt.Errorf("failed to write header to %s: %w", filepath.Base(f.Name()), err)
		}
	}
	return nil
}

// createPair opens <stem>.log and <stem>.trace.log exclusively, adding
// -1, -2, ... to stem until neither file exists.
func createPair(stem string) (*os.File, *os.File, error) {
	const flags = os.O_CREATE | os.O_EXCL | os.O_WRONLY | os.O_APPEND
	for i := 0; i < 1000; i++ {
		name := stem
		if i > 0 {
			name = fmt.Sprintf("%s-%d", stem, i)
		}
		logFile, err := os.OpenFile(name+".log", flags, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create log file: %w", err)
		}
		traceFile, err := os.OpenFile(name+".trace.log", flags, 0644)
		if errors.Is(err, fs.ErrExist) {
			logFile.Close()
			os.Remove(logFile.Name())
			continue
		}
		if err != nil {
			logFile.Close()
			return nil, nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		return logFile, traceFile, nil
	}
	return nil, nil, fmt.Errorf("failed to create log files: too many sessions named %s", filepath.Base(stem))
}

func newConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		NoColor:    !isTerminal(w),
		TimeFormat: time.TimeOnly,
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// sanitize makes a caller identity safe for use in a file name.
func sanitize(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." {
		return "session"
	}
	return name
}

// RunID is a time-ordered identifier (UUIDv7) written in both file headers.
func (s *Session) RunID() string { return s.runID }

// LogPath returns the mirrored log file.
func (s *Session) LogPath() string { return s.logPath }

// TracePath returns the execution trace file.
func (s *Session) TracePath() string { return s.tracePath }

// Out mirrors to the console stdout and the log file.
func (s *Session) Out() io.Writer { return s.out }

// Err mirrors to the console stderr and the log file.
func (s *Session) Err() io.Writer { return s.err }

// Log is the human-facing logger: console, log file and trace.
func (s *Session) Log() *slog.Logger { return s.log }

// Trace writes to the trace file only, at debug level.
func (s *Session) Trace() *slog.Logger { return s.trace }

// Check records an advisory line naming the caller's file:line and op when
// err is non-nil, then returns err unchanged.
//
//	target, err := resolver.Resolve()
//	if err := s.Check("resolve port", err); err != nil {
//		return err
//	}
func (s *Session) Check(op string, err error) error {
	if err == nil {
		return nil
	}
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:]) // skip Callers and Check
	unit, line, _ := locate(pcs[0])

	fmt.Fprintf(s.err, "advisory: %s:%d: %s failed: %v\n", unit, line, op, err)

	r := slog.NewRecord(s.now(), slog.LevelWarn, "advisory", pcs[0])
	r.AddAttrs(slog.String("op", op), slog.String("error", err.Error()))
	_ = s.trace.Handler().Handle(context.Background(), r)
	return err
}

// Close releases both files. Writes after Close are lost.
func (s *Session) Close() error {
	return errors.Join(s.logFile.Close(), s.traceFile.Close())
}
