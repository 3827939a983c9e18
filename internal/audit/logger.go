package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	LevelInfo = "info"
	LevelErr  = "err"

	defaultFileMode  = 0o600
	defaultDirMode   = 0o755
	defaultLineBreak = '\n'
)

// Interaction is one handled command, one JSON line in the log.
type Interaction struct {
	Timestamp time.Time `json:"ts"`
	Level     string    `json:"level"`
	UserID    string    `json:"user"`
	ChannelID string    `json:"channel,omitempty"`
	GuildID   string    `json:"guild,omitempty"`
	Command   string    `json:"command"`
	Message   string    `json:"message,omitempty"`
}

type Logger struct {
	path   string
	now    func() time.Time
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFileMode)
	if err != nil {
		return nil, err
	}
	return &Logger{path: path, now: time.Now, file: f, writer: bufio.NewWriterSize(f, 32*1024)}, nil
}

// LogInteraction appends rec, stamping the time when it is unset. A nil
// Logger discards the record.
func (l *Logger) LogInteraction(ctx context.Context, rec Interaction) error {
	_ = ctx
	if l == nil {
		return nil
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = l.now().UTC()
	}
	if rec.Level == "" {
		rec.Level = LevelInfo
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	line = append(line, defaultLineBreak)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil || l.writer == nil {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, defaultFileMode)
		if err != nil {
			return err
		}
		l.file = f
		l.writer = bufio.NewWriterSize(f, 32*1024)
	}

	if _, err := l.writer.Write(line); err != nil {
		return err
	}
	if err := l.writer.Flush(); err != nil {
		return err
	}
	if rec.Level == LevelErr {
		return l.file.Sync()
	}
	return nil
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	var err error
	if l.writer != nil {
		err = l.writer.Flush()
	}
	if serr := l.file.Sync(); err == nil {
		err = serr
	}
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	l.writer = nil
	return err
}
