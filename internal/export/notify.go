package export

import (
	"context"
	"log/slog"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is the user-facing outcome of an export.
type Notification struct {
	Level    Level  `json:"level"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	FileName string `json:"file_name,omitempty"`
	Format   Format `json:"format,omitempty"`
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n at info or error level.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	if l.Logger == nil {
		return
	}
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelError
	}
	l.Logger.Log(ctx, level, n.Title, "message", n.Message, "file", n.FileName, "format", n.Format)
}

type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// MultiNotifier fans out to every non-nil notifier.
func MultiNotifier(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}
