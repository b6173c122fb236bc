package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/jobsite/internal/metrics"
)

// Options selects the format and file name of an export.
type Options struct {
	Format   Format `json:"format"`
	FileName string `json:"file_name"`
	// Fallback is used when FileName is blank.
	Fallback string `json:"-"`
}

// Result describes a completed export.
type Result struct {
	FileName string `json:"file_name"`
	Format   Format `json:"format"`
	Rows     int    `json:"rows"`
	Bytes    int    `json:"bytes"`
}

// Coordinator dispatches tables to format writers.
type Coordinator struct {
	writers  map[Format]Writer
	notifier Notifier
	delay    time.Duration
	logger   *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWriter registers or replaces the writer for a format.
func WithWriter(format Format, w Writer) Option {
	return func(c *Coordinator) { c.writers[format] = w }
}

// WithNotifier sets the notifier that receives success and failure outcomes.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithDelay simulates a round trip to a remote export service.
func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a coordinator with the CSV, Excel and PDF writers registered.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		writers: map[Format]Writer{
			FormatCSV:   CSVWriter{},
			FormatExcel: ExcelWriter{},
			FormatPDF:   PDFWriter{},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Export renders table with the writer for opts.Format and stores it in sink.
// Writer failures are reported to the notifier and returned; nothing is retried
// and the sink is not opened unless the writer succeeds.
func (c *Coordinator) Export(ctx context.Context, sink Sink, table Table, opts Options) (Result, error) {
	started := time.Now()
	fallback := opts.Fallback
	if fallback == "" {
		fallback = "export"
	}
	fileName := opts.Format.FileName(opts.FileName, fallback)

	result, err := c.export(ctx, sink, table, opts.Format, fileName)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		c.notify(ctx, Notification{
			Level:    LevelError,
			Title:    "Export failed",
			Message:  err.Error(),
			FileName: fileName,
			Format:   opts.Format,
		})
	} else {
		c.notify(ctx, Notification{
			Level:    LevelSuccess,
			Title:    "Export complete",
			Message:  fmt.Sprintf("%d rows exported", result.Rows),
			FileName: fileName,
			Format:   opts.Format,
		})
	}
	metrics.ObserveExport(string(opts.Format), outcome, time.Since(started))
	return result, err
}

func (c *Coordinator) export(ctx context.Context, sink Sink, table Table, format Format, fileName string) (Result, error) {
	writer, ok := c.writers[format]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := c.wait(ctx); err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := writer.Write(ctx, &buf, table); err != nil {
		if c.logger != nil {
			c.logger.Error("export writer failed", "format", format, "file", fileName, "error", err)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrWriterFailed, err)
	}

	out, err := sink.Open(fileName)
	if err != nil {
		return Result{}, fmt.Errorf("open export sink: %w", err)
	}
	n, err := out.Write(buf.Bytes())
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Result{}, fmt.Errorf("store export: %w", err)
	}

	return Result{FileName: fileName, Format: format, Rows: len(table.Rows), Bytes: n}, nil
}

func (c *Coordinator) wait(ctx context.Context) error {
	if c.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Coordinator) notify(ctx context.Context, n Notification) {
	if c.notifier != nil {
		c.notifier.Notify(ctx, n)
	}
}
