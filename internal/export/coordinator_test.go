package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/jobsite/internal/export"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type row struct {
	ID   string
	Name string
}

func sampleTable(rows ...row) export.Table {
	return export.NewTable("Permit Log", rows, []export.Column[row]{
		{Header: "ID", Value: func(r row) string { return r.ID }},
		{Header: "Name", Value: func(r row) string { return r.Name }},
	})
}

type collector struct {
	got []export.Notification
}

func (c *collector) Notify(_ context.Context, n export.Notification) {
	c.got = append(c.got, n)
}

func TestCoordinator_CSV(t *testing.T) {
	notes := &collector{}
	c := export.NewCoordinator(export.WithNotifier(notes))
	sink := &export.MemorySink{}

	res, err := c.Export(context.Background(), sink, sampleTable(row{"1", "Grading"}, row{"2", "Fire, alarm"}), export.Options{
		Format:   export.FormatCSV,
		FileName: "permits",
	})
	require.NoError(t, err)
	require.Equal(t, "permits.csv", res.FileName)
	require.Equal(t, 2, res.Rows)
	require.Equal(t, "permits.csv", sink.FileName)

	records, err := csv.NewReader(bytes.NewReader(sink.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{{"ID", "Name"}, {"1", "Grading"}, {"2", "Fire, alarm"}}, records)

	require.Len(t, notes.got, 1)
	require.Equal(t, export.LevelSuccess, notes.got[0].Level)
}

func TestCoordinator_Excel(t *testing.T) {
	c := export.NewCoordinator()
	sink := &export.MemorySink{}

	res, err := c.Export(context.Background(), sink, sampleTable(row{"1", "Grading"}), export.Options{
		Format:   export.FormatExcel,
		FileName: "log.xlsx",
	})
	require.NoError(t, err)
	require.Equal(t, "log.xlsx", res.FileName)

	f, err := excelize.OpenReader(bytes.NewReader(sink.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows("Permit Log")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"ID", "Name"}, {"1", "Grading"}}, rows)
}

func TestCoordinator_PDF(t *testing.T) {
	c := export.NewCoordinator()
	sink := &export.MemorySink{}

	_, err := c.Export(context.Background(), sink, sampleTable(row{"1", "A very long permit name that will not fit inside the column at all, not even close"}), export.Options{
		Format: export.FormatPDF,
	})
	require.NoError(t, err)
	require.Equal(t, "export.pdf", sink.FileName)
	require.True(t, bytes.HasPrefix(sink.Bytes(), []byte("%PDF-")))
}

func TestCoordinator_EmptyTableStillCallsWriter(t *testing.T) {
	called := 0
	notes := &collector{}
	c := export.NewCoordinator(
		export.WithNotifier(notes),
		export.WithWriter(export.FormatCSV, export.WriterFunc(func(_ context.Context, w io.Writer, table export.Table) error {
			called++
			require.Empty(t, table.Rows)
			_, err := w.Write([]byte("ok"))
			return err
		})),
	)

	res, err := c.Export(context.Background(), &export.MemorySink{}, sampleTable(), export.Options{Format: export.FormatCSV})
	require.NoError(t, err)
	require.Equal(t, 1, called)
	require.Zero(t, res.Rows)
	require.Equal(t, export.LevelSuccess, notes.got[0].Level)
}

func TestCoordinator_WriterFailureNotifiesWithoutRetry(t *testing.T) {
	called := 0
	notes := &collector{}
	c := export.NewCoordinator(
		export.WithNotifier(notes),
		export.WithWriter(export.FormatPDF, export.WriterFunc(func(context.Context, io.Writer, export.Table) error {
			called++
			return errors.New("font missing")
		})),
	)
	sink := &export.MemorySink{}

	_, err := c.Export(context.Background(), sink, sampleTable(row{"1", "x"}), export.Options{Format: export.FormatPDF, FileName: "r"})
	require.ErrorIs(t, err, export.ErrWriterFailed)
	require.Equal(t, 1, called)
	require.Empty(t, sink.FileName, "sink must not be opened on failure")

	require.Len(t, notes.got, 1)
	require.Equal(t, export.LevelError, notes.got[0].Level)
	require.Equal(t, "r.pdf", notes.got[0].FileName)
	require.Contains(t, notes.got[0].Message, "font missing")
}

func TestCoordinator_UnsupportedFormat(t *testing.T) {
	notes := &collector{}
	c := export.NewCoordinator(export.WithNotifier(notes))

	_, err := c.Export(context.Background(), &export.MemorySink{}, sampleTable(), export.Options{Format: "docx"})
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
	require.Equal(t, export.LevelError, notes.got[0].Level)
}

func TestCoordinator_DelayHonoursCancellation(t *testing.T) {
	c := export.NewCoordinator(export.WithDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Export(ctx, &export.MemorySink{}, sampleTable(), export.Options{Format: export.FormatCSV})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCoordinator_DirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	c := export.NewCoordinator(export.WithDelay(time.Millisecond))

	res, err := c.Export(context.Background(), export.DirSink{Dir: dir}, sampleTable(row{"1", "x"}), export.Options{
		Format:   export.FormatCSV,
		FileName: "../escape",
	})
	require.NoError(t, err)
	require.Equal(t, "escape.csv", res.FileName)

	data, err := os.ReadFile(filepath.Join(dir, "escape.csv"))
	require.NoError(t, err)
	require.Equal(t, "ID,Name\n1,x\n", string(data))
}

func TestLookupFormat(t *testing.T) {
	for raw, want := range map[string]export.Format{"PDF": export.FormatPDF, "xlsx": export.FormatExcel, " csv ": export.FormatCSV, "excel": export.FormatExcel} {
		require.Equal(t, want, export.LookupFormat(raw))
	}
	require.Equal(t, export.Format("docx"), export.LookupFormat(" DOCX"))
}

func TestCoordinator_UnknownLookedUpFormatIsNotified(t *testing.T) {
	notes := &collector{}
	c := export.NewCoordinator(export.WithNotifier(notes))

	_, err := c.Export(context.Background(), &export.MemorySink{}, sampleTable(), export.Options{Format: export.LookupFormat("docx"), FileName: "q1"})
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
	require.Len(t, notes.got, 1)
	require.Equal(t, export.LevelError, notes.got[0].Level)
	require.Equal(t, "q1", notes.got[0].FileName)
}
