package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/shelfsync/internal/filex"
	"github.com/dmitrijs2005/shelfsync/internal/models"
)

// nowMillis is a test seam for the record modification clock.
var nowMillis = func() int64 { return time.Now().UnixMilli() }

// defaultFontSize is the reader font size a freshly added book starts with.
const defaultFontSize = 16

// List prints the local library, one record per line.
func (a *App) List(ctx context.Context) error {
	all, err := a.records.LoadAll(ctx)
	if err != nil {
		a.log.Error(ctx, "loading library", "error", err)
		return err
	}

	if len(all) == 0 {
		printlnFn("Library is empty.")
		return nil
	}

	for _, r := range all {
		printlnFn(fmt.Sprintf("%s  %-30s %-20s %3.0f%%", r.ID, r.Title, r.Author, r.Progress*100))
	}
	return nil
}

// Add reads a book file from disk and stores it as a new library record.
// The title defaults to the file name without extension.
func (a *App) Add(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		a.log.Error(ctx, "reading book file", "path", path, "error", err)
		return err
	}

	base := filepath.Base(path)
	title := strings.TrimSuffix(base, filepath.Ext(base))

	rec := models.Record{
		ID:           uuid.NewString(),
		Title:        title,
		FontSize:     defaultFontSize,
		LastModified: nowMillis(),
		Content:      content,
	}

	if err := a.records.Put(ctx, rec); err != nil {
		a.log.Error(ctx, "saving record", "error", err)
		return err
	}

	printlnFn(fmt.Sprintf("Added %q with id %s", rec.Title, rec.ID))
	return nil
}

// Delete removes a record from the local library. An empty id triggers an
// interactive prompt. The remote copy, if any, is untouched until the next
// sync.
func (a *App) Delete(ctx context.Context, id string) error {
	if id == "" {
		var err error
		id, err = GetSimpleText(a.reader, "Enter record id to delete", os.Stdout)
		if err != nil {
			a.log.Error(ctx, "reading record id", "error", err)
			return err
		}
	}

	if err := a.records.Delete(ctx, id); err != nil {
		a.log.Error(ctx, "deleting record", "id", id, "error", err)
		return err
	}

	printlnFn("Deleted", id)
	return nil
}

// Export writes a record's content into the exports/ subdirectory of the
// working directory and prints the resulting path.
func (a *App) Export(ctx context.Context, id string) error {
	all, err := a.records.LoadAll(ctx)
	if err != nil {
		a.log.Error(ctx, "loading library", "error", err)
		return err
	}

	for _, r := range all {
		if r.ID != id {
			continue
		}

		dir, err := filex.EnsureSubDir("exports")
		if err != nil {
			a.log.Error(ctx, "preparing export directory", "error", err)
			return err
		}

		path := filepath.Join(dir, r.ID+".epub")
		if err := os.WriteFile(path, r.Content, 0o600); err != nil {
			a.log.Error(ctx, "writing export", "path", path, "error", err)
			return err
		}

		printlnFn("Exported to", path)
		return nil
	}

	printlnFn("No record with id", id)
	return nil
}
