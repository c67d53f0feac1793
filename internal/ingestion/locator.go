package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdf-agent/backend/pkg/logger"
)

const pdfExt = ".pdf"

// Locator lists the PDFs directly inside one folder.
type Locator struct {
	folder string
}

func NewLocator(folder string) *Locator {
	return &Locator{folder: folder}
}

func (l *Locator) Folder() string {
	return l.folder
}

// Locate returns the paths of regular *.pdf files (any case) in the folder,
// sorted by name. Subdirectories are not descended into.
func (l *Locator) Locate(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(l.folder)
	if err != nil {
		return nil, &NotFoundError{Path: l.folder, Cause: err}
	}
	if !info.IsDir() {
		return nil, &NotFoundError{Path: l.folder}
	}

	entries, err := os.ReadDir(l.folder)
	if err != nil {
		return nil, &NotFoundError{Path: l.folder, Cause: err}
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsPDF(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(l.folder, entry.Name()))
	}

	logger.Debug("PDFs located",
		zap.String("folder", l.folder),
		zap.Int("count", len(paths)),
	)

	return paths, nil
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), pdfExt)
}

// DocumentName is the base name used to identify a PDF to the model and in citations.
func DocumentName(path string) string {
	return filepath.Base(path)
}

// Title is the base name without its extension.
func Title(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
