package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/pdf-agent/backend/pkg/logger"
)

// PDFExtractor pulls the plain text out of a PDF, page by page.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the document text with a "--- Page N ---" line before each
// page that has text. A document with no extractable text (e.g. scanned images)
// is an ExtractionError.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Path: path, Message: "corrupt PDF", Cause: fmt.Errorf("%v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", &ExtractionError{Path: path, Message: "cannot open PDF", Cause: err}
	}
	defer f.Close()

	var builder strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractionError{Path: path, Message: fmt.Sprintf("cannot read page %d", i), Cause: err}
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(fmt.Sprintf("--- Page %d ---\n", i))
		builder.WriteString(pageText)
	}

	if builder.Len() == 0 {
		return "", &ExtractionError{Path: path, Message: "no extractable text"}
	}

	logger.Debug("PDF text extracted",
		zap.String("pdf", path),
		zap.Int("pages", pages),
		zap.Int("chars", builder.Len()),
	)

	return builder.String(), nil
}
