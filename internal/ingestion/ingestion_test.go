package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPDF writes a minimal single-page PDF showing text in Helvetica.
// An empty text produces a page with no text objects.
func writeTestPDF(t *testing.T, dir, name, text string) string {
	t.Helper()

	content := "BT ET"
	if text != "" {
		content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLocator_Locate(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested.pdf", "deep.pdf"), []byte("x"), 0o644))

	paths, err := NewLocator(dir).Locate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.PDF"),
		filepath.Join(dir, "b.pdf"),
	}, paths)
}

func TestLocator_EmptyFolder(t *testing.T) {
	paths, err := NewLocator(t.TempDir()).Locate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestLocator_NotFound(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := NewLocator(filepath.Join(t.TempDir(), "nope")).Locate(context.Background())

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("file instead of folder", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.pdf")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := NewLocator(file).Locate(context.Background())

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, file, nf.Path)
	})
}

func TestLocator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocator(t.TempDir()).Locate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Annual Report.pdf", DocumentName("/x/y/Annual Report.pdf"))
	assert.Equal(t, "Annual Report", Title("/x/y/Annual Report.pdf"))
	assert.True(t, IsPDF("A.Pdf"))
	assert.False(t, IsPDF("a.pdfx"))
}

func TestPDFExtractor_Extract(t *testing.T) {
	path := writeTestPDF(t, t.TempDir(), "hello.pdf", "Hello PDF agent")

	text, err := NewPDFExtractor().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, text, "--- Page 1 ---")
	assert.Contains(t, text, "Hello")
}

func TestPDFExtractor_Failures(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.pdf")
	require.NoError(t, os.WriteFile(corrupt, []byte("this is not a pdf at all"), 0o644))

	truncated := filepath.Join(dir, "truncated.pdf")
	require.NoError(t, os.WriteFile(truncated, []byte("%PDF-1.4\n1 0 obj\n<<"), 0o644))

	blank := writeTestPDF(t, dir, "blank.pdf", "")

	tests := []struct {
		name string
		path string
	}{
		{"corrupt", corrupt},
		{"truncated", truncated},
		{"no text", blank},
		{"missing", filepath.Join(dir, "missing.pdf")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewPDFExtractor().Extract(context.Background(), tt.path)
			assert.Empty(t, text)

			var ee *ExtractionError
			require.True(t, errors.As(err, &ee), "got %v", err)
			assert.Equal(t, tt.path, ee.Path)
		})
	}
}
