package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdf-agent/backend/internal/citation"
	"github.com/pdf-agent/backend/internal/llm/llmtest"
)

func TestGenerate_NormalizesCitations(t *testing.T) {
	mock := &llmtest.MockCompleter{CompleteFunc: llmtest.Reply(
		"The warranty lasts two years [Citation: covered for 24 months (handbook(0))]. " +
			"Returns need a receipt [Citation: proof of purchase is required]."),
	}

	got, err := NewGenerator(mock, 0).Generate(context.Background(),
		"How long is the warranty?", "handbook.pdf", "--- Page 1 ---\ncovered for 24 months")
	require.NoError(t, err)

	assert.Equal(t,
		"The warranty lasts two years [Citation: covered for 24 months (handbook.pdf(1))]. "+
			"Returns need a receipt [Citation: proof of purchase is required (handbook.pdf(2))].",
		got.Text)
	require.Len(t, got.Citations, 2)
	assert.Equal(t, citation.Citation{Text: "covered for 24 months", Document: "handbook.pdf", Index: 1}, got.Citations[0])
	assert.True(t, citation.Valid(got.Text))
	assert.True(t, got.Reformatted)

	require.Equal(t, 1, mock.Calls())
	req := mock.Requests[0]
	assert.Contains(t, req.UserPrompt, "Document name: handbook.pdf")
	assert.Contains(t, req.UserPrompt, "covered for 24 months")
	assert.Contains(t, req.UserPrompt, "How long is the warranty?")
	assert.NotEmpty(t, req.SystemPrompt)
	assert.False(t, req.JSON)
}

func TestGenerate_WellFormedMarkersKept(t *testing.T) {
	reply := "Two years [Citation: see clause [3] (handbook.pdf(1))]."
	mock := &llmtest.MockCompleter{CompleteFunc: llmtest.Reply(reply)}

	got, err := NewGenerator(mock, 0).Generate(context.Background(), "q", "handbook.pdf", "text")
	require.NoError(t, err)

	assert.Equal(t, reply, got.Text)
	assert.False(t, got.Reformatted)
	assert.Equal(t, citation.Extract(reply), got.Citations)
}

func TestGenerate_TruncatesLongDocuments(t *testing.T) {
	mock := &llmtest.MockCompleter{CompleteFunc: llmtest.Reply("ok")}
	text := strings.Repeat("é", 50) + "TAIL"

	_, err := NewGenerator(mock, 50).Generate(context.Background(), "q", "doc.pdf", text)
	require.NoError(t, err)

	prompt := mock.Requests[0].UserPrompt
	assert.Contains(t, prompt, strings.Repeat("é", 50)+truncationNotice)
	assert.NotContains(t, prompt, "TAIL")
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("model failure", func(t *testing.T) {
		cause := errors.New("401 unauthorized")
		mock := &llmtest.MockCompleter{CompleteFunc: llmtest.Fail(cause)}

		got, err := NewGenerator(mock, 0).Generate(context.Background(), "q", "doc.pdf", "text")
		assert.Nil(t, got)

		var ge *GenerationError
		require.True(t, errors.As(err, &ge))
		assert.Equal(t, "doc.pdf", ge.Document)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("blank answer", func(t *testing.T) {
		mock := &llmtest.MockCompleter{CompleteFunc: llmtest.Reply("   \n")}

		_, err := NewGenerator(mock, 0).Generate(context.Background(), "q", "doc.pdf", "text")

		var ge *GenerationError
		assert.True(t, errors.As(err, &ge))
	})
}

func TestTruncate(t *testing.T) {
	out, cut := truncate("short", 10)
	assert.Equal(t, "short", out)
	assert.False(t, cut)

	out, cut = truncate("abcdef", 0)
	assert.Equal(t, "abcdef", out)
	assert.False(t, cut)

	out, cut = truncate("abcdef", 3)
	assert.Equal(t, "abc"+truncationNotice, out)
	assert.True(t, cut)
}
