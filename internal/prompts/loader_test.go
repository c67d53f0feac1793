package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_AllKeysPresent(t *testing.T) {
	for _, key := range []string{RankFilesSystem, RankFiles, AnswerSystem, Answer, EvaluateSystem, Evaluate} {
		prompt, err := Get(key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt, key)
	}
}

func TestGet_UnknownKey(t *testing.T) {
	_, err := Get("does-not-exist")
	assert.Error(t, err)
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() { MustGet("does-not-exist") })
}

func TestFormat(t *testing.T) {
	out := Format("Q: {{.Question}} / {{.Question}} / {{.Missing}}", map[string]string{
		"Question": "why?",
	})
	assert.Equal(t, "Q: why? / why? / {{.Missing}}", out)
}

func TestFormat_DoesNotReexpandValues(t *testing.T) {
	out := Format("{{.A}} {{.B}}", map[string]string{
		"A": "{{.B}}",
		"B": "b",
	})
	assert.Equal(t, "{{.B}} b", out)
}

func TestRender_AnswerContainsCitationFormat(t *testing.T) {
	out, err := Render(Answer, map[string]string{
		"DocumentName": "report.pdf",
		"Document":     "body",
		"Question":     "what?",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "[Citation: <cited text> (report.pdf(<index>))]")
	assert.NotContains(t, out, "{{.")
}
