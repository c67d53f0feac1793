// Package citation formats, parses and normalizes the inline citation markers
// embedded in generated answers:
//
//	[Citation: <cited text> (<document name>(<index>))]
//
// Indices are 1-based and count citations in order of appearance within one answer.
package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Citation is one parsed marker.
type Citation struct {
	Text     string `json:"text"`
	Document string `json:"document"`
	Index    int    `json:"index"`
}

// citedText is the quoted passage. It may hold balanced single-level
// brackets such as "clause [3]".
const citedText = `((?:[^\[\]]|\[[^\[\]]*\])+?)`

var (
	// strict matches only well-formed markers.
	strict = regexp.MustCompile(`(?s)\[Citation: ` + citedText + ` \(([^()\]]+)\((\d+)\)\)\]`)
	// loose also accepts a missing index or document, odd spacing and case.
	loose = regexp.MustCompile(`(?is)\[\s*citation:\s*` + citedText + `(?:\s*\(([^()\]]*?)(?:\((\d+)\))?\))?\s*\]`)
)

// Format renders one marker.
func Format(text, document string, index int) string {
	return fmt.Sprintf("[Citation: %s (%s(%d))]", collapse(text), document, index)
}

func (c Citation) String() string {
	return Format(c.Text, c.Document, c.Index)
}

// Extract returns the well-formed markers in answer, in order.
func Extract(answer string) []Citation {
	matches := strict.FindAllStringSubmatch(answer, -1)
	citations := make([]Citation, 0, len(matches))
	for _, m := range matches {
		index, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		citations = append(citations, Citation{Text: m[1], Document: m[2], Index: index})
	}
	return citations
}

// Normalize rewrites every marker the model produced, well-formed or not, so
// that it names document and is numbered 1..n in order of appearance.
// Markers with no cited text are dropped.
func Normalize(answer, document string) (string, []Citation) {
	var citations []Citation

	out := loose.ReplaceAllStringFunc(answer, func(marker string) string {
		m := loose.FindStringSubmatch(marker)
		text := collapse(m[1])
		if text == "" {
			return ""
		}
		c := Citation{Text: text, Document: document, Index: len(citations) + 1}
		citations = append(citations, c)
		return c.String()
	})

	return out, citations
}

// Valid reports whether every marker-like span in answer is well-formed.
func Valid(answer string) bool {
	return len(loose.FindAllStringIndex(answer, -1)) == len(strict.FindAllStringIndex(answer, -1))
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
