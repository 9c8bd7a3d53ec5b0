package gemini

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/newslens/internal/classifier"
)

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("entailment").Parse(promptSource))

// promptData represents the data passed to the prompt template
type promptData struct {
	Text   string
	Label1 string
	Label2 string
}

// ResponseSchema represents the expected structure of the model reply
type ResponseSchema struct {
	// Scores holds one entailment score per hypothesis, in label order
	Scores []float64 `json:"scores"`
}

func renderPrompt(text string, labels classifier.Labels) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", classifier.ErrEmptyText
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, promptData{
		Text:   text,
		Label1: labels[0],
		Label2: labels[1],
	}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
