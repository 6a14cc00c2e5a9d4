package agent

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// PromptName identifies a system/user prompt pair of the catalogue.
type PromptName string

const (
	PromptSpeakerMapping PromptName = "speaker_mapping"
	PromptInferAgenda    PromptName = "infer_agenda"
	PromptProtocol       PromptName = "create_meeting_protocol"
	PromptFilename       PromptName = "create_filename"
	PromptInferLanguage  PromptName = "infer_language"
	PromptEnsureLanguage PromptName = "ensure_language"
	PromptEnsureMarkdown PromptName = "ensure_markdown"
)

// Vars are the placeholder values of a prompt. Every placeholder a template
// references must be present, empty values included.
type Vars map[string]string

// Prompt is a fully rendered prompt pair.
type Prompt struct {
	System string
	User   string
}

//go:embed examples/*.txt
var builtinExamples embed.FS

// Catalogue renders the stage prompts. Worked examples are injected as the
// agenda_examples and protocol_examples placeholders.
type Catalogue struct {
	pairs            map[PromptName]pair
	agendaExamples   string
	protocolExamples string
}

type pair struct {
	system *template.Template
	user   *template.Template
}

// NewCatalogue parses the built-in prompt pairs. When examplesDir is not
// empty, its agenda_*.txt and protocol_*.txt files replace the built-in
// examples.
func NewCatalogue(examplesDir string) (*Catalogue, error) {
	c := &Catalogue{pairs: make(map[PromptName]pair, len(promptTexts))}

	for name, texts := range promptTexts {
		sys, err := parseTemplate(string(name)+".system", texts[0])
		if err != nil {
			return nil, err
		}
		usr, err := parseTemplate(string(name)+".user", texts[1])
		if err != nil {
			return nil, err
		}
		c.pairs[name] = pair{system: sys, user: usr}
	}

	var err error
	if examplesDir != "" {
		c.agendaExamples, err = readExamplesDir(examplesDir, "agenda_*.txt")
		if err == nil {
			c.protocolExamples, err = readExamplesDir(examplesDir, "protocol_*.txt")
		}
	} else {
		c.agendaExamples, err = readBuiltinExamples("examples/agenda_*.txt")
		if err == nil {
			c.protocolExamples, err = readBuiltinExamples("examples/protocol_*.txt")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load prompt examples: %w", err)
	}
	return c, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return t, nil
}

// Render substitutes vars into the named pair.
func (c *Catalogue) Render(name PromptName, vars Vars) (Prompt, error) {
	p, ok := c.pairs[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt %q", name)
	}

	data := make(map[string]string, len(vars)+2)
	data["agenda_examples"] = c.agendaExamples
	data["protocol_examples"] = c.protocolExamples
	for k, v := range vars {
		data[k] = v
	}

	system, err := execute(p.system, data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := execute(p.user, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, User: user}, nil
}

func execute(t *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func readBuiltinExamples(pattern string) (string, error) {
	names, err := fs.Glob(builtinExamples, pattern)
	if err != nil {
		return "", err
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := builtinExamples.ReadFile(name)
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(string(data)))
	}
	return joinExamples(parts), nil
}

func readExamplesDir(dir, pattern string) (string, error) {
	names, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no %s files in %s", pattern, dir)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.TrimSpace(string(data)))
	}
	return joinExamples(parts), nil
}

func joinExamples(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		fmt.Fprintf(&b, "Example %d:\n%s\n\n", i+1, p)
	}
	return strings.TrimSpace(b.String())
}
