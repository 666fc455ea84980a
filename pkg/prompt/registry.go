// Package prompt holds the versioned prompt templates used by every
// LLM-touching module. Each render returns a usage record so a response can
// be traced back to the exact prompt text that produced it.
package prompt

import (
	"bytes"
	"embed"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/leverege/meetingmind/pkg/model"
)

//go:embed manifest.yml
var manifestRaw []byte

//go:embed templates/*.md
var templateFS embed.FS

// ID identifies one prompt template
type ID string

const (
	ClassifyValidate ID = "classify_validate"
	Interpret        ID = "interpret"
	ContractSelect   ID = "contract_select"
	MeetingSummary   ID = "meeting_summary"
	QuoteSelect      ID = "quote_select"
	ExtractAnswer    ID = "extract_answer"
	ActionItems      ID = "action_items"
	Rerank           ID = "rerank"
	Insights         ID = "insights"
	ProductExplain   ID = "product_explanation"
	DraftAssist      ID = "draft_assist"
	GeneralResponse  ID = "general_response"
)

var allIDs = []ID{
	ClassifyValidate, Interpret, ContractSelect, MeetingSummary,
	QuoteSelect, ExtractAnswer, ActionItems, Rerank, Insights,
	ProductExplain, DraftAssist, GeneralResponse,
}

// Registry resolves prompt IDs to parsed templates and version strings
type Registry struct {
	versions  map[ID]string
	templates map[ID]*template.Template
}

type manifest struct {
	Prompts map[string]string `yaml:"prompts"`
}

// New parses the embedded manifest and templates. Every known ID must have
// both a template file and a manifest version; a gap is a startup error.
func New() (*Registry, error) {
	var m manifest
	if err := yaml.Unmarshal(manifestRaw, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to parse prompt manifest")
	}

	r := &Registry{
		versions:  make(map[ID]string, len(allIDs)),
		templates: make(map[ID]*template.Template, len(allIDs)),
	}

	for _, id := range allIDs {
		version, ok := m.Prompts[string(id)]
		if !ok {
			return nil, goerr.New("prompt missing from manifest", goerr.V("prompt", id))
		}

		raw, err := templateFS.ReadFile("templates/" + string(id) + ".md")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read prompt template", goerr.V("prompt", id))
		}

		tmpl, err := template.New(string(id)).Parse(string(raw))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse prompt template", goerr.V("prompt", id))
		}

		r.versions[id] = version
		r.templates[id] = tmpl
	}

	return r, nil
}

// Render executes the template with data and returns the prompt text plus
// the usage record to fold into the request audit map
func (r *Registry) Render(id ID, data any) (string, model.PromptUsage, error) {
	tmpl, ok := r.templates[id]
	if !ok {
		return "", nil, goerr.New("unknown prompt", goerr.V("prompt", id))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", nil, goerr.Wrap(err, "failed to execute prompt template", goerr.V("prompt", id))
	}

	usage := model.PromptUsage{string(id): r.versions[id]}
	return buf.String(), usage, nil
}

// Version returns the manifest version for a prompt ID
func (r *Registry) Version(id ID) string {
	return r.versions[id]
}
