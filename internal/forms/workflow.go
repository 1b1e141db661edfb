package forms

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
)

// SuperragNameMaxLength bounds the index name of a superrag entry.
const SuperragNameMaxLength = 24

// AssistantKeys are the keys a workflow item may use to declare its
// assistant. "llm" is the legacy generic key.
var AssistantKeys = []string{
	"superagent",
	"openai_assistant",
	"perplexity",
	"together_ai",
	"bedrock",
	"groq",
	"mistral",
	"cohere_chat",
	"anthropic",
	"llm",
}

// assistantToolKeys are tool entries that are themselves assistants.
var assistantToolKeys = map[string]bool{
	"superagent":       true,
	"openai_assistant": true,
	"llm":              true,
}

var toolKeys = map[string]bool{
	"browser": true, "code_executor": true, "hand_off": true, "http": true,
	"bing_search": true, "replicate": true, "algolia": true, "metaphor": true,
	"function": true, "research": true, "sec": true, "scraper": true,
	"advanced_scraper": true, "google_search": true, "code_interpreter": true,
	"retrieval": true,
}

var databaseProviders = map[string]bool{
	"pinecone": true, "weaviate": true, "qdrant": true, "pgvector": true,
}

// WorkflowConfig is a YAML workflow definition.
type WorkflowConfig struct {
	Workflows []WorkflowItem `yaml:"workflows" json:"workflows"`
}

// WorkflowItem maps assistant keys to their definitions. Keys outside
// AssistantKeys are ignored.
type WorkflowItem map[string]*Assistant

// Assistant is one step of a workflow. Tools and Superrag are ignored for
// openai_assistant, and Data is only read for superagent.
type Assistant struct {
	Name         string         `yaml:"name" json:"name"`
	LLM          string         `yaml:"llm" json:"llm"`
	Prompt       string         `yaml:"prompt" json:"prompt"`
	Intro        string         `yaml:"intro,omitempty" json:"intro,omitempty"`
	Params       map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	OutputSchema any            `yaml:"output_schema,omitempty" json:"output_schema,omitempty"`
	Tools        []ToolItem     `yaml:"tools,omitempty" json:"tools,omitempty"`
	Superrag     []SuperragItem `yaml:"superrag,omitempty" json:"superrag,omitempty"`
	// Data is the legacy form of Superrag.
	Data *Data `yaml:"data,omitempty" json:"data,omitempty"`
}

// ToolItem maps tool keys to their definitions. Unknown keys are ignored.
type ToolItem map[string]*Tool

// Tool is a tool entry. Plain tools use Name, UseFor and Metadata; the
// assistant-as-tool keys (superagent, openai_assistant, llm) carry a whole
// Assistant plus UseFor.
type Tool struct {
	Assistant `yaml:",inline"`
	UseFor    string         `yaml:"use_for" json:"use_for"`
	Metadata  map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

type SuperragItem struct {
	Index *SuperragIndex `yaml:"index" json:"index"`
}

type SuperragIndex struct {
	Name             string           `yaml:"name" json:"name"`
	URLs             []string         `yaml:"urls" json:"urls"`
	UseFor           string           `yaml:"use_for" json:"use_for"`
	Encoder          *SuperragEncoder `yaml:"encoder,omitempty" json:"encoder,omitempty"`
	DatabaseProvider string           `yaml:"database_provider,omitempty" json:"database_provider,omitempty"`
	InterpreterMode  bool             `yaml:"interpreter_mode,omitempty" json:"interpreter_mode,omitempty"`
}

type SuperragEncoder struct {
	Type       string `yaml:"type" json:"type"`
	Name       string `yaml:"name" json:"name"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
}

type Data struct {
	URLs   []string `yaml:"urls" json:"urls"`
	UseFor string   `yaml:"use_for" json:"use_for"`
}

// ParseWorkflowConfig decodes and validates a YAML workflow definition.
// Syntax errors are returned as a single ValidationError carrying the
// decoder's position information.
func ParseWorkflowConfig(doc []byte) (*WorkflowConfig, error) {
	if strings.TrimSpace(string(doc)) == "" {
		return nil, ValidationErrors{{Field: "workflows", Message: "YAML is empty"}}
	}
	var cfg WorkflowConfig
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return nil, ValidationErrors{{Field: "", Message: yaml.FormatError(err, false, true)}}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies the workflow rules: at least one item, required
// assistant and tool fields, and superrag index limits. Required string
// fields must be non-blank.
func (c *WorkflowConfig) Validate() error {
	var errs ValidationErrors
	if len(c.Workflows) == 0 {
		errs.add("workflows", "at least one workflow item is required")
		return errs
	}
	for i, item := range c.Workflows {
		path := fmt.Sprintf("workflows[%d]", i)
		for _, key := range sortedKeys(item) {
			if !isAssistantKey(key) {
				continue
			}
			validateAssistant(&errs, path+"."+key, key, item[key])
		}
	}
	return errs.err()
}

func validateAssistant(errs *ValidationErrors, path, key string, a *Assistant) {
	if a == nil {
		return
	}
	required(errs, path+".name", a.Name)
	required(errs, path+".llm", a.LLM)
	required(errs, path+".prompt", a.Prompt)

	if key == "openai_assistant" {
		return
	}

	for i, t := range a.Tools {
		tpath := fmt.Sprintf("%s.tools[%d]", path, i)
		for _, tkey := range sortedKeys(t) {
			if !toolKeys[tkey] && !assistantToolKeys[tkey] {
				continue
			}
			validateTool(errs, tpath+"."+tkey, tkey, t[tkey])
		}
	}

	for i, s := range a.Superrag {
		validateIndex(errs, fmt.Sprintf("%s.superrag[%d].index", path, i), s.Index)
	}

	if key == "superagent" && a.Data != nil {
		required(errs, path+".data.use_for", a.Data.UseFor)
	}
}

func validateTool(errs *ValidationErrors, path, key string, t *Tool) {
	if t == nil {
		return
	}
	required(errs, path+".use_for", t.UseFor)
	if assistantToolKeys[key] {
		validateAssistant(errs, path, key, &t.Assistant)
		return
	}
	required(errs, path+".name", t.Name)
}

func validateIndex(errs *ValidationErrors, path string, idx *SuperragIndex) {
	if idx == nil {
		return
	}
	if strings.TrimSpace(idx.Name) == "" {
		errs.add(path+".name", "is required")
	} else if utf8.RuneCountInString(idx.Name) > SuperragNameMaxLength {
		errs.add(path+".name", "should be less than %d characters", SuperragNameMaxLength)
	}
	required(errs, path+".use_for", idx.UseFor)
	if e := idx.Encoder; e != nil {
		if e.Type != "openai" {
			errs.add(path+".encoder.type", "unsupported encoder %q", e.Type)
		}
		required(errs, path+".encoder.name", e.Name)
	}
	if idx.DatabaseProvider != "" && !databaseProviders[idx.DatabaseProvider] {
		errs.add(path+".database_provider", "unsupported provider %q", idx.DatabaseProvider)
	}
}

func required(errs *ValidationErrors, field, v string) {
	if strings.TrimSpace(v) == "" {
		errs.add(field, "is required")
	}
}

func isAssistantKey(k string) bool {
	for _, a := range AssistantKeys {
		if a == k {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
