package entity

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// StatusConverted is the terminal lead status. Every status vocabulary must contain it.
const StatusConverted = "converted"

// Option is one allowed value of a vocabulary, with its display label and a
// presentational category (e.g. "positive", "negative", "neutral").
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Category string `json:"category,omitempty"`
}

// Vocabulary is a closed, ordered enumeration of allowed string values.
type Vocabulary struct {
	field   string
	options []Option
	index   map[string]int
}

func NewVocabulary(field string, options []Option) (*Vocabulary, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("vocabulary %s: no options", field)
	}

	v := &Vocabulary{
		field:   field,
		options: make([]Option, 0, len(options)),
		index:   make(map[string]int, len(options)),
	}
	for _, o := range options {
		if strings.TrimSpace(o.Value) == "" {
			return nil, fmt.Errorf("vocabulary %s: empty value", field)
		}
		if _, dup := v.index[o.Value]; dup {
			return nil, fmt.Errorf("vocabulary %s: duplicate value %q", field, o.Value)
		}
		if o.Label == "" {
			o.Label = o.Value
		}
		v.index[o.Value] = len(v.options)
		v.options = append(v.options, o)
	}
	return v, nil
}

func (v *Vocabulary) Contains(value string) bool {
	_, ok := v.index[value]
	return ok
}

// Validate returns an *InvalidEnumValueError when value is outside the vocabulary.
func (v *Vocabulary) Validate(value string) error {
	if v.Contains(value) {
		return nil
	}
	return &InvalidEnumValueError{Field: v.field, Value: value, Allowed: v.Values()}
}

// Label falls back to the raw value for unknown entries.
func (v *Vocabulary) Label(value string) string {
	if i, ok := v.index[value]; ok {
		return v.options[i].Label
	}
	return value
}

func (v *Vocabulary) Category(value string) string {
	if i, ok := v.index[value]; ok {
		return v.options[i].Category
	}
	return ""
}

func (v *Vocabulary) Options() []Option {
	out := make([]Option, len(v.options))
	copy(out, v.options)
	return out
}

func (v *Vocabulary) Values() []string {
	out := make([]string, len(v.options))
	for i, o := range v.options {
		out[i] = o.Value
	}
	return out
}

// Vocabularies is the per-deployment vocabulary configuration.
type Vocabularies struct {
	Name        string
	Status      *Vocabulary
	Source      *Vocabulary
	CallOutcome *Vocabulary
	// Initial is the status a new lead gets when none is supplied.
	Initial string
}

func (vs *Vocabularies) validate() error {
	if !vs.Status.Contains(StatusConverted) {
		return fmt.Errorf("vocabulary %s: status list must contain %q", vs.Name, StatusConverted)
	}
	if vs.Initial == StatusConverted {
		return fmt.Errorf("vocabulary %s: initial status cannot be terminal", vs.Name)
	}
	if !vs.Status.Contains(vs.Initial) {
		return fmt.Errorf("vocabulary %s: initial status %q not in status list", vs.Name, vs.Initial)
	}
	return nil
}

// VocabularySpec is the JSON shape of a vocabulary file.
type VocabularySpec struct {
	Name        string   `json:"name"`
	Initial     string   `json:"initial"`
	Status      []Option `json:"status"`
	Source      []Option `json:"source"`
	CallOutcome []Option `json:"callOutcome,omitempty"`
}

func BuildVocabularies(def VocabularySpec) (*Vocabularies, error) {
	status, err := NewVocabulary("status", def.Status)
	if err != nil {
		return nil, err
	}
	source, err := NewVocabulary("type", def.Source)
	if err != nil {
		return nil, err
	}
	outcomes := def.CallOutcome
	if len(outcomes) == 0 {
		outcomes = defaultCallOutcomes
	}
	callOutcome, err := NewVocabulary("call_status", outcomes)
	if err != nil {
		return nil, err
	}

	vs := &Vocabularies{
		Name:        def.Name,
		Status:      status,
		Source:      source,
		CallOutcome: callOutcome,
		Initial:     def.Initial,
	}
	if err := vs.validate(); err != nil {
		return nil, err
	}
	return vs, nil
}

// LoadVocabularies reads a VocabularySpec JSON file.
func LoadVocabularies(path string) (*Vocabularies, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}
	var def VocabularySpec
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse vocabulary file: %w", err)
	}
	if def.Name == "" {
		def.Name = path
	}
	return BuildVocabularies(def)
}

// PresetVocabularies returns one of the built-in vocabularies ("short" or "long").
// The two status lists are incompatible; a deployment picks exactly one.
func PresetVocabularies(name string) (*Vocabularies, error) {
	def, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown vocabulary preset %q", name)
	}
	return BuildVocabularies(def)
}

var defaultCallOutcomes = []Option{
	{Value: "completed", Label: "Completed", Category: "positive"},
	{Value: "missed", Label: "Missed", Category: "negative"},
	{Value: "busy", Label: "Busy", Category: "neutral"},
}

var presets = map[string]VocabularySpec{
	"short": {
		Name:    "short",
		Initial: "pending",
		Status: []Option{
			{Value: "answered", Label: "Answered", Category: "positive"},
			{Value: "busy", Label: "Busy", Category: "neutral"},
			{Value: "not-interested", Label: "Not Interested", Category: "negative"},
			{Value: "call-later", Label: "Call Later", Category: "info"},
			{Value: "pending", Label: "Pending", Category: "neutral"},
			{Value: StatusConverted, Label: "Converted", Category: "terminal"},
		},
		Source: []Option{
			{Value: "individual", Label: "Individual"},
			{Value: "business", Label: "Business"},
			{Value: "referral", Label: "Referral"},
		},
	},
	"long": {
		Name:    "long",
		Initial: "new lead",
		Status: []Option{
			{Value: "interested & add me", Label: "Interested & Add Me", Category: "positive"},
			{Value: "drop an email only", Label: "Drop an Email Only", Category: "info"},
			{Value: "not interested", Label: "Not Interested", Category: "negative"},
			{Value: "busy/unreachable", Label: "Busy/Unreachable", Category: "neutral"},
			{Value: "wrong/incorrect number", Label: "Wrong Number", Category: "negative"},
			{Value: "did not pick", Label: "Did Not Pick", Category: "neutral"},
			{Value: "disconnected the call", Label: "Disconnected the Call", Category: "negative"},
			{Value: "out of station", Label: "Out of Station", Category: "neutral"},
			{Value: "call later", Label: "Call Later", Category: "info"},
			{Value: "already taking from other", Label: "Already Taking From Other", Category: "negative"},
			{Value: "not doing exim business", Label: "Not Doing EXIM Business", Category: "negative"},
			{Value: "small business", Label: "Small Business", Category: "info"},
			{Value: "leave a comment", Label: "Leave a Comment", Category: "info"},
			{Value: "new lead", Label: "New Lead", Category: "neutral"},
			{Value: "in progress", Label: "In Progress", Category: "info"},
			{Value: StatusConverted, Label: "Converted", Category: "terminal"},
		},
		Source: []Option{
			{Value: "calling", Label: "Calling"},
			{Value: "referral", Label: "Referral"},
			{Value: "sms", Label: "SMS"},
			{Value: "email", Label: "Email"},
			{Value: "social media", Label: "Social Media"},
			{Value: "digital marketing", Label: "Digital Marketing"},
			{Value: "other", Label: "Other"},
		},
	},
}
