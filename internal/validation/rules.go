// Package validation enforces an optional, operator-supplied rule table on
// entry writes before they reach the CMS. Rules are keyed by content-type UID
// and loaded from a YAML file; with no file configured every write passes.
package validation

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"strapimcp/internal/strapi"
	"strapimcp/pkg/logging"
)

// FieldRule constrains a single attribute of a content type.
type FieldRule struct {
	// Required rejects creates that omit the field or send it empty.
	Required bool `yaml:"required"`

	// MaxLength caps string values, in runes. Zero means unlimited.
	MaxLength int `yaml:"maxLength"`

	// Pattern is a regular expression string values must match.
	Pattern string `yaml:"pattern"`
}

// TypeRules is the rule block for one content type.
type TypeRules struct {
	// FieldNamePattern constrains the names of all written fields, catching
	// typos before they create stray attributes.
	FieldNamePattern string `yaml:"fieldNamePattern"`

	Fields map[string]FieldRule `yaml:"fields"`
}

// ruleFile is the YAML document shape.
type ruleFile struct {
	ContentTypes map[string]TypeRules `yaml:"contentTypes"`
}

// compiledRules is a TypeRules with its regular expressions pre-compiled.
type compiledRules struct {
	fieldNamePattern *regexp.Regexp
	fields           map[string]compiledFieldRule
}

type compiledFieldRule struct {
	required  bool
	maxLength int
	pattern   *regexp.Regexp
}

// Engine validates entry payloads against the loaded rule table. It is safe
// for concurrent use; Reload swaps the table atomically.
type Engine struct {
	mu    sync.RWMutex
	path  string
	rules map[string]compiledRules
}

// NewEngine loads the rule file at path. An empty path yields a permissive
// engine that accepts every write.
func NewEngine(path string) (*Engine, error) {
	e := &Engine{path: path, rules: map[string]compiledRules{}}
	if path == "" {
		return e, nil
	}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Path returns the configured rule file path, empty when no file is set.
func (e *Engine) Path() string { return e.path }

// RuleCount returns the number of content types with rules, for diagnostics.
func (e *Engine) RuleCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Reload re-reads and re-compiles the rule file. On failure the previous
// table stays active.
func (e *Engine) Reload() error {
	if e.path == "" {
		return nil
	}

	raw, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("failed to read validation rules %s: %w", e.path, err)
	}

	var parsed ruleFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("failed to parse validation rules %s: %w", e.path, err)
	}

	compiled := make(map[string]compiledRules, len(parsed.ContentTypes))
	for uid, tr := range parsed.ContentTypes {
		cr := compiledRules{fields: make(map[string]compiledFieldRule, len(tr.Fields))}

		if tr.FieldNamePattern != "" {
			re, err := regexp.Compile(tr.FieldNamePattern)
			if err != nil {
				return fmt.Errorf("invalid fieldNamePattern for %s: %w", uid, err)
			}
			cr.fieldNamePattern = re
		}
		for name, fr := range tr.Fields {
			cf := compiledFieldRule{required: fr.Required, maxLength: fr.MaxLength}
			if fr.Pattern != "" {
				re, err := regexp.Compile(fr.Pattern)
				if err != nil {
					return fmt.Errorf("invalid pattern for %s.%s: %w", uid, name, err)
				}
				cf.pattern = re
			}
			cr.fields[name] = cf
		}
		compiled[uid] = cr
	}

	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()

	logging.Info("Validation", "Loaded rules for %d content types from %s", len(compiled), e.path)
	return nil
}

// ValidateCreate checks a full create payload: required fields must be
// present and non-empty, on top of the per-field constraints.
func (e *Engine) ValidateCreate(uid string, data map[string]interface{}) error {
	return e.validate(uid, data, false)
}

// ValidateUpdate checks a partial update payload: only the fields actually
// written are constrained, absence is never a violation.
func (e *Engine) ValidateUpdate(uid string, data map[string]interface{}) error {
	return e.validate(uid, data, true)
}

func (e *Engine) validate(uid string, data map[string]interface{}, partial bool) error {
	e.mu.RLock()
	cr, ok := e.rules[uid]
	e.mu.RUnlock()
	if !ok {
		return nil
	}

	violation := func(detail string) error {
		return &strapi.OperationError{
			Kind:   strapi.KindInvalidRequest,
			Op:     "validate " + uid,
			Detail: detail,
		}
	}

	if cr.fieldNamePattern != nil {
		for name := range data {
			if !cr.fieldNamePattern.MatchString(name) {
				return violation(fmt.Sprintf("field name %q does not match the configured pattern", name))
			}
		}
	}

	if !partial {
		for name, rule := range cr.fields {
			if !rule.required {
				continue
			}
			value, present := data[name]
			if !present || isEmpty(value) {
				return violation(fmt.Sprintf("field %q is required", name))
			}
		}
	}

	for name, value := range data {
		rule, ok := cr.fields[name]
		if !ok {
			continue
		}
		if partial && rule.required && isEmpty(value) {
			return violation(fmt.Sprintf("field %q cannot be cleared", name))
		}
		s, isString := value.(string)
		if !isString {
			continue
		}
		if rule.maxLength > 0 && len([]rune(s)) > rule.maxLength {
			return violation(fmt.Sprintf("field %q exceeds the maximum length of %d", name, rule.maxLength))
		}
		if rule.pattern != nil && !rule.pattern.MatchString(s) {
			return violation(fmt.Sprintf("field %q does not match the configured pattern", name))
		}
	}
	return nil
}

func isEmpty(v interface{}) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	default:
		return false
	}
}
