package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a declarative migration: an ordered list of steps applied to
// each document.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one rewrite; exactly one of its fields is set.
type Step struct {
	Set    *SetStep    `yaml:"set,omitempty"`
	Rename *RenameStep `yaml:"rename,omitempty"`
	Delete *DeleteStep `yaml:"delete,omitempty"`
	Join   *JoinStep   `yaml:"join,omitempty"`
	Split  *SplitStep  `yaml:"split,omitempty"`
	Each   *EachStep   `yaml:"each,omitempty"`
}

// SetStep assigns a constant value.
type SetStep struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// RenameStep moves a field; absent fields are left alone.
type RenameStep struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DeleteStep removes fields.
type DeleteStep struct {
	Fields []string `yaml:"fields"`
}

// JoinStep concatenates fields into one. Documents carrying none of the
// fields are skipped, so a script can be re-run.
type JoinStep struct {
	Fields    []string `yaml:"fields"`
	Into      string   `yaml:"into"`
	Separator string   `yaml:"separator"`
}

// SplitStep cuts a string field into several, the last one taking the rest.
type SplitStep struct {
	Field     string   `yaml:"field"`
	Into      []string `yaml:"into"`
	Separator string   `yaml:"separator"`
}

// EachStep applies steps to every object of an array field.
type EachStep struct {
	Field string `yaml:"field"`
	Steps []Step `yaml:"steps"`
}

// LoadScript reads and validates a YAML migration script.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Script{}, fmt.Errorf("read script %s: %w", path, err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return Script{}, fmt.Errorf("script %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// ParseScript decodes and validates a YAML migration script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parse: %w", err)
	}
	if len(s.Steps) == 0 {
		return Script{}, errors.New("no steps")
	}
	if err := validateSteps("steps", s.Steps); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Func returns the document rewrite the script describes.
func (s Script) Func() Func {
	return func(doc Document) error {
		return applySteps(doc, s.Steps)
	}
}

func validateSteps(path string, steps []Step) error {
	for i, st := range steps {
		at := fmt.Sprintf("%s[%d]", path, i)
		kinds := 0
		for _, set := range []bool{
			st.Set != nil, st.Rename != nil, st.Delete != nil,
			st.Join != nil, st.Split != nil, st.Each != nil,
		} {
			if set {
				kinds++
			}
		}
		if kinds != 1 {
			return fmt.Errorf("%s: exactly one of set, rename, delete, join, split, each is required", at)
		}

		switch {
		case st.Set != nil && st.Set.Field == "":
			return fmt.Errorf("%s.set: field is required", at)
		case st.Rename != nil && (st.Rename.From == "" || st.Rename.To == ""):
			return fmt.Errorf("%s.rename: from and to are required", at)
		case st.Delete != nil && len(st.Delete.Fields) == 0:
			return fmt.Errorf("%s.delete: fields are required", at)
		case st.Join != nil && (len(st.Join.Fields) == 0 || st.Join.Into == ""):
			return fmt.Errorf("%s.join: fields and into are required", at)
		case st.Split != nil && (st.Split.Field == "" || len(st.Split.Into) == 0 || st.Split.Separator == ""):
			return fmt.Errorf("%s.split: field, into and separator are required", at)
		case st.Each != nil:
			if st.Each.Field == "" || len(st.Each.Steps) == 0 {
				return fmt.Errorf("%s.each: field and steps are required", at)
			}
			if err := validateSteps(at+".each.steps", st.Each.Steps); err != nil {
				return err
			}
		}
	}
	return nil
}

func applySteps(doc Document, steps []Step) error {
	for _, st := range steps {
		var err error
		switch {
		case st.Set != nil:
			doc[st.Set.Field] = st.Set.Value
		case st.Rename != nil:
			if v, ok := doc[st.Rename.From]; ok {
				doc[st.Rename.To] = v
				delete(doc, st.Rename.From)
			}
		case st.Delete != nil:
			for _, f := range st.Delete.Fields {
				delete(doc, f)
			}
		case st.Join != nil:
			err = join(doc, st.Join)
		case st.Split != nil:
			err = split(doc, st.Split)
		case st.Each != nil:
			err = each(doc, st.Each)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func join(doc Document, j *JoinStep) error {
	parts := make([]string, 0, len(j.Fields))
	for _, f := range j.Fields {
		v, ok := doc[f]
		if !ok {
			continue
		}
		s, isString := v.(string)
		if !isString {
			s = fmt.Sprint(v)
		}
		parts = append(parts, s)
	}
	switch len(parts) {
	case 0:
		return nil
	case len(j.Fields):
		doc[j.Into] = strings.Join(parts, j.Separator)
		return nil
	default:
		return fmt.Errorf("join into %s: document has only %d of fields %v", j.Into, len(parts), j.Fields)
	}
}

func split(doc Document, s *SplitStep) error {
	v, ok := doc[s.Field]
	if !ok {
		return nil
	}
	str, isString := v.(string)
	if !isString {
		return fmt.Errorf("split %s: not a string", s.Field)
	}
	parts := strings.SplitN(str, s.Separator, len(s.Into))
	for i, f := range s.Into {
		if i < len(parts) {
			doc[f] = parts[i]
		} else {
			doc[f] = ""
		}
	}
	return nil
}

func each(doc Document, e *EachStep) error {
	v, ok := doc[e.Field]
	if !ok || v == nil {
		return nil
	}
	elems, isArray := v.([]any)
	if !isArray {
		return fmt.Errorf("each %s: not an array", e.Field)
	}
	for i, el := range elems {
		m, isObject := el.(map[string]any)
		if !isObject {
			return fmt.Errorf("each %s[%d]: not an object", e.Field, i)
		}
		if err := applySteps(m, e.Steps); err != nil {
			return fmt.Errorf("%s[%d]: %w", e.Field, i, err)
		}
	}
	return nil
}
