package runner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/loykin/apiscenario/pkg/steps"
	"gopkg.in/yaml.v3"
)

// Step is one sentence of a scenario with its optional doc string or table.
type Step struct {
	Text string
	steps.Argument
}

// UnmarshalYAML accepts either a plain sentence or a mapping
// {step: ..., doc: ..., table: [[name, value], ...]}.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		s.Text = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Step  string     `yaml:"step"`
			Doc   string     `yaml:"doc"`
			Table [][]string `yaml:"table"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw.Step) == "" {
			return fmt.Errorf("line %d: step mapping without 'step'", node.Line)
		}
		s.Text, s.Doc, s.Table = raw.Step, raw.Doc, raw.Table
		return nil
	default:
		return fmt.Errorf("line %d: step must be a string or a mapping", node.Line)
	}
}

// Scenario is a named list of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Feature is one feature document. Background steps run before the steps of
// every scenario.
type Feature struct {
	Name        string     `yaml:"feature"`
	Description string     `yaml:"description"`
	Background  []Step     `yaml:"background"`
	Scenarios   []Scenario `yaml:"scenarios"`

	// Path is the file the feature was loaded from.
	Path string `yaml:"-"`
}

// ParseFeature decodes a feature document. name labels errors and defaults
// the feature name.
func ParseFeature(data []byte, name string) (*Feature, error) {
	var f Feature
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse feature %s: %w", name, err)
	}
	f.Path = name
	if strings.TrimSpace(f.Name) == "" {
		f.Name = strings.TrimSuffix(path.Base(filepath.ToSlash(name)), path.Ext(name))
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("feature %s: no scenarios", name)
	}
	for i := range f.Scenarios {
		if strings.TrimSpace(f.Scenarios[i].Name) == "" {
			f.Scenarios[i].Name = fmt.Sprintf("scenario %d", i+1)
		}
	}
	return &f, nil
}

func isFeatureFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFeatures loads feature files and directories (recursively, *.yaml and
// *.yml). Files inside a directory are loaded in lexical order.
func LoadFeatures(paths ...string) ([]*Feature, error) {
	var out []*Feature
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("load features: %w", err)
		}
		if !info.IsDir() {
			f, err := loadFile(os.ReadFile, p)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
			continue
		}
		found, err := LoadFeaturesFS(os.DirFS(p), ".")
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			f.Path = filepath.Join(p, filepath.FromSlash(f.Path))
		}
		out = append(out, found...)
	}
	return out, nil
}

// LoadFeaturesFS loads every feature file below root in fsys.
func LoadFeaturesFS(fsys fs.FS, root string) ([]*Feature, error) {
	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isFeatureFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	sort.Strings(files)

	out := make([]*Feature, 0, len(files))
	for _, p := range files {
		f, err := loadFile(func(name string) ([]byte, error) { return fs.ReadFile(fsys, name) }, p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func loadFile(read func(string) ([]byte, error), name string) (*Feature, error) {
	data, err := read(name)
	if err != nil {
		return nil, fmt.Errorf("read feature: %w", err)
	}
	return ParseFeature(data, name)
}

// Validate checks that every step of f matches a definition of reg.
func (f *Feature) Validate(reg *steps.Registry) error {
	var errs []error
	check := func(where string, list []Step) {
		for i, st := range list {
			if _, _, err := reg.Match(st.Text); err != nil {
				errs = append(errs, fmt.Errorf("%s: %s step %d: %w", f.Path, where, i+1, err))
			}
		}
	}
	check("background", f.Background)
	for _, sc := range f.Scenarios {
		if len(sc.Steps) == 0 {
			errs = append(errs, fmt.Errorf("%s: scenario %q has no steps", f.Path, sc.Name))
		}
		check(fmt.Sprintf("scenario %q", sc.Name), sc.Steps)
	}
	return errors.Join(errs...)
}
