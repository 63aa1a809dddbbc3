package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var defaultCatalog string

// Entry is one exercise as written in a catalog file.
type Entry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Domain      string   `yaml:"domain"`
	Difficulty  int      `yaml:"difficulty"`
	Steps       []string `yaml:"steps"`
}

type file struct {
	Exercises []Entry `yaml:"exercises"`
}

var ErrEmpty = errors.New("catalog has no exercises")

// Load parses and validates a YAML catalog. Entry order is catalog order.
func Load(r io.Reader) ([]Entry, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Exercises) == 0 {
		return nil, ErrEmpty
	}

	seen := make(map[string]bool, len(f.Exercises))
	for i, e := range f.Exercises {
		if err := validate(e); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
	}
	return f.Exercises, nil
}

func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the catalog shipped with the binary.
func Default() ([]Entry, error) {
	return Load(strings.NewReader(defaultCatalog))
}

func validate(e Entry) error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return errors.New("id is required")
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("%s: title is required", e.ID)
	case strings.TrimSpace(e.Domain) == "":
		return fmt.Errorf("%s: domain is required", e.ID)
	case e.Difficulty < 1 || e.Difficulty > 3:
		return fmt.Errorf("%s: difficulty must be 1-3, got %d", e.ID, e.Difficulty)
	case len(e.Steps) == 0:
		return fmt.Errorf("%s: at least one step is required", e.ID)
	}
	return nil
}
