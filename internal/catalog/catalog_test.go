package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	entries, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	assert.Equal(t, "go-001", entries[0].ID)
	domains := map[string]bool{}
	for _, e := range entries {
		domains[e.Domain] = true
	}
	assert.True(t, domains["golang"])
	assert.True(t, domains["linux"])
	assert.True(t, domains["networking"])
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", ``, "no exercises"},
		{"no entries", "exercises: []\n", "no exercises"},
		{"missing id", "exercises:\n  - title: t\n    domain: d\n    difficulty: 1\n    steps: [a]\n", "id is required"},
		{"bad difficulty", "exercises:\n  - id: a\n    title: t\n    domain: d\n    difficulty: 4\n    steps: [a]\n", "difficulty must be 1-3"},
		{"no steps", "exercises:\n  - id: a\n    title: t\n    domain: d\n    difficulty: 1\n", "at least one step"},
		{"unknown field", "exercises:\n  - id: a\n    titel: t\n", "parse catalog"},
		{
			"duplicate id",
			"exercises:\n  - {id: a, title: t, domain: d, difficulty: 1, steps: [x]}\n  - {id: a, title: u, domain: d, difficulty: 2, steps: [y]}\n",
			"duplicate id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "exercises:\n  - {id: k8s-001, title: Pod Lifecycle, domain: kubernetes, difficulty: 2, steps: [apply, describe]}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{
		ID:         "k8s-001",
		Title:      "Pod Lifecycle",
		Domain:     "kubernetes",
		Difficulty: 2,
		Steps:      []string{"apply", "describe"},
	}, entries[0])

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
