package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	assert.Equal(t, 44, v.Len())

	entries := v.Entries()
	assert.Equal(t, "python", entries[0])
	assert.Equal(t, "sketch", entries[len(entries)-1])

	entries[0] = "cobol"
	assert.Equal(t, "python", v.Entries()[0], "Entries must return a copy")
	assert.True(t, v.Contains("Node.JS"))
	assert.False(t, v.Contains("cobol"))
}

func TestNewVocabulary(t *testing.T) {
	v, err := NewVocabulary([]string{" Go ", "rust", "go", "", "RUST"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, v.Entries())

	_, err = NewVocabulary([]string{" ", ""})
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", []string{}},
		{"no substring match", "Senior JavaScript developer", []string{"javascript"}},
		{"both java variants", "java and javascript", []string{"java", "javascript"}},
		{"case insensitive", "PYTHON, Docker & KUBERNETES", []string{"python", "docker", "kubernetes"}},
		{"multi-word phrase", "experience in machine learning and NLP", []string{"machine learning", "nlp"}},
		{"punctuated entries", "Built APIs with Node.js; UI/UX in Figma", []string{"node.js", "ui/ux", "figma"}},
		{"sql family", "PostgreSQL, MySQL and plain SQL", []string{"sql", "mysql", "postgresql"}},
		{"trailing word char blocks", "pythonic code, gitlab", []string{}},
		{"leading word char blocks", "nosql stores", []string{}},
		{"digits are word characters", "python3 and 2git", []string{}},
		{"vocabulary order", "scrum, agile, python", []string{"python", "agile", "scrum"}},
		{"repeated occurrence reported once", "git git git", []string{"git"}},
		{"later occurrence matches", "gitlab then git", []string{"git"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.input))
		})
	}
}

func TestExtract_CustomVocabulary(t *testing.T) {
	v, err := NewVocabulary([]string{"c++", "go"})
	require.NoError(t, err)
	e := NewExtractor(v)

	assert.Equal(t, []string{"c++", "go"}, e.Extract("Modern C++ and Go"))
	assert.Equal(t, []string{}, e.Extract("golang"))
	assert.Same(t, v, e.Vocabulary())
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []string{"go", "sql"}, Intersect([]string{"go", "sql", "go", "aws"}, []string{"sql", "go"}))
	assert.Equal(t, []string{}, Intersect(nil, []string{"go"}))
	assert.Equal(t, []string{}, Intersect([]string{"go"}, nil))
}

func TestLoadVocabularyFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte("skills:\n  - Go\n  - gRPC\n  - go\n"), 0o644))

	v, err := LoadVocabularyFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "grpc"}, v.Entries())

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("skills: []\n"), 0o644))
	_, err = LoadVocabularyFile(empty)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("skills: [unterminated\n"), 0o644))
	_, err = LoadVocabularyFile(bad)
	assert.Error(t, err)

	_, err = LoadVocabularyFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
