package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gcbaptista/resumatch/model"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.Sections
	}{
		{
			name:  "all three sections",
			input: "Education\nBS CS\nExperience\n5 years\nSkills\nPython",
			want: model.Sections{
				model.SectionEducation:  "bs cs ",
				model.SectionExperience: "5 years ",
				model.SectionSkills:     "python ",
			},
		},
		{
			name:  "empty text",
			input: "",
			want:  model.NewSections(),
		},
		{
			name:  "lines before first header dropped",
			input: "John Doe\njohn@example.com\nSkills\nGo, Docker",
			want: model.Sections{
				model.SectionEducation:  "",
				model.SectionExperience: "",
				model.SectionSkills:     "go, docker ",
			},
		},
		{
			name:  "header detected anywhere in line",
			input: "PROFESSIONAL EXPERIENCE:\n  Acme Corp  \nBackend Engineer",
			want: model.Sections{
				model.SectionEducation:  "",
				model.SectionExperience: "acme corp backend engineer ",
				model.SectionSkills:     "",
			},
		},
		{
			name:  "first trigger wins on ties",
			input: "Education and Experience\nMIT\nSkill set and experience\nRust",
			want: model.Sections{
				model.SectionEducation:  "mit ",
				model.SectionExperience: "rust ",
				model.SectionSkills:     "",
			},
		},
		{
			name:  "blank lines still append a separator",
			input: "Skills\n\nPython",
			want: model.Sections{
				model.SectionEducation:  "",
				model.SectionExperience: "",
				model.SectionSkills:     " python ",
			},
		},
		{
			name:  "returning to a section keeps accumulating",
			input: "Education\nBSc\nSkills\nGo\nEducation\nMSc",
			want: model.Sections{
				model.SectionEducation:  "bsc msc ",
				model.SectionExperience: "",
				model.SectionSkills:     "go ",
			},
		},
		{
			name:  "windows line endings",
			input: "Experience\r\nGoogle\r\n",
			want: model.Sections{
				model.SectionEducation:  "",
				model.SectionExperience: "google  ",
				model.SectionSkills:     "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Segment(tt.input))
		})
	}
}

func TestSegment_AlwaysHasAllKeys(t *testing.T) {
	got := Segment("nothing here\nat all")
	for _, name := range model.SectionNames {
		v, ok := got[name]
		assert.True(t, ok, "missing key %s", name)
		assert.Empty(t, v)
	}
}

func TestNewSegmenter_CustomRules(t *testing.T) {
	s := NewSegmenter([]Rule{
		{Trigger: "projects", Section: model.SectionExperience},
	})

	got := s.Segment("Experience\nignored\nProjects\nsearch engine")
	assert.Equal(t, "search engine ", got[model.SectionExperience])
	assert.Equal(t, "", got[model.SectionEducation])
}
