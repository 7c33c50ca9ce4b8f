package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Realtime Chat Platform":      "realtime-chat-platform",
		"  Spaced   Out  ":            "spaced-out",
		"C++ & Go: a comparison!":     "c-go-a-comparison",
		"already-a-slug":              "already-a-slug",
		"Trailing punctuation...":     "trailing-punctuation",
		"MiXeD CaSe 42":               "mixed-case-42",
		"":                            "",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input: %q", input)
	}
}

func TestSplitTrimmed(t *testing.T) {
	assert.Equal(t, []string{"Django", "PostgreSQL", "Celery"}, SplitTrimmed("Django, PostgreSQL , Celery"))
	assert.Equal(t, []string{"Go"}, SplitTrimmed("Go,,  ,"))
	assert.Nil(t, SplitTrimmed(""))
}
