package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var upperSchema = Func[string](func(v string) Result[string] {
	if v == "" {
		return Fail[string](Issue{Message: "must not be empty"})
	}
	return OK(strings.ToUpper(v))
})

func TestFuncNormalizes(t *testing.T) {
	r := upperSchema.Validate("1f600")
	assert.True(t, r.Success)
	assert.Equal(t, "1F600", r.Data)

	r = upperSchema.Validate("")
	assert.False(t, r.Success)
	assert.Len(t, r.Issues, 1)
}

func TestErase(t *testing.T) {
	erased := Erase[string](upperSchema)

	r := erased.Validate("fe0f")
	assert.True(t, r.Success)
	assert.Equal(t, "FE0F", r.Data)

	r = erased.Validate(42)
	assert.False(t, r.Success)
	assert.Contains(t, r.Issues[0].Message, "expected string, got int")
}

func TestCollector(t *testing.T) {
	var c Collector
	assert.True(t, Collect(&c, 1).Success)

	c.Addf("groups[0].slug", "must be kebab-case, got %q", "Smileys & Emotion")
	r := Collect(&c, 1)
	assert.False(t, r.Success)
	assert.Equal(t, `groups[0].slug: must be kebab-case, got "Smileys & Emotion"`, r.Issues[0].String())
}

func TestSummarize(t *testing.T) {
	issues := []Issue{{Path: "a", Message: "x"}, {Message: "y"}, {Path: "c", Message: "z"}}
	assert.Equal(t, "a: x; y (and 1 more)", Summarize(issues, 2))
	assert.Equal(t, "a: x; y; c: z", Summarize(issues, 0))
	assert.Equal(t, "no issues", Summarize(nil, 3))
}
