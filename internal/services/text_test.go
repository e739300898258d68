package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  hello world  ", want: "hello world"},
		{name: "tags stripped", in: "hello <b>world</b>", want: "hello world"},
		{name: "entities kept readable", in: "Tom & Jerry's", want: "Tom & Jerry's"},
		{name: "mention untouched", in: "hi @alice", want: "hi @alice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeText(tt.in))
		})
	}
}

func TestSanitizeTextDoesNotDecodeIntoMarkup(t *testing.T) {
	inputs := []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"&lt;img src=x onerror=alert(1)&gt;",
		"&#60;iframe src=javascript:alert(1)&#62;&#60;/iframe&#62;",
		"&amp;amp;amp;amp;amp;lt;b&amp;amp;amp;amp;amp;gt;deep",
	}
	for _, in := range inputs {
		out := sanitizeText(in)
		assert.NotContains(t, out, "<script", in)
		assert.NotContains(t, out, "<img", in)
		assert.NotContains(t, out, "<iframe", in)
		assert.NotContains(t, out, "<b>", in)
	}
}

func TestMentions(t *testing.T) {
	assert.Equal(t, []string{"alice", "bob"}, mentions("@alice and @bob, again @alice"))
	assert.Empty(t, mentions("mail me at me@example.com"))
	assert.Empty(t, mentions("@al"))
}
