package bbapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<b>Deal <i>3</i> damage.</b><br/>Then draw.", "Deal 3 damage.<br/>Then draw."},
		{"One<BR>Two<Br />Three<br>", "One<BR>Two<Br />Three<br>"},
		{`<span class="hl"
			data-x="1">Gain</span> 2 <brx>armor`, "Gain 2 armor"},
		{"<p>a < b</p>", "a "},
		{"5 > 3 and <u>4</u>", "5 > 3 and 4"},
		{"dangling <b", "dangling <b"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SanitizeHTML(c.in), c.in)
	}
}
