package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeuristic_ShouldPromote_EmptyBody(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100, "")
	require.True(t, h.ShouldPromote(nil))
	require.True(t, h.ShouldPromote([]byte("  \n")))
}

func TestHeuristic_ShouldPromote_SPAMarkers(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(100, "")
	require.True(t, h.ShouldPromote([]byte(`<div id="__next"></div>`)))
}

func TestHeuristic_ShouldPromote_ScriptDensity(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(1000, "")
	require.True(t, h.ShouldPromote([]byte(`<html><script>var a=1;</script><p>t</p></html>`)))
}

func TestHeuristic_ShouldPromote_UnclosedScript(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(1000, "")
	require.True(t, h.ShouldPromote([]byte(`<p>hello world</p><script>boot(`)))
}

func TestHeuristic_ShouldPromote_PlainMarkup(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0, "")
	body := "<html><body>" + strings.Repeat("<p>row</p>", 50) + "<script>x</script></body></html>"
	require.False(t, h.ShouldPromote([]byte(body)))
	require.Equal(t, DefaultMinBytes, h.MinBytes)
}

func TestHeuristic_ShouldPromote_ContentSelector(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(0, DefaultContentSelector)

	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "table present despite markers", body: `<div id="root"><table><tr><td>1</td></tr></table></div>`, want: false},
		{name: "shell without table", body: `<div id="app"></div><script src="/bundle.js"></script>`, want: true},
		{name: "long page without table", body: "<main>" + strings.Repeat("<p>text</p>", 500) + "</main>", want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, h.ShouldPromote([]byte(tt.body)))
		})
	}
}
