package render

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Pages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageLogin, map[string]interface{}{
		"error":        "Incorrect email or password",
		"redirect_url": "/tools",
	}, nil))

	out := buf.String()
	assert.Contains(t, out, "Incorrect email or password")
	assert.Contains(t, out, `name="redirect_url" value="/tools"`)
	assert.NotContains(t, out, `class="message"`)
}

func TestRenderer_EscapesContext(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageDashboard, map[string]interface{}{
		"username": "<script>",
		"email":    "a@b",
		"group":    "g",
	}, nil))

	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	assert.Error(t, r.Render(&bytes.Buffer{}, "missing.html", nil, nil))
}

func TestStatic(t *testing.T) {
	data, err := fs.ReadFile(Static(), "style.css")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
