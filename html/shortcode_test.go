package html

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawit-cms/drawit-go/models"
)

func TestParseAttrs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.ShortcodeAttrs
	}{
		{
			name: "defaults",
			raw:  "",
			want: models.ShortcodeAttrs{Align: "center", InlineSVG: "true"},
		},
		{
			name: "double quoted",
			raw:  ` id="42" title="My Diagram" class="wide" align="left"`,
			want: models.ShortcodeAttrs{ID: "42", Title: "My Diagram", Class: "wide", Align: "left", InlineSVG: "true"},
		},
		{
			name: "single quoted",
			raw:  ` id='7' inline_svg='false'`,
			want: models.ShortcodeAttrs{ID: "7", Align: "center", InlineSVG: "false"},
		},
		{
			name: "unquoted",
			raw:  ` id=3 align=right`,
			want: models.ShortcodeAttrs{ID: "3", Align: "right", InlineSVG: "true"},
		},
		{
			name: "unknown attributes ignored",
			raw:  ` id="1" bogus="x"`,
			want: models.ShortcodeAttrs{ID: "1", Align: "center", InlineSVG: "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAttrs(tt.raw))
		})
	}
}

func writeTestSVG(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "diagram.svg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func diagramAttachment(path string) *models.Attachment {
	return &models.Attachment{
		ID:       42,
		Title:    "Network",
		Filename: "diagram.svg",
		FilePath: path,
		URL:      "/uploads/diagram.svg",
		MimeType: "image/svg+xml",
		Diagram:  models.DiagramMeta{IsDiagram: true, XML: "<mxfile/>", Title: "Network"},
	}
}

func fixedLookup(att *models.Attachment, err error) AttachmentLookup {
	return func(id int64) (*models.Attachment, error) { return att, err }
}

func TestRenderErrorComments(t *testing.T) {
	tests := []struct {
		name   string
		lookup AttachmentLookup
		attrs  models.ShortcodeAttrs
		want   string
	}{
		{
			name:   "missing id",
			lookup: fixedLookup(nil, nil),
			attrs:  models.ShortcodeAttrs{},
			want:   "<!-- drawit error: Invalid attachment ID -->",
		},
		{
			name:   "non numeric id",
			lookup: fixedLookup(nil, nil),
			attrs:  models.ShortcodeAttrs{ID: "abc"},
			want:   "<!-- drawit error: Invalid attachment ID -->",
		},
		{
			name:   "not found",
			lookup: fixedLookup(nil, nil),
			attrs:  models.ShortcodeAttrs{ID: "42"},
			want:   "<!-- drawit error: Attachment not found -->",
		},
		{
			name:   "lookup failure",
			lookup: fixedLookup(nil, errors.New("db down")),
			attrs:  models.ShortcodeAttrs{ID: "42"},
			want:   "<!-- drawit error: Attachment not found -->",
		},
		{
			name:   "no url",
			lookup: fixedLookup(&models.Attachment{ID: 42, Diagram: models.DiagramMeta{IsDiagram: true, XML: "x"}}, nil),
			attrs:  models.ShortcodeAttrs{ID: "42"},
			want:   "<!-- drawit error: Attachment URL not found -->",
		},
		{
			name:   "not a diagram",
			lookup: fixedLookup(&models.Attachment{ID: 42, URL: "/uploads/x.png"}, nil),
			attrs:  models.ShortcodeAttrs{ID: "42"},
			want:   "<!-- drawit error: Not a valid diagram -->",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &ShortcodeRenderer{Lookup: tt.lookup}
			assert.Equal(t, tt.want, r.Render(tt.attrs))
		})
	}
}

func TestRenderInlineSVG(t *testing.T) {
	path := writeTestSVG(t, `<svg xmlns="http://www.w3.org/2000/svg"><rect width="10"/></svg>`)
	r := &ShortcodeRenderer{Lookup: fixedLookup(diagramAttachment(path), nil)}

	out := r.Render(models.ShortcodeAttrs{ID: "42", Align: "center", InlineSVG: "true"})

	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "drawit-shortcode")
	assert.Contains(t, out, "wp-image-42")
	assert.Contains(t, out, "aligncenter")
	assert.Contains(t, out, "<title>Network</title>")
	assert.Contains(t, out, "<rect")
}

func TestRenderInlineSVGMergesExistingClass(t *testing.T) {
	path := writeTestSVG(t, `<svg class="original"><rect/></svg>`)
	r := &ShortcodeRenderer{Lookup: fixedLookup(diagramAttachment(path), nil)}

	out := r.Render(models.ShortcodeAttrs{ID: "42", Align: "left", InlineSVG: "true"})

	assert.Contains(t, out, "original")
	assert.Contains(t, out, "alignleft")
}

func TestRenderInlineSVGKeepsExistingTitle(t *testing.T) {
	path := writeTestSVG(t, `<svg><title>Kept</title><rect/></svg>`)
	r := &ShortcodeRenderer{Lookup: fixedLookup(diagramAttachment(path), nil)}

	out := r.Render(models.ShortcodeAttrs{ID: "42", Align: "center", InlineSVG: "true"})

	assert.Contains(t, out, "<title>Kept</title>")
	assert.NotContains(t, out, "<title>Network</title>")
}

func TestRenderFallsBackToImageTag(t *testing.T) {
	att := diagramAttachment(filepath.Join(t.TempDir(), "missing.svg"))
	r := &ShortcodeRenderer{Lookup: fixedLookup(att, nil)}

	out := r.Render(models.ShortcodeAttrs{ID: "42", Align: "center", InlineSVG: "true"})

	assert.Contains(t, out, "<img")
	assert.Contains(t, out, `src="/uploads/diagram.svg"`)
}

func TestRenderRasterUsesImageTag(t *testing.T) {
	att := diagramAttachment("")
	att.Filename = "diagram.png"
	att.URL = "/uploads/diagram.png"
	r := &ShortcodeRenderer{Lookup: fixedLookup(att, nil)}

	out := r.Render(models.ShortcodeAttrs{ID: "42", Align: "right", InlineSVG: "true", Class: "wide"})

	assert.Contains(t, out, "<img")
	assert.Contains(t, out, "alignright")
	assert.Contains(t, out, "wide")
}

func TestRenderInlineSVGDisabled(t *testing.T) {
	path := writeTestSVG(t, `<svg><rect/></svg>`)
	r := &ShortcodeRenderer{Lookup: fixedLookup(diagramAttachment(path), nil)}

	out := r.Render(models.ShortcodeAttrs{ID: "42", Align: "center", InlineSVG: "false"})

	assert.Contains(t, out, "<img")
	assert.NotContains(t, out, "<rect")
}

func TestRenderFigureWrap(t *testing.T) {
	path := writeTestSVG(t, `<svg><rect/></svg>`)
	r := &ShortcodeRenderer{
		Lookup:  fixedLookup(diagramAttachment(path), nil),
		Options: models.Options{UseFigureTag: "yes"},
	}

	out := r.Render(models.ShortcodeAttrs{ID: "42", Align: "center", InlineSVG: "true"})

	assert.Contains(t, out, `<figure class="drawit-figure aligncenter">`)
	assert.Contains(t, out, "</figure>")
}

func TestExpand(t *testing.T) {
	path := writeTestSVG(t, `<svg><rect/></svg>`)
	r := &ShortcodeRenderer{Lookup: fixedLookup(diagramAttachment(path), nil)}

	content := `<p>before</p>[drawit id="42"]<p>after</p>`
	out := r.Expand(content)

	assert.Contains(t, out, "<p>before</p>")
	assert.Contains(t, out, "<p>after</p>")
	assert.Contains(t, out, "<svg")
	assert.NotContains(t, out, "[drawit")
}

func TestExpandLeavesPlainContentAlone(t *testing.T) {
	r := &ShortcodeRenderer{Lookup: fixedLookup(nil, nil)}
	content := "<p>no shortcodes here</p>"
	assert.Equal(t, content, r.Expand(content))
}
