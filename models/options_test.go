package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "png", opts.DefaultType)
	assert.Equal(t, "no", opts.AllowSVG)
	assert.Equal(t, TempDirSystem, opts.TempDir)
	assert.Equal(t, "no", opts.UseFigureTag)
}

func TestOptionsPolicyHelpers(t *testing.T) {
	assert.True(t, Options{AllowSVG: "yes"}.SVGAllowed())
	assert.True(t, Options{AllowSVG: "YES"}.SVGAllowed())
	assert.False(t, Options{AllowSVG: "no"}.SVGAllowed())
	assert.False(t, Options{AllowSVG: ""}.SVGAllowed())

	assert.True(t, Options{UseFigureTag: "yes"}.FigureTag())
	assert.False(t, Options{UseFigureTag: "no"}.FigureTag())
}

func TestFilteredValidTypes(t *testing.T) {
	assert.Equal(t, []string{"png", "svg"}, Options{AllowSVG: "yes"}.FilteredValidTypes())
	assert.Equal(t, []string{"png"}, Options{AllowSVG: "no"}.FilteredValidTypes())
}

func TestValidateKeepsKnownValues(t *testing.T) {
	stored := DefaultOptions()
	input := Options{
		DefaultType:  "svg",
		AllowSVG:     "yes",
		TempDir:      TempDirUploads,
		UseFigureTag: "yes",
	}

	out := input.Validate(stored)
	assert.Equal(t, input, out)
}

func TestValidateReplacesUnknownValuesWithDefaults(t *testing.T) {
	stored := Options{
		DefaultType:  "svg",
		AllowSVG:     "yes",
		TempDir:      TempDirUploads,
		UseFigureTag: "yes",
	}
	input := Options{
		DefaultType:  "gif",
		AllowSVG:     "maybe",
		TempDir:      "/etc",
		UseFigureTag: "sometimes",
	}

	out := input.Validate(stored)
	assert.Equal(t, DefaultOptions(), out)
}

func TestBackfill(t *testing.T) {
	full, changed := DefaultOptions().Backfill()
	assert.False(t, changed)
	assert.Equal(t, DefaultOptions(), full)

	partial := Options{DefaultType: "svg"}
	out, changed := partial.Backfill()
	assert.True(t, changed)
	assert.Equal(t, "svg", out.DefaultType)
	assert.Equal(t, "no", out.AllowSVG)
	assert.Equal(t, TempDirSystem, out.TempDir)
	assert.Equal(t, "no", out.UseFigureTag)
}
