// Package models defines the core data structures shared across the service.
package models

import "strings"

// PluginSlug prefixes shortcodes, storage keys, and generated filenames.
const PluginSlug = "drawit"

// Temp directory choices for the submission pipeline.
const (
	TempDirSystem  = "system"
	TempDirUploads = "uploads"
)

// Options is the author-facing settings record. Values are persisted in the
// options store and survive restarts; missing keys are backfilled from
// defaults on read.
type Options struct {
	DefaultType  string `json:"default_type"`
	AllowSVG     string `json:"allow_svg"`
	TempDir      string `json:"temp_dir"`
	UseFigureTag string `json:"use_figure_tag"`
}

// DefaultOptions returns the options applied on first access.
func DefaultOptions() Options {
	return Options{
		DefaultType:  "png",
		AllowSVG:     "no",
		TempDir:      TempDirSystem,
		UseFigureTag: "no",
	}
}

// ValidTypes lists every export format the editor can produce for us.
func ValidTypes() []string {
	return []string{"png", "svg"}
}

// ValidTempDirs lists the valid temp-directory choices.
func ValidTempDirs() []string {
	return []string{TempDirSystem, TempDirUploads}
}

// SVGAllowed reports whether SVG uploads are currently permitted.
func (o Options) SVGAllowed() bool {
	return strings.EqualFold(o.AllowSVG, "yes")
}

// FigureTag reports whether rendered output is wrapped in a figure container.
func (o Options) FigureTag() bool {
	return strings.EqualFold(o.UseFigureTag, "yes")
}

// FilteredValidTypes returns the export formats filtered by the SVG policy.
func (o Options) FilteredValidTypes() []string {
	types := ValidTypes()
	if o.SVGAllowed() {
		return types
	}
	filtered := make([]string, 0, len(types))
	for _, t := range types {
		if !strings.EqualFold(t, "svg") {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Validate sanitizes a submitted options record against the previously
// stored one. Unknown values are silently replaced by the default for that
// field, never kept.
func (o Options) Validate(stored Options) Options {
	defaults := DefaultOptions()
	out := stored

	out.DefaultType = o.DefaultType
	out.AllowSVG = o.AllowSVG
	out.TempDir = o.TempDir
	out.UseFigureTag = o.UseFigureTag

	if !contains(ValidTypes(), out.DefaultType) {
		out.DefaultType = defaults.DefaultType
	}
	if !strings.EqualFold(out.AllowSVG, "yes") && !strings.EqualFold(out.AllowSVG, "no") {
		out.AllowSVG = defaults.AllowSVG
	}
	if !contains(ValidTempDirs(), out.TempDir) {
		out.TempDir = defaults.TempDir
	}
	if !strings.EqualFold(out.UseFigureTag, "yes") && !strings.EqualFold(out.UseFigureTag, "no") {
		out.UseFigureTag = defaults.UseFigureTag
	}

	return out
}

// Backfill fills any empty field from defaults and reports whether a write
// back to the store is needed.
func (o Options) Backfill() (Options, bool) {
	defaults := DefaultOptions()
	changed := false

	if o.DefaultType == "" {
		o.DefaultType = defaults.DefaultType
		changed = true
	}
	if o.AllowSVG == "" {
		o.AllowSVG = defaults.AllowSVG
		changed = true
	}
	if o.TempDir == "" {
		o.TempDir = defaults.TempDir
		changed = true
	}
	if o.UseFigureTag == "" {
		o.UseFigureTag = defaults.UseFigureTag
		changed = true
	}

	return o, changed
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if strings.EqualFold(item, val) {
			return true
		}
	}
	return false
}
