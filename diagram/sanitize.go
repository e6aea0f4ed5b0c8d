// Package diagram implements the diagram submission pipeline: payload
// validation, markup sanitization and normalization, and attachment hand-off.
package diagram

import (
	"strings"

	"github.com/beevik/etree"
)

// Elements stripped from submitted vector markup wherever they appear.
var deniedElements = map[string]bool{
	"script": true,
	"iframe": true,
	"object": true,
	"embed":  true,
	"use":    true,
}

// SanitizeSVG removes script-capable elements and attributes from vector
// markup and returns the cleaned serialization. A payload whose root element
// is itself denied has nothing renderable left, so it collapses to the empty
// string and the submission pipeline rejects it as missing data. Malformed
// input is returned unchanged; the pipeline separately rejects unparsable
// markup.
func SanitizeSVG(svg string) string {
	if svg == "" {
		return svg
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(svg); err != nil || doc.Root() == nil {
		return svg
	}

	if deniedElements[strings.ToLower(doc.Root().Tag)] {
		return ""
	}

	scrubElement(doc.Root())

	out := etree.NewDocument()
	out.SetRoot(doc.Root().Copy())
	cleaned, err := out.WriteToString()
	if err != nil {
		return svg
	}
	return strings.TrimSuffix(cleaned, "\n")
}

func scrubElement(el *etree.Element) {
	for _, child := range el.ChildElements() {
		if deniedElements[strings.ToLower(child.Tag)] {
			el.RemoveChild(child)
			continue
		}
		scrubElement(child)
	}

	for _, attr := range append([]etree.Attr(nil), el.Attr...) {
		if dangerousAttr(attr) {
			el.RemoveAttr(attr.FullKey())
		}
	}
}

func dangerousAttr(attr etree.Attr) bool {
	if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
		return true
	}
	value := foldAttrValue(attr.Value)
	return strings.Contains(value, "javascript:") || strings.Contains(value, "data:")
}

// foldAttrValue lowercases an attribute value and strips whitespace and
// control characters so split-up scheme spellings still match.
func foldAttrValue(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if r <= ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
