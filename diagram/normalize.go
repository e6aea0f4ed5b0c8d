package diagram

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// presentationAttrs are force-set on saved markup so a stored diagram always
// round-trips into a clean render state regardless of how the author was
// viewing it while editing. Added when absent, overwritten when present.
var presentationAttrs = []struct{ key, value string }{
	{"grid", "0"},
	{"page", "0"},
	{"pageScale", "1"},
	{"pan", "1"},
	{"zoom", "1"},
	{"resize", "1"},
	{"fit", "1"},
	{"nav", "0"},
	{"border", "0"},
	{"links", "1"},
}

// WellFormed reports whether the markup parses as XML with a root element.
func WellFormed(markup string) bool {
	if strings.TrimSpace(markup) == "" {
		return false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return false
	}
	return doc.Root() != nil
}

// Normalize applies the presentation attribute overrides to diagram markup
// and returns the resulting serialization. Running it twice yields the same
// output as running it once.
func Normalize(markup string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return "", fmt.Errorf("failed to parse diagram markup: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("diagram markup has no root element")
	}

	for _, attr := range presentationAttrs {
		root.CreateAttr(attr.key, attr.value)
	}

	out := etree.NewDocument()
	out.SetRoot(root.Copy())
	serialized, err := out.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize diagram markup: %w", err)
	}
	return strings.TrimSuffix(serialized, "\n"), nil
}

// EditingOverrides flips grid and page back on for an editing session, the
// inverse of the clean-render normalization.
func EditingOverrides(markup string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return markup
	}
	root := doc.Root()
	if root == nil {
		return markup
	}

	root.CreateAttr("grid", "1")
	root.CreateAttr("page", "1")

	out := etree.NewDocument()
	out.SetRoot(root.Copy())
	serialized, err := out.WriteToString()
	if err != nil {
		return markup
	}
	return strings.TrimSuffix(serialized, "\n")
}
