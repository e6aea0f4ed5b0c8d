package html

import (
	"fmt"
	"html/template"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/drawit-cms/drawit-go/models"
)

var (
	shortcodeRe = regexp.MustCompile(`\[` + models.PluginSlug + `\b([^\]]*)\]`)
	attrRe      = regexp.MustCompile(`(\w+)\s*=\s*(?:"([^"]*)"|'([^']*)'|(\S+))`)
)

// AttachmentLookup resolves an attachment ID to its record. A nil result
// with nil error means not found.
type AttachmentLookup func(id int64) (*models.Attachment, error)

// ShortcodeRenderer expands [drawit] shortcodes into diagram markup. Every
// failure degrades to an HTML comment or a plain image tag so a broken
// diagram never breaks the surrounding page.
type ShortcodeRenderer struct {
	Lookup  AttachmentLookup
	Options models.Options
}

// ParseAttrs extracts the shortcode attributes, applying defaults.
func ParseAttrs(raw string) models.ShortcodeAttrs {
	attrs := models.ShortcodeAttrs{
		Align:     "center",
		InlineSVG: "true",
	}

	for _, match := range attrRe.FindAllStringSubmatch(raw, -1) {
		value := match[2]
		if value == "" {
			value = match[3]
		}
		if value == "" {
			value = match[4]
		}
		switch strings.ToLower(match[1]) {
		case "id":
			attrs.ID = value
		case "title":
			attrs.Title = value
		case "class":
			attrs.Class = value
		case "align":
			attrs.Align = value
		case "inline_svg":
			attrs.InlineSVG = value
		}
	}
	return attrs
}

// Render expands one shortcode.
func (r *ShortcodeRenderer) Render(attrs models.ShortcodeAttrs) string {
	id, err := strconv.ParseInt(attrs.ID, 10, 64)
	if err != nil || id <= 0 {
		return errComment("Invalid attachment ID")
	}

	att, err := r.Lookup(id)
	if err != nil || att == nil {
		return errComment("Attachment not found")
	}
	if att.URL == "" {
		return errComment("Attachment URL not found")
	}
	if !att.Diagram.Valid() {
		return errComment("Not a valid diagram")
	}

	title := attrs.Title
	if title == "" {
		title = att.Diagram.Title
	}
	if title == "" {
		title = att.Title
	}

	alignClass := "align" + attrs.Align
	classes := []string{models.PluginSlug + "-shortcode", fmt.Sprintf("wp-image-%d", att.ID)}
	if attrs.Class != "" {
		classes = append(classes, attrs.Class)
	}
	classes = append(classes, alignClass)

	var out string
	if parseBoolDefault(attrs.InlineSVG, true) && att.IsVector() {
		out = inlineSVG(att, strings.Join(classes, " "), title)
	}
	if out == "" {
		out = AttachmentImage(att, classes, title, "")
	}

	if r.Options.FigureTag() {
		out = fmt.Sprintf(`<figure class="%s-figure %s">%s</figure>`,
			models.PluginSlug, template.HTMLEscapeString(alignClass), out)
	}
	return out
}

// Expand replaces every shortcode occurrence in post content with its
// rendering.
func (r *ShortcodeRenderer) Expand(content string) string {
	return shortcodeRe.ReplaceAllStringFunc(content, func(match string) string {
		sub := shortcodeRe.FindStringSubmatch(match)
		return r.Render(ParseAttrs(sub[1]))
	})
}

// inlineSVG reads the stored vector file and uses its markup directly,
// merging the computed classes into the root element and injecting a title
// child when absent. Any failure returns "" so the caller falls back to an
// image tag.
func inlineSVG(att *models.Attachment, classes, title string) string {
	data, err := os.ReadFile(att.FilePath)
	if err != nil {
		return ""
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return ""
	}
	root := doc.Root()
	if root == nil || !strings.EqualFold(root.Tag, "svg") {
		return ""
	}

	if existing := root.SelectAttrValue("class", ""); existing != "" {
		root.CreateAttr("class", existing+" "+classes)
	} else {
		root.CreateAttr("class", classes)
	}

	if title != "" && root.SelectElement("title") == nil {
		titleEl := etree.NewElement("title")
		titleEl.SetText(title)
		root.InsertChildAt(0, titleEl)
	}

	out := etree.NewDocument()
	out.SetRoot(root.Copy())
	serialized, err := out.WriteToString()
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(serialized, "\n")
}

func errComment(msg string) string {
	return "<!-- " + models.PluginSlug + " error: " + msg + " -->"
}

func parseBoolDefault(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}
