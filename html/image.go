// Package html renders attachments into image markup and expands the
// author-facing shortcode.
package html

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/drawit-cms/drawit-go/models"
)

// attachmentImageTmpl is a secure, pre-parsed template for the <img> tag.
// Go's html/template escapes every attribute, so titles and URLs cannot
// break out of the markup.
var attachmentImageTmpl = template.Must(template.New("attachmentImage").Parse(
	`<img src="{{.Src}}"{{if .SrcSet}} srcset="{{.SrcSet}}"{{end}} class="{{.Class}}" title="{{.Title}}" alt="{{.Alt}}" />`,
))

type attachmentImageData struct {
	Src    string
	SrcSet string
	Class  string
	Title  string
	Alt    string
}

// AttachmentImage renders the image tag for an attachment. overrideURL, when
// non-empty, replaces the stored URL (used for cache-busted updates). A
// template failure degrades to a minimal hand-built tag.
func AttachmentImage(att *models.Attachment, classes []string, title, overrideURL string) string {
	src := att.URL
	if overrideURL != "" {
		src = overrideURL
	}

	data := attachmentImageData{
		Src:    src,
		SrcSet: srcSet(att),
		Class:  strings.Join(classes, " "),
		Title:  title,
		Alt:    title,
	}

	var buf bytes.Buffer
	if err := attachmentImageTmpl.Execute(&buf, data); err != nil {
		log.Printf("ERROR: Failed to execute attachment image template: %v", err)
		return fmt.Sprintf(`<img class="%s" src="%s" title="%s">`,
			template.HTMLEscapeString(strings.Join(classes, " ")),
			template.HTMLEscapeString(src),
			template.HTMLEscapeString(title))
	}
	return buf.String()
}

func srcSet(att *models.Attachment) string {
	if len(att.Sizes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(att.Sizes))
	for _, size := range att.Sizes {
		parts = append(parts, fmt.Sprintf("%s %dw", size.URL, size.Width))
	}
	return strings.Join(parts, ", ")
}

// Shortcode builds the author-facing shortcode string for an attachment.
func Shortcode(attID int64, title string) string {
	return fmt.Sprintf(`[%s id="%d" title="%s"]`,
		models.PluginSlug, attID, template.HTMLEscapeString(title))
}
