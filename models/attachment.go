package models

import (
	"path/filepath"
	"strings"
	"time"
)

// DiagramMeta is the tagged diagram record carried alongside the generic
// attachment metadata. An attachment is only treated as a diagram when both
// the flag and the markup are present.
type DiagramMeta struct {
	IsDiagram bool   `json:"is_diagram"`
	XML       string `json:"xml"`
	Title     string `json:"title"`
}

// Valid reports whether the metadata marks a renderable diagram.
func (m DiagramMeta) Valid() bool {
	return m.IsDiagram && m.XML != ""
}

// ImageSize describes one generated intermediate size of a raster attachment.
type ImageSize struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FilePath string `json:"file_path"`
	URL      string `json:"url"`
}

// Attachment is a media record owned by the attachment store.
type Attachment struct {
	ID        int64       `json:"id"`
	PostID    int64       `json:"post_id"`
	Title     string      `json:"title"`
	Filename  string      `json:"filename"`
	FilePath  string      `json:"file_path"`
	URL       string      `json:"url"`
	MimeType  string      `json:"mime_type"`
	Width     int         `json:"width,omitempty"`
	Height    int         `json:"height,omitempty"`
	Sizes     []ImageSize `json:"sizes,omitempty"`
	Diagram   DiagramMeta `json:"diagram"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Extension returns the lowercased file extension of the stored file,
// without the leading dot.
func (a *Attachment) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(a.Filename), "."))
}

// IsVector reports whether the stored file is an SVG.
func (a *Attachment) IsVector() bool {
	return a.Extension() == "svg"
}
