// Package media handles image payload decoding and media library storage.
package media

import (
	"encoding/base64"
	"net/url"
	"strings"
)

// Payload is a decoded image submission.
type Payload struct {
	Data []byte
	Type string
}

// IsVector reports whether the decoded payload is SVG markup.
func (p Payload) IsVector() bool {
	return strings.EqualFold(p.Type, "svg")
}

// DecodePayload unpacks an exported image. The editor sends either a
// data-URI-style string or raw bytes. SVG payloads may arrive base64- or
// URL-encoded; whichever of the base64 marker or the comma separator appears
// first in the header decides which decoding applies.
func DecodePayload(raw string) Payload {
	result := Payload{Type: "png"}

	commaPos := strings.Index(raw, ",")
	if commaPos < 0 {
		result.Data = []byte(raw)
		return result
	}

	body := raw[commaPos+1:]
	if strings.Contains(raw[:commaPos], "image/svg") {
		result.Type = "svg"
		b64Pos := strings.Index(raw, "base64")
		if b64Pos >= 0 && b64Pos < commaPos {
			if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
				result.Data = decoded
			}
		} else {
			if decoded, err := url.QueryUnescape(body); err == nil {
				result.Data = []byte(decoded)
			} else {
				result.Data = []byte(body)
			}
		}
		return result
	}

	if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
		result.Data = decoded
	}
	return result
}

// MimeTypeFor maps a detected image extension to its MIME type.
func MimeTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// AllowedMimeTypes returns the upload extension-to-MIME map. SVG is included
// only when the policy permits it.
func AllowedMimeTypes(svgAllowed bool) map[string]string {
	mimes := map[string]string{
		"png":  "image/png",
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"webp": "image/webp",
	}
	if svgAllowed {
		mimes["svg"] = "image/svg+xml"
	}
	return mimes
}
