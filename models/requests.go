package models

// SaveDiagramRequest carries one diagram submission from the editor bridge.
// Field names follow the submission form wire format.
type SaveDiagramRequest struct {
	Nonce       string `form:"nonce" json:"nonce"`
	XML         string `form:"xml" json:"xml"`
	ImgType     string `form:"img_type" json:"img_type"`
	ImgData     string `form:"img_data" json:"img_data"`
	PostID      string `form:"post_id" json:"post_id"`
	Title       string `form:"title" json:"title"`
	ImgID       string `form:"img_id" json:"img_id"`
	AsShortcode string `form:"as_shortcode" json:"as_shortcode"`
}

// WantsShortcode reports whether the caller asked for a shortcode instead of
// rendered image markup.
func (r SaveDiagramRequest) WantsShortcode() bool {
	return r.AsShortcode == "true"
}

// SaveDiagramResponse is the submission result. On failure HTML carries a
// user-facing message rather than markup; the exchange itself always
// completes with HTTP 200.
type SaveDiagramResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
	AttID   int64  `json:"att_id,omitempty"`
}

// ShortcodeAttrs are the author-supplied attributes of one [drawit] shortcode.
type ShortcodeAttrs struct {
	ID        string
	Title     string
	Class     string
	Align     string
	InlineSVG string
}
