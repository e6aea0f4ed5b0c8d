package models

import "time"

// Editor frame event names. The embedded editor defines this vocabulary;
// it is consumed as-is.
const (
	EventConfigure = "configure"
	EventInit      = "init"
	EventLoad      = "load"
	EventAutosave  = "autosave"
	EventSave      = "save"
	EventExport    = "export"
	EventExit      = "exit"
	EventError     = "error"
	EventPong      = "pong"
)

// Outgoing action names understood by the embedded editor.
const (
	ActionConfigure = "configure"
	ActionLoad      = "load"
	ActionExport    = "export"
	ActionDialog    = "dialog"
	ActionStatus    = "status"
	ActionPing      = "ping"
)

// Host-directed notices emitted by the bridge on the same socket. These are
// ours, not part of the editor's vocabulary.
const (
	NoticeInserted = "inserted"
	NoticeClosed   = "closed"
	NoticeStuck    = "stuck"
	NoticeDraft    = "draft"
)

// EditorEvent is one inbound JSON message relayed from the editor frame or
// issued by the host page itself (reset/recovery/draft decisions).
type EditorEvent struct {
	Event string `json:"event"`

	XML     string `json:"xml,omitempty"`
	Format  string `json:"format,omitempty"`
	Data    string `json:"data,omitempty"`
	Message string `json:"message,omitempty"`

	// KeepDraft answers the exit-time keep/discard prompt.
	KeepDraft bool `json:"keep_draft,omitempty"`
	// UseDraft answers the init-time draft recovery prompt.
	UseDraft bool `json:"use_draft,omitempty"`
}

// EditorAction is one outbound JSON message for the editor frame or the
// host page.
type EditorAction struct {
	Action string `json:"action"`

	XML         string         `json:"xml,omitempty"`
	Format      string         `json:"format,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Title       string         `json:"title,omitempty"`
	Message     string         `json:"message,omitempty"`
	Button      string         `json:"button,omitempty"`
	Spin        string         `json:"spin,omitempty"`
	Autosave    int            `json:"autosave,omitempty"`
	Modified    *bool          `json:"modified,omitempty"`
	Timestamp   int64          `json:"timestamp,omitempty"`
	HTML        string         `json:"html,omitempty"`
	AttID       int64          `json:"att_id,omitempty"`
	Transparent bool           `json:"transparent,omitempty"`
	Theme       string         `json:"theme,omitempty"`
	Border      int            `json:"border,omitempty"`
	Background  string         `json:"background,omitempty"`
	// LastModified accompanies a draft notice.
	LastModified string `json:"last_modified,omitempty"`
}

// Draft is a per-post, per-diagram snapshot of unsaved markup. The original
// system kept these in browser storage; the bridge session now holds them in
// the cache manager, cleared after a confirmed save or an explicit clear.
type Draft struct {
	LastModified time.Time `json:"last_modified"`
	XML          string    `json:"xml"`
}

// EditorSettings caches the last-used display toggles so the next session
// reopens the way the author left it. Independent lifecycle from drafts.
type EditorSettings struct {
	Grid string `json:"grid"`
	Page string `json:"page"`
}
