package editor

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/oklog/ulid/v2"

	"github.com/drawit-cms/drawit-go/cache"
	"github.com/drawit-cms/drawit-go/diagram"
	"github.com/drawit-cms/drawit-go/models"
)

// Saver runs one diagram submission. Satisfied by diagram.Service.
type Saver interface {
	Save(req models.SaveDiagramRequest) models.SaveDiagramResponse
}

// Timings configures the liveness monitor.
type Timings struct {
	ActivityTimeout time.Duration
	CheckInterval   time.Duration
	InitDelay       time.Duration
}

// Params carries everything needed to open a session.
type Params struct {
	PostID    string
	ImgID     string
	Title     string
	SaveType  string
	StoredXML string
	Nonce     string
	Cache     *cache.Manager
	Saver     Saver
	Send      func(models.EditorAction)
	Timings   Timings
	// Clock is swappable for tests; nil means time.Now.
	Clock func() time.Time
}

// Session is the bridge state machine for one editing session. It is driven
// entirely by inbound JSON messages and one liveness ticker; all mutation
// happens under a single mutex.
type Session struct {
	mu sync.Mutex

	id        string
	postID    string
	imgID     string
	title     string
	saveType  string
	storedXML string
	nonce     string

	state        State
	recovery     bool
	markup       string
	initAttempts int

	awaitingDraftDecision bool
	pendingDraft          models.Draft

	lastActivity time.Time
	clock        func() time.Time

	cache   *cache.Manager
	saver   Saver
	send    func(models.EditorAction)
	timings Timings

	ticker     *time.Ticker
	initTimer  *time.Timer
	monitorRun chan struct{}
}

// NewSession builds a session in the uninitialized state. Start begins the
// liveness monitor.
func NewSession(p Params) *Session {
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	title := p.Title
	if title == "" {
		title = models.PluginSlug + " diagram"
	}
	return &Session{
		id:        ulid.Make().String(),
		postID:    p.PostID,
		imgID:     p.ImgID,
		title:     title,
		saveType:  p.SaveType,
		storedXML: p.StoredXML,
		nonce:     p.Nonce,
		state:     StateUninitialized,
		clock:     clock,
		cache:     p.Cache,
		saver:     p.Saver,
		send:      p.Send,
		timings:   p.Timings,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current FSM state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start moves the session to awaiting-configure and arms the liveness
// monitor after the configured initial delay.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAwaitingConfigure
	s.lastActivity = s.clock()
	s.startMonitorLocked()
}

func (s *Session) startMonitorLocked() {
	s.stopMonitorLocked()

	if s.timings.CheckInterval <= 0 {
		return
	}

	done := make(chan struct{})
	s.monitorRun = done
	s.initTimer = time.AfterFunc(s.timings.InitDelay, func() {
		ticker := time.NewTicker(s.timings.CheckInterval)
		s.mu.Lock()
		s.ticker = ticker
		s.mu.Unlock()

		for {
			select {
			case <-done:
				ticker.Stop()
				return
			case <-ticker.C:
				s.checkLiveness()
			}
		}
	})
}

func (s *Session) stopMonitorLocked() {
	if s.initTimer != nil {
		s.initTimer.Stop()
		s.initTimer = nil
	}
	if s.monitorRun != nil {
		close(s.monitorRun)
		s.monitorRun = nil
	}
	s.ticker = nil
}

func (s *Session) checkLiveness() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	idle := s.clock().Sub(s.lastActivity)
	if idle <= s.timings.ActivityTimeout {
		s.mu.Unlock()
		return
	}
	s.state = StateStuckSuspected
	s.mu.Unlock()

	s.send(models.EditorAction{Action: models.NoticeStuck})
	s.send(models.EditorAction{Action: models.ActionPing, Timestamp: s.clock().UnixMilli()})
}

func (s *Session) touchLocked() {
	s.lastActivity = s.clock()
	if s.state == StateStuckSuspected {
		s.state = StateActive
	}
}

// HandleEvent dispatches one inbound frame event through the transition
// table.
func (s *Session) HandleEvent(evt models.EditorEvent) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	if !legalIn(evt.Event, s.state) {
		log.Printf("Editor session %s: dropping %q event in state %s", s.id, evt.Event, s.state)
		s.mu.Unlock()
		return
	}
	s.touchLocked()
	s.mu.Unlock()

	switch evt.Event {
	case models.EventConfigure:
		s.onConfigure()
	case models.EventInit:
		s.onInit()
	case models.EventLoad:
		s.onLoad()
	case models.EventAutosave:
		s.onAutosave(evt)
	case models.EventSave:
		s.onSave(evt)
	case models.EventExport:
		s.onExport(evt)
	case models.EventExit:
		s.onExit(evt)
	case models.EventError:
		log.Printf("Editor session %s: editor error: %s", s.id, evt.Message)
	case models.EventPong:
		// Activity already recorded.
	}
}

// HandleHostCommand processes the host page's manual controls.
func (s *Session) HandleHostCommand(evt models.EditorEvent) {
	switch evt.Event {
	case HostReset:
		s.Reset(false)
	case HostRecovery:
		s.Reset(true)
	case HostClear:
		s.clearStoredState()
	case HostDraftDecision:
		s.onDraftDecision(evt)
	default:
		log.Printf("Editor session %s: unknown host command %q", s.id, evt.Event)
	}
}

func (s *Session) onConfigure() {
	s.mu.Lock()
	s.initAttempts++
	s.state = StateAwaitingInit
	recovery := s.recovery
	s.mu.Unlock()

	config := map[string]any{
		"defaultFonts":       []string{"Helvetica", "Arial", "Tahoma", "Verdana", "Times New Roman"},
		"defaultTheme":       "light",
		"defaultColorScheme": "default",
		"darkColor":          "#000000",
		"lightColor":         "#ffffff",
	}
	if recovery {
		config["ui"] = "min"
		config["plugins"] = []string{}
		config["preset"] = "minimal"
	}

	s.send(models.EditorAction{Action: models.ActionConfigure, Config: config})
}

func (s *Session) onInit() {
	s.mu.Lock()
	s.state = StateActive
	recovery := s.recovery
	s.mu.Unlock()

	if recovery {
		content := ""
		if s.storedXML != "" {
			content = diagram.EditingOverrides(s.storedXML)
		}
		s.sendLoad(content, false)
		return
	}

	if draft, found := s.cache.GetDraft(s.draftKey()); found {
		s.mu.Lock()
		s.awaitingDraftDecision = true
		s.pendingDraft = draft
		s.mu.Unlock()

		s.send(models.EditorAction{
			Action:       models.NoticeDraft,
			LastModified: draft.LastModified.Format(time.RFC3339),
		})
		return
	}

	s.sendLoad(s.contentWithSettings(s.storedXML), false)
}

func (s *Session) onDraftDecision(evt models.EditorEvent) {
	s.mu.Lock()
	if !s.awaitingDraftDecision {
		s.mu.Unlock()
		return
	}
	s.awaitingDraftDecision = false
	draft := s.pendingDraft
	s.pendingDraft = models.Draft{}
	s.mu.Unlock()

	if evt.UseDraft {
		s.sendLoad(draft.XML, true)
		return
	}

	s.cache.ClearDraft(s.draftKey())
	s.sendLoad(s.contentWithSettings(s.storedXML), false)
}

func (s *Session) sendLoad(content string, modified bool) {
	s.send(models.EditorAction{
		Action:   models.ActionLoad,
		Autosave: 1,
		XML:      content,
		Modified: &modified,
	})
}

// contentWithSettings reapplies the cached grid/page display preference, but
// only to attributes the markup already carries.
func (s *Session) contentWithSettings(content string) string {
	if content == "" {
		return content
	}
	settings, found := s.cache.GetSettings(s.settingsKey())
	if !found {
		return content
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil || doc.Root() == nil {
		return content
	}
	root := doc.Root()

	changed := false
	if settings.Grid != "" && root.SelectAttr("grid") != nil {
		root.CreateAttr("grid", settings.Grid)
		changed = true
	}
	if settings.Page != "" && root.SelectAttr("page") != nil {
		root.CreateAttr("page", settings.Page)
		changed = true
	}
	if !changed {
		return content
	}

	out := etree.NewDocument()
	out.SetRoot(root.Copy())
	serialized, err := out.WriteToString()
	if err != nil {
		return content
	}
	return strings.TrimSuffix(serialized, "\n")
}

func (s *Session) onLoad() {
	s.mu.Lock()
	recovery := s.recovery
	s.mu.Unlock()

	if recovery {
		s.send(models.EditorAction{
			Action:  models.ActionDialog,
			Title:   "Recovery Mode",
			Message: "Editor is in recovery mode with minimal settings. Save your diagram to return to normal mode.",
			Button:  "OK",
		})
	}
}

func (s *Session) onAutosave(evt models.EditorEvent) {
	s.mu.Lock()
	recovery := s.recovery
	s.mu.Unlock()
	if recovery || evt.XML == "" {
		return
	}
	s.cache.SetDraft(s.draftKey(), models.Draft{
		LastModified: s.clock(),
		XML:          evt.XML,
	})
}

func (s *Session) onSave(evt models.EditorEvent) {
	s.mu.Lock()
	s.markup = evt.XML
	recovery := s.recovery
	saveType := s.saveType
	s.mu.Unlock()

	if !recovery {
		s.cache.SetSettings(s.settingsKey(), models.EditorSettings{
			Grid: attrToggle(evt.XML, "grid"),
			Page: attrToggle(evt.XML, "page"),
		})
	}

	action := models.EditorAction{
		Action: models.ActionExport,
		Format: saveType,
		XML:    evt.XML,
		Spin:   "Saving diagram",
	}
	if strings.EqualFold(saveType, "svg") {
		action.Theme = "light"
		action.Border = 0
		action.Background = "#ffffff"
		action.Transparent = true
	}
	s.send(action)
}

func (s *Session) onExport(evt models.EditorEvent) {
	s.mu.Lock()
	req := models.SaveDiagramRequest{
		Nonce:   s.nonce,
		XML:     s.markup,
		ImgType: evt.Format,
		ImgData: evt.Data,
		PostID:  s.postID,
		Title:   s.title,
		ImgID:   s.imgID,
	}
	s.mu.Unlock()

	resp := s.saver.Save(req)
	if !resp.Success {
		modified := true
		s.send(models.EditorAction{
			Action:   models.ActionDialog,
			Title:    "Error",
			Message:  resp.HTML,
			Button:   "OK",
			Modified: &modified,
		})
		return
	}

	s.cache.ClearDraft(s.draftKey())

	s.mu.Lock()
	s.recovery = false
	s.state = StateUninitialized
	s.lastActivity = s.clock()
	s.mu.Unlock()

	s.send(models.EditorAction{
		Action: models.NoticeInserted,
		HTML:   resp.HTML,
		AttID:  resp.AttID,
	})
}

func (s *Session) onExit(evt models.EditorEvent) {
	s.mu.Lock()
	recovery := s.recovery
	markup := s.markup
	s.mu.Unlock()

	if !recovery {
		if evt.KeepDraft {
			xml := evt.XML
			if xml == "" {
				xml = markup
			}
			if xml != "" {
				s.cache.SetDraft(s.draftKey(), models.Draft{LastModified: s.clock(), XML: xml})
			}
		} else {
			s.cache.ClearDraft(s.draftKey())
		}
	}

	s.Close()
	s.send(models.EditorAction{Action: models.NoticeClosed})
}

// Reset restarts the session as if the frame were rebuilt. Recovery mode
// additionally clears all stored drafts and display settings and keeps the
// minimal configuration for the next configure round.
func (s *Session) Reset(recovery bool) {
	if recovery {
		s.clearStoredState()
	}

	s.mu.Lock()
	s.state = StateAwaitingConfigure
	s.markup = ""
	s.initAttempts = 0
	s.awaitingDraftDecision = false
	s.pendingDraft = models.Draft{}
	if recovery {
		s.recovery = true
	}
	s.lastActivity = s.clock()
	s.startMonitorLocked()
	s.mu.Unlock()
}

func (s *Session) clearStoredState() {
	s.cache.ClearDraft(s.draftKey())
	s.cache.ClearSettings(s.settingsKey())
}

// Close tears the session down and stops every timer so no callback leaks
// past the session's life.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
	s.stopMonitorLocked()
}

func (s *Session) draftKey() string {
	return cache.DraftKey(s.postID, s.imgID)
}

func (s *Session) settingsKey() string {
	return cache.SettingsKey(s.postID)
}

// attrToggle reads a root-element display toggle off saved markup.
func attrToggle(markup, attr string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil || doc.Root() == nil {
		return "0"
	}
	if doc.Root().SelectAttrValue(attr, "0") == "1" {
		return "1"
	}
	return "0"
}
