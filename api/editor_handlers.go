package api

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/drawit-cms/drawit-go/diagram"
	"github.com/drawit-cms/drawit-go/editor"
	"github.com/drawit-cms/drawit-go/models"
)

// editorPageTmpl is the host page for an editing session: the title/type
// form, the hidden submission fields, and the frame mount point.
var editorPageTmpl = template.Must(template.New("editorPage").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Label}} editor</title></head>
<body>
<form class="{{.Slug}}-media-form" id="{{.Slug}}-form" method="post" action="">
	<input type="hidden" name="{{.Slug}}-action" value="submit-form-{{.Slug}}">
</form>
<input type="hidden" id="{{.Slug}}-nonce" value="{{.Nonce}}">
<input type="hidden" id="{{.Slug}}-post-id" value="{{.PostID}}">
<input type="hidden" id="{{.Slug}}-xml" value="{{.XML}}">
{{if .ImgID}}<input type="hidden" id="{{.Slug}}-img-id" value="{{.ImgID}}">{{end}}
<div class="{{.Slug}}-form-title-block">
	<label class="{{.Slug}}-form-label" for="{{.Slug}}-title">Title:</label>
	<input type="text" class="{{.Slug}}-form-text-input" id="{{.Slug}}-title" name="{{.Slug}}-title" value="{{.Title}}">
	Filetype: <select id="{{.Slug}}-type" class="{{.Slug}}-type" name="type">
	{{range .Types}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>{{end}}
	</select>
	<div style="margin-top: 10px;">
		<label class="{{.Slug}}-form-label" for="{{.Slug}}-as-shortcode">
			<input type="checkbox" id="{{.Slug}}-as-shortcode" name="{{.Slug}}-as-shortcode"{{if .FromShortcode}} checked{{end}}>
			Save as shortcode
		</label>
	</div>
	<div id="{{.Slug}}-draft-info" class="{{.Slug}}-draft-info" style="display:none;">
		Changes are automatically saved as drafts
	</div>
</div>
<iframe class="{{.Slug}}-editor-iframe" id="{{.Slug}}-iframe" src="{{.EditorURL}}" style="width:100%; height:700px; border:none;"></iframe>
</body>
</html>
`))

type editorPageOption struct {
	Value    string
	Label    string
	Selected bool
}

type editorPageData struct {
	Slug          string
	Label         string
	Nonce         string
	PostID        string
	ImgID         string
	Title         string
	XML           string
	Types         []editorPageOption
	FromShortcode bool
	EditorURL     string
}

// editingContext resolves the markup, title, and save type for an editing
// session, honoring an existing attachment when one is referenced.
func (a *App) editingContext(imgID, title, saveType string) (xml, resolvedTitle, resolvedType string) {
	resolvedTitle = title
	if resolvedTitle == "" {
		resolvedTitle = models.PluginSlug + " diagram"
	}
	resolvedType = saveType

	id, err := strconv.ParseInt(imgID, 10, 64)
	if err != nil || id <= 0 {
		return "", resolvedTitle, resolvedType
	}

	att, err := a.lookupAttachment(id)
	if err != nil || att == nil {
		return "", resolvedTitle, resolvedType
	}

	resolvedType = att.Extension()
	if att.Diagram.Title != "" {
		resolvedTitle = att.Diagram.Title
	}
	if att.Diagram.Valid() {
		// Editing flips grid and page back on, the inverse of the
		// clean-render state diagrams are stored in.
		xml = diagram.EditingOverrides(att.Diagram.XML)
	}
	return xml, resolvedTitle, resolvedType
}

// EditorPageHandler serves the editor host page.
func (a *App) EditorPageHandler(c *gin.Context) {
	opts := a.currentOptions()

	postID := c.DefaultQuery("post_id", "0")
	imgID := c.Query("img_id")
	xml, title, saveType := a.editingContext(imgID, c.Query("title"), opts.DefaultType)

	nonce, err := MintNonce(a.Config.JWTSecret, a.Config.NonceTTL)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to mint nonce")
		return
	}

	var types []editorPageOption
	for _, t := range opts.FilteredValidTypes() {
		types = append(types, editorPageOption{
			Value:    t,
			Label:    strings.ToUpper(t),
			Selected: strings.EqualFold(t, saveType),
		})
	}

	data := editorPageData{
		Slug:          models.PluginSlug,
		Label:         "DrawIt",
		Nonce:         nonce,
		PostID:        postID,
		ImgID:         imgID,
		Title:         title,
		XML:           xml,
		Types:         types,
		FromShortcode: c.Query("from_shortcode") == "true",
		EditorURL:     a.Config.EditorURL,
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := editorPageTmpl.Execute(c.Writer, data); err != nil {
		log.Printf("ERROR: Failed to render editor page: %v", err)
	}
}

// NonceHandler mints a fresh submission nonce for clients driving the form
// directly.
func (a *App) NonceHandler(c *gin.Context) {
	nonce, err := MintNonce(a.Config.JWTSecret, a.Config.NonceTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint nonce"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer in front.
		return true
	},
}

// EditorWSHandler upgrades into an editor bridge session. The host page
// relays frame messages over this socket and receives editor actions and
// host notices back.
func (a *App) EditorWSHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Editor websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	opts := a.currentOptions()
	postID := c.DefaultQuery("post_id", "0")
	imgID := c.Query("img_id")
	xml, title, saveType := a.editingContext(imgID, c.Query("title"), opts.DefaultType)

	nonce, err := MintNonce(a.Config.JWTSecret, a.Config.NonceTTL)
	if err != nil {
		log.Printf("Failed to mint session nonce: %v", err)
		return
	}

	var writeMu sync.Mutex
	send := func(action models.EditorAction) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(action); err != nil {
			log.Printf("Editor session write failed: %v", err)
		}
	}

	session := editor.NewSession(editor.Params{
		PostID:    postID,
		ImgID:     imgID,
		Title:     title,
		SaveType:  saveType,
		StoredXML: xml,
		Nonce:     nonce,
		Cache:     a.Cache,
		Saver:     a.submissionService(opts),
		Send:      send,
		Timings: editor.Timings{
			ActivityTimeout: a.Config.ActivityTimeout,
			CheckInterval:   a.Config.CheckInterval,
			InitDelay:       a.Config.InitDelay,
		},
	})
	session.Start()
	defer session.Close()

	for {
		var evt models.EditorEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Editor session %s closed unexpectedly: %v", session.ID(), err)
			}
			return
		}

		switch evt.Event {
		case editor.HostReset, editor.HostRecovery, editor.HostClear, editor.HostDraftDecision:
			session.HandleHostCommand(evt)
		default:
			session.HandleEvent(evt)
		}

		if session.State() == editor.StateClosed {
			return
		}
	}
}
