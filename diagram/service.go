package diagram

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/drawit-cms/drawit-go/cache"
	"github.com/drawit-cms/drawit-go/html"
	"github.com/drawit-cms/drawit-go/media"
	"github.com/drawit-cms/drawit-go/models"
	"github.com/drawit-cms/drawit-go/store"
)

// NonceVerifier checks a submitted form token.
type NonceVerifier func(token string) bool

// Service runs the diagram submission pipeline. One instance is built per
// request with the options loaded for that request.
type Service struct {
	Options     models.Options
	Store       *store.AttachmentStore
	Cache       *cache.Manager
	Library     *media.Library
	VerifyNonce NonceVerifier
}

// NewService wires a submission service.
func NewService(opts models.Options, st *store.AttachmentStore, c *cache.Manager, lib *media.Library, verify NonceVerifier) *Service {
	return &Service{
		Options:     opts,
		Store:       st,
		Cache:       c,
		Library:     lib,
		VerifyNonce: verify,
	}
}

// Save processes one submission. Every failure path returns immediately with
// a user-facing message in HTML; the response is never a transport error.
func (s *Service) Save(req models.SaveDiagramRequest) models.SaveDiagramResponse {
	fail := func(msg string) models.SaveDiagramResponse {
		return models.SaveDiagramResponse{Success: false, HTML: msg}
	}

	if s.VerifyNonce == nil || !s.VerifyNonce(req.Nonce) {
		return fail("Sorry, your nonce did not verify.")
	}

	payload := media.DecodePayload(req.ImgData)
	if payload.IsVector() {
		payload.Data = []byte(SanitizeSVG(string(payload.Data)))
	}

	if payload.IsVector() && !s.Options.SVGAllowed() {
		return fail("Sorry, uploading SVG images has been disabled.")
	}
	if len(payload.Data) == 0 {
		return fail("Sorry, no image data was provided.")
	}
	if req.XML == "" || !WellFormed(req.XML) {
		return fail("Sorry, invalid XML was received.")
	}
	postID, ok := parseID(req.PostID)
	if !ok {
		return fail("Sorry, post ID was not an integer.")
	}

	title := req.Title
	if media.SanitizeFilename(title) == "" {
		title = models.PluginSlug + "_diagram"
	}
	fileTitle := media.SafeFilename(title, payload.Type)

	normalized, err := Normalize(req.XML)
	if err != nil {
		return fail("Sorry, invalid XML was received.")
	}
	meta := models.DiagramMeta{IsDiagram: true, XML: normalized, Title: title}

	// An existing attachment is only rewritten in place when both the stored
	// file and the requested format are vector; every other combination
	// creates a new attachment.
	if existing := s.updatableAttachment(req); existing != nil {
		if resp, updated := s.updateExisting(existing, payload, meta, title, req.WantsShortcode()); updated {
			return resp
		}
	}

	return s.createNew(postID, fileTitle, payload, meta, title, req.WantsShortcode())
}

func (s *Service) updatableAttachment(req models.SaveDiagramRequest) *models.Attachment {
	imgID, ok := parseID(req.ImgID)
	if !ok {
		return nil
	}
	att, err := s.Store.GetByID(imgID)
	if err != nil || att == nil {
		return nil
	}
	if !att.IsVector() || !strings.EqualFold(req.ImgType, "svg") {
		return nil
	}
	if _, err := os.Stat(att.FilePath); err != nil {
		return nil
	}
	return att
}

func (s *Service) updateExisting(att *models.Attachment, payload media.Payload, meta models.DiagramMeta, title string, wantsShortcode bool) (models.SaveDiagramResponse, bool) {
	if err := os.WriteFile(att.FilePath, payload.Data, 0644); err != nil {
		log.Printf("In-place update of attachment %d failed, creating new: %v", att.ID, err)
		return models.SaveDiagramResponse{}, false
	}

	if err := s.Store.UpdateDiagram(att.ID, meta, title); err != nil {
		log.Printf("Metadata update of attachment %d failed, creating new: %v", att.ID, err)
		return models.SaveDiagramResponse{}, false
	}

	// Viewers must see the new bytes immediately, not a stale cached copy.
	s.Cache.InvalidateAttachment(att.ID)
	bustedURL := cache.CacheBustURL(att.URL, time.Now())

	att.Title = title
	att.Diagram = meta

	return s.successResponse(att, title, wantsShortcode, bustedURL), true
}

func (s *Service) createNew(postID int64, fileTitle string, payload media.Payload, meta models.DiagramMeta, title string, wantsShortcode bool) models.SaveDiagramResponse {
	fail := func(msg string) models.SaveDiagramResponse {
		return models.SaveDiagramResponse{Success: false, HTML: msg}
	}

	tempDir := s.Library.TempDir(s.Options.TempDir)
	tempPath, err := s.Library.WriteTempFile(tempDir, payload.Data)
	if err != nil {
		return fail(fmt.Sprintf("Sorry, could not save temp file to filesystem. Error: %v", err))
	}
	defer os.Remove(tempPath)

	filePath, url, finalName, err := s.Library.Sideload(tempPath, fileTitle)
	if err != nil {
		return fail(fmt.Sprintf("Sorry, could not insert attachment into media library. Error: %v", err))
	}

	att := &models.Attachment{
		PostID:   postID,
		Title:    title,
		Filename: finalName,
		FilePath: filePath,
		URL:      url,
		MimeType: media.MimeTypeFor(payload.Type),
		Diagram:  meta,
	}
	if !payload.IsVector() {
		att.Width, att.Height = media.Probe(filePath)
		att.Sizes = s.Library.GenerateSizes(filePath, finalName)
	}

	created, err := s.Store.Create(att)
	if err != nil {
		os.Remove(filePath)
		return fail("Sorry, file attachment failed.")
	}
	s.Cache.SetAttachment(created)

	return s.successResponse(created, title, wantsShortcode, "")
}

func (s *Service) successResponse(att *models.Attachment, title string, wantsShortcode bool, bustedURL string) models.SaveDiagramResponse {
	resp := models.SaveDiagramResponse{Success: true, AttID: att.ID}
	if wantsShortcode {
		resp.HTML = html.Shortcode(att.ID, title)
		return resp
	}

	classes := []string{"aligncenter", fmt.Sprintf("wp-image-%d", att.ID)}
	resp.HTML = html.AttachmentImage(att, classes, title, bustedURL)
	return resp
}

// parseID accepts only unsigned decimal digits, mirroring the submission
// form's string-typed id fields.
func parseID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
