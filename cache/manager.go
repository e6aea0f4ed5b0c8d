// Package cache provides in-memory caching for attachments, editor drafts,
// and editor display settings.
package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/drawit-cms/drawit-go/models"
)

// DraftTTL bounds how long an unsaved draft is kept before cleanup.
const DraftTTL = 7 * 24 * time.Hour

// AttachmentTTL bounds how long a cached attachment record is trusted.
const AttachmentTTL = 24 * time.Hour

// CleanupInterval controls how often expired entries are swept.
const CleanupInterval = 1 * time.Hour

type attachmentEntry struct {
	att      *models.Attachment
	cachedAt time.Time
}

type draftEntry struct {
	draft    models.Draft
	cachedAt time.Time
}

// Manager coordinates the attachment cache and the draft/settings store.
type Manager struct {
	mu          sync.RWMutex
	attachments map[int64]*attachmentEntry
	drafts      map[string]*draftEntry
	settings    map[string]models.EditorSettings
}

// NewManager creates an empty cache manager.
func NewManager() *Manager {
	return &Manager{
		attachments: make(map[int64]*attachmentEntry),
		drafts:      make(map[string]*draftEntry),
		settings:    make(map[string]models.EditorSettings),
	}
}

// GetAttachment retrieves a cached attachment by ID.
func (m *Manager) GetAttachment(id int64) (*models.Attachment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.attachments[id]
	if !exists {
		return nil, false
	}
	if time.Since(entry.cachedAt) > AttachmentTTL {
		return nil, false
	}
	return entry.att, true
}

// SetAttachment stores an attachment record.
func (m *Manager) SetAttachment(att *models.Attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attachments[att.ID] = &attachmentEntry{att: att, cachedAt: time.Now().UTC()}
}

// InvalidateAttachment drops a cached attachment after its file bytes or
// metadata changed, so stale copies are never served.
func (m *Manager) InvalidateAttachment(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attachments, id)
}

// DraftKey derives the storage key for a post/diagram pair. A zero imgID
// means a diagram not yet attached.
func DraftKey(postID, imgID string) string {
	if imgID == "" {
		imgID = "new"
	}
	return models.PluginSlug + "-draft-" + postID + "-" + imgID
}

// SettingsKey derives the per-client display settings key.
func SettingsKey(clientID string) string {
	return models.PluginSlug + "-editor-settings-" + clientID
}

// GetDraft retrieves an unexpired draft.
func (m *Manager) GetDraft(key string) (models.Draft, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.drafts[key]
	if !exists || time.Since(entry.cachedAt) > DraftTTL {
		return models.Draft{}, false
	}
	return entry.draft, true
}

// SetDraft stores a draft snapshot.
func (m *Manager) SetDraft(key string, draft models.Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[key] = &draftEntry{draft: draft, cachedAt: time.Now().UTC()}
}

// ClearDraft removes a draft after a confirmed save or an explicit clear.
func (m *Manager) ClearDraft(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, key)
}

// GetSettings retrieves cached editor display settings.
func (m *Manager) GetSettings(key string) (models.EditorSettings, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	settings, exists := m.settings[key]
	return settings, exists
}

// SetSettings stores editor display settings.
func (m *Manager) SetSettings(key string, settings models.EditorSettings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = settings
}

// ClearSettings removes cached display settings.
func (m *Manager) ClearSettings(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings, key)
}

// CacheBustURL appends a ver query parameter so viewers fetch fresh bytes
// after an in-place file update.
func CacheBustURL(url string, ts time.Time) string {
	sep := "?"
	for _, c := range url {
		if c == '?' {
			sep = "&"
			break
		}
	}
	return url + sep + "ver=" + strconv.FormatInt(ts.Unix(), 10)
}

// StartCleanupRoutine sweeps expired cache entries on an interval.
func StartCleanupRoutine(manager *Manager) {
	go func() {
		ticker := time.NewTicker(CleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			manager.cleanupExpired()
		}
	}()
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, entry := range m.attachments {
		if now.Sub(entry.cachedAt) > AttachmentTTL {
			delete(m.attachments, id)
		}
	}
	for key, entry := range m.drafts {
		if now.Sub(entry.cachedAt) > DraftTTL {
			delete(m.drafts, key)
		}
	}
}
