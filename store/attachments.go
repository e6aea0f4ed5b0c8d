package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drawit-cms/drawit-go/models"
)

// AttachmentStore persists media attachments and their diagram metadata.
type AttachmentStore struct {
	db *Database
}

// NewAttachmentStore creates an attachment store over the given database.
func NewAttachmentStore(db *Database) *AttachmentStore {
	return &AttachmentStore{db: db}
}

// Create inserts a new attachment and returns it with its assigned ID.
func (s *AttachmentStore) Create(att *models.Attachment) (*models.Attachment, error) {
	sizes, err := json.Marshal(att.Sizes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sizes: %w", err)
	}

	now := time.Now().UTC()
	result, err := s.db.Conn.Exec(
		`INSERT INTO attachments
			(post_id, title, filename, file_path, url, mime_type, width, height, sizes,
			 is_diagram, diagram_xml, diagram_title, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		att.PostID, att.Title, att.Filename, att.FilePath, att.URL, att.MimeType,
		att.Width, att.Height, string(sizes),
		boolToInt(att.Diagram.IsDiagram), att.Diagram.XML, att.Diagram.Title,
		now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert attachment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment id: %w", err)
	}

	att.ID = id
	att.CreatedAt = now
	att.UpdatedAt = now
	return att, nil
}

// GetByID fetches one attachment, returning nil when not found.
func (s *AttachmentStore) GetByID(id int64) (*models.Attachment, error) {
	row := s.db.Conn.QueryRow(
		`SELECT id, post_id, title, filename, file_path, url, mime_type, width, height,
			sizes, is_diagram, diagram_xml, diagram_title, created_at, updated_at
		 FROM attachments WHERE id = ?`, id)

	att, err := scanAttachment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load attachment %d: %w", id, err)
	}
	return att, nil
}

// UpdateDiagram merge-updates the diagram metadata and title of an existing
// attachment after its file bytes were rewritten in place.
func (s *AttachmentStore) UpdateDiagram(id int64, meta models.DiagramMeta, title string) error {
	_, err := s.db.Conn.Exec(
		`UPDATE attachments
		 SET is_diagram = ?, diagram_xml = ?, diagram_title = ?, title = ?, updated_at = ?
		 WHERE id = ?`,
		boolToInt(meta.IsDiagram), meta.XML, meta.Title, title, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update attachment %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttachment(row rowScanner) (*models.Attachment, error) {
	var att models.Attachment
	var sizes string
	var isDiagram int

	err := row.Scan(
		&att.ID, &att.PostID, &att.Title, &att.Filename, &att.FilePath, &att.URL,
		&att.MimeType, &att.Width, &att.Height, &sizes,
		&isDiagram, &att.Diagram.XML, &att.Diagram.Title,
		&att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	att.Diagram.IsDiagram = isDiagram != 0
	if sizes != "" {
		if err := json.Unmarshal([]byte(sizes), &att.Sizes); err != nil {
			return nil, fmt.Errorf("failed to decode sizes: %w", err)
		}
	}
	return &att, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
