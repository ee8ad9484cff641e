// Package draft holds the in-progress email record being composed
// before dispatch, together with the header and address cleanup rules
// applied to generated and uploaded sources.
package draft

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// State tracks the draft lifecycle within one workspace.
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateSent
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateSent:
		return "sent"
	default:
		return "unknown"
	}
}

// Source records where a populated draft came from.
type Source string

const (
	SourcePipeline Source = "pipeline"
	SourceUpload   Source = "upload"
)

// Attachment is an immutable file part of a draft. Attachments are
// addressed by their generated ID, not by list position.
type Attachment struct {
	ID       string
	Filename string
	Content  []byte
	MIMEType string
}

// NewAttachment builds an attachment with a fresh ID. An empty MIME
// type is guessed from the filename extension.
func NewAttachment(filename string, content []byte, mimeType string) Attachment {
	filename = SanitizeFilename(filename)
	if mimeType == "" {
		mimeType = MIMETypeForFilename(filename)
	}
	return Attachment{
		ID:       uuid.New().String(),
		Filename: filename,
		Content:  content,
		MIMEType: mimeType,
	}
}

// Draft is the email record under composition.
type Draft struct {
	Sender      string
	To          []string
	Cc          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// AddAttachment appends an attachment to the draft.
func (d *Draft) AddAttachment(a Attachment) {
	d.Attachments = append(d.Attachments, a)
}

// RemoveAttachment deletes the attachment with the given ID, keeping
// the remaining attachments in their original relative order. It
// reports whether an attachment was removed.
func (d *Draft) RemoveAttachment(id string) bool {
	for i, a := range d.Attachments {
		if a.ID == id {
			d.Attachments = append(d.Attachments[:i], d.Attachments[i+1:]...)
			return true
		}
	}
	return false
}

// Attachment returns the attachment with the given ID.
func (d *Draft) Attachment(id string) (Attachment, bool) {
	for _, a := range d.Attachments {
		if a.ID == id {
			return a, true
		}
	}
	return Attachment{}, false
}

// Recipients returns the union of To and Cc, in order.
func (d *Draft) Recipients() []string {
	out := make([]string, 0, len(d.To)+len(d.Cc))
	out = append(out, d.To...)
	out = append(out, d.Cc...)
	return out
}

// Clone returns a copy of the draft with its own slices. Attachment
// contents are shared; attachments are immutable once created.
func (d *Draft) Clone() *Draft {
	c := *d
	c.To = append([]string(nil), d.To...)
	c.Cc = append([]string(nil), d.Cc...)
	c.Attachments = append([]Attachment(nil), d.Attachments...)
	return &c
}

var mimeByExt = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".pdf":  "application/pdf",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// MIMETypeForFilename guesses a MIME type from the file extension,
// defaulting to application/octet-stream.
func MIMETypeForFilename(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
