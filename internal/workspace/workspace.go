// Package workspace tracks per-session composition state: the current
// draft, its lifecycle, the attachment preview selection and the
// session's response board.
package workspace

import (
	"errors"
	"sync"

	"github.com/solris/commhub/internal/board"
	"github.com/solris/commhub/internal/draft"
)

var (
	ErrAlreadyPopulated = errors.New("workspace: a draft is already loaded")
	ErrNotPopulated     = errors.New("workspace: no draft loaded")
	ErrNotEditing       = errors.New("workspace: draft is not in edit mode")
	ErrNoRecipients     = errors.New("workspace: at least one valid recipient address is required")
)

// Workspace is the composition state of one session. All methods are
// safe for concurrent use.
type Workspace struct {
	mu sync.Mutex

	username string
	state    draft.State
	source   draft.Source
	d        *draft.Draft

	editing         bool
	editableTo      string
	editableCc      string
	editableSubject string
	editableBody    string

	previewID string
	board     *board.Board
}

// Snapshot is a point-in-time copy of the workspace for rendering.
type Snapshot struct {
	Username    string
	State       draft.State
	Source      draft.Source
	Sender      string
	To          string
	Cc          string
	Subject     string
	Body        string
	Editing     bool
	Attachments []draft.Attachment
	PreviewID   string
}

func newWorkspace(username string) *Workspace {
	return &Workspace{
		username: username,
		board:    board.Seeded(),
	}
}

// Board returns the session's response board.
func (w *Workspace) Board() *board.Board {
	return w.board
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		Username:  w.username,
		State:     w.state,
		Source:    w.source,
		To:        w.editableTo,
		Cc:        w.editableCc,
		Subject:   w.editableSubject,
		Body:      w.editableBody,
		Editing:   w.editing,
		PreviewID: w.previewID,
	}
	if w.d != nil {
		s.Sender = w.d.Sender
		s.Attachments = append([]draft.Attachment(nil), w.d.Attachments...)
	}
	return s
}

// Populate loads a draft into an empty workspace. The editable fields
// are seeded from the draft's headers.
func (w *Workspace) Populate(d *draft.Draft, source draft.Source) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != draft.StateEmpty {
		return ErrAlreadyPopulated
	}
	w.d = d.Clone()
	w.state = draft.StatePopulated
	w.source = source
	w.editing = false
	w.previewID = ""
	w.syncEditable()
	return nil
}

// SetEditing turns edit mode on or off. Leaving edit mode discards
// unsaved field values by resetting them from the draft.
func (w *Workspace) SetEditing(on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != draft.StatePopulated {
		return ErrNotPopulated
	}
	if w.editing && !on {
		w.syncEditable()
	}
	w.editing = on
	return nil
}

// UpdateFields saves edited header and body values into the draft and
// leaves edit mode. It fails when the workspace is not in edit mode.
func (w *Workspace) UpdateFields(to, cc, subject, body string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != draft.StatePopulated {
		return ErrNotPopulated
	}
	if !w.editing {
		return ErrNotEditing
	}
	w.d.To = draft.ParseAddressList(to)
	w.d.Cc = draft.ParseAddressList(cc)
	w.d.Subject = draft.CleanHeaderText(subject)
	w.d.Body = body
	w.editing = false
	w.syncEditable()
	return nil
}

// AddAttachment appends an attachment to the loaded draft.
func (w *Workspace) AddAttachment(a draft.Attachment) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != draft.StatePopulated {
		return ErrNotPopulated
	}
	w.d.AddAttachment(a)
	return nil
}

// RemoveAttachment deletes the attachment with the given ID. A removed
// attachment that was being previewed clears the preview selection.
func (w *Workspace) RemoveAttachment(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != draft.StatePopulated {
		return ErrNotPopulated
	}
	if !w.d.RemoveAttachment(id) {
		return errors.New("workspace: attachment not found")
	}
	if w.previewID == id {
		w.previewID = ""
	}
	return nil
}

// TogglePreview selects the attachment to preview, or clears the
// selection when it is already selected.
func (w *Workspace) TogglePreview(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != draft.StatePopulated {
		return ErrNotPopulated
	}
	if _, ok := w.d.Attachment(id); !ok {
		return errors.New("workspace: attachment not found")
	}
	if w.previewID == id {
		w.previewID = ""
	} else {
		w.previewID = id
	}
	return nil
}

// PreviewAttachment returns the currently selected attachment, if any.
func (w *Workspace) PreviewAttachment() (draft.Attachment, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.d == nil || w.previewID == "" {
		return draft.Attachment{}, false
	}
	return w.d.Attachment(w.previewID)
}

// Finalize validates the draft for dispatch and returns an independent
// copy. The workspace stays populated until MarkSent.
func (w *Workspace) Finalize() (*draft.Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != draft.StatePopulated {
		return nil, ErrNotPopulated
	}
	if len(w.d.To) == 0 {
		return nil, ErrNoRecipients
	}
	return w.d.Clone(), nil
}

// MarkSent records a successful dispatch.
func (w *Workspace) MarkSent() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = draft.StateSent
}

// Reset clears the draft so a new one can be loaded. The board is
// unaffected.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.d = nil
	w.state = draft.StateEmpty
	w.source = ""
	w.editing = false
	w.previewID = ""
	w.syncEditable()
}

// syncEditable refreshes the editable field values from the draft.
// Callers must hold the lock.
func (w *Workspace) syncEditable() {
	if w.d == nil {
		w.editableTo = ""
		w.editableCc = ""
		w.editableSubject = ""
		w.editableBody = ""
		return
	}
	w.editableTo = draft.JoinAddressList(w.d.To)
	w.editableCc = draft.JoinAddressList(w.d.Cc)
	w.editableSubject = w.d.Subject
	w.editableBody = w.d.Body
}

// Store keeps one workspace per session.
type Store struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

func NewStore() *Store {
	return &Store{workspaces: make(map[string]*Workspace)}
}

// Get returns the workspace for the session, creating it on first use.
func (s *Store) Get(sessionID, username string) *Workspace {
	s.mu.RLock()
	w, ok := s.workspaces[sessionID]
	s.mu.RUnlock()
	if ok {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workspaces[sessionID]; ok {
		return w
	}
	w = newWorkspace(username)
	s.workspaces[sessionID] = w
	return w
}

// Delete drops the workspace for the session, typically on logout.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, sessionID)
}
