// Package board implements the response review board: inbound emails and
// draft responses move through a fixed set of stages, from generation
// through approval or editing to sent.
package board

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// Stage identifies one column of the board.
type Stage string

const (
	StageNew       Stage = "new"
	StageGenerated Stage = "generated"
	StageApproved  Stage = "approved"
	StageUpdated   Stage = "updated"
	StageSent      Stage = "sent"
)

// Stages lists all stages in display order.
var Stages = []Stage{StageNew, StageGenerated, StageApproved, StageUpdated, StageSent}

// Title returns the stage label shown in the UI.
func (s Stage) Title() string {
	switch s {
	case StageNew:
		return "New Emails"
	case StageGenerated:
		return "Generated Responses"
	case StageApproved:
		return "Approved Responses"
	case StageUpdated:
		return "Responses Updated"
	case StageSent:
		return "Responses Sent"
	}
	return string(s)
}

var (
	ErrNotFound     = errors.New("board: record not found")
	ErrInvalidStage = errors.New("board: invalid stage")
)

// Record is a single board entry. Records in StageNew are inbound emails
// and carry Sender; records in every other stage are draft responses and
// carry Recipient. LinkedID ties a generated response back to the email
// it answers.
type Record struct {
	ID        int64
	LinkedID  int64
	Sender    string
	Recipient string
	Subject   string
	Body      string
	Date      string
}

// IDAllocator hands out monotonically increasing record IDs.
type IDAllocator struct {
	last atomic.Int64
}

// NewIDAllocator returns an allocator whose first ID is start+1.
func NewIDAllocator(start int64) *IDAllocator {
	a := &IDAllocator{}
	a.last.Store(start)
	return a
}

func (a *IDAllocator) Next() int64 {
	return a.last.Add(1)
}

// Board holds the records of every stage. All methods are safe for
// concurrent use.
type Board struct {
	mu     sync.Mutex
	stages map[Stage][]*Record
	ids    *IDAllocator
}

// New returns an empty board.
func New() *Board {
	b := &Board{
		stages: make(map[Stage][]*Record, len(Stages)),
		ids:    NewIDAllocator(1000),
	}
	for _, s := range Stages {
		b.stages[s] = nil
	}
	return b
}

// Seeded returns a board pre-populated with the demo dataset.
func Seeded() *Board {
	b := New()
	b.stages[StageNew] = []*Record{
		{ID: 101, Sender: "alice@client.com", Subject: "Urgent: Project Timeline Update", Date: "10:30 AM", Body: "Hi Team,\n\nWe need to discuss the timeline for the Q3 deliverables. Can we schedule a call?\n\nBest,\nAlice"},
		{ID: 102, Sender: "bob@vendor.co", Subject: "Invoice #49202 Pending", Date: "Yesterday", Body: "Hello,\n\nJust following up on the invoice sent last week. Please confirm receipt.\n\nRegards,\nBob"},
		{ID: 103, Sender: "charlie@partner.net", Subject: "Integration Issues", Date: "Dec 26", Body: "Hi Support,\n\nWe are facing latency issues with the API integration. Please advise.\n\nCharlie"},
		{ID: 104, Sender: "diana@leads.io", Subject: "New Partnership Proposal", Date: "Dec 24", Body: "Hi,\n\nI'd like to propose a partnership opportunity. Let's connect.\n\nDiana"},
		{ID: 105, Sender: "eric@tech.com", Subject: "System Downtime Notice", Date: "Dec 20", Body: "Scheduled maintenance will occur this Sunday at 2 AM EST."},
	}
	b.stages[StageGenerated] = []*Record{
		{ID: 201, LinkedID: 101, Recipient: "alice@client.com", Subject: "Re: Urgent: Project Timeline Update", Body: "Hi Alice,\n\nThanks for reaching out.\n\nWe are available tomorrow at 2 PM. Let us know if that works.\n\nBest,\nSolis Team"},
	}
	b.stages[StageApproved] = []*Record{
		{ID: 301, Recipient: "hr@solis.example", Subject: "Re: Policy Updates", Body: "Received and noted. Thank you.\n\nBest,\nTeam"},
	}
	b.stages[StageUpdated] = []*Record{
		{ID: 401, Recipient: "marketing@newsletter.com", Subject: "Re: Weekly Tech Trends", Body: "Thanks for sharing! We will share this with our engineering team internally.\n\nRegards,\nSolis"},
	}
	b.stages[StageSent] = []*Record{
		{ID: 501, Recipient: "old_client@test.com", Subject: "Re: Follow up", Body: "This issue has been resolved. Closing ticket #992."},
	}
	return b
}

// ParseStage converts a URL or form value into a Stage.
func ParseStage(s string) (Stage, error) {
	for _, st := range Stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
}

// Records returns a copy of the stage's record slice, head first.
func (b *Board) Records(stage Stage) []*Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	src := b.stages[stage]
	out := make([]*Record, len(src))
	copy(out, src)
	return out
}

// Get returns the record with the given ID in the given stage.
func (b *Board) Get(stage Stage, id int64) (*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r := b.find(stage, id); r != nil {
		return r, nil
	}
	return nil, ErrNotFound
}

// Counts reports how many records each stage holds.
func (b *Board) Counts() map[Stage]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[Stage]int, len(Stages))
	for _, s := range Stages {
		counts[s] = len(b.stages[s])
	}
	return counts
}

// Generate creates a reply to the email with the given ID and inserts it
// at the head of the generated stage. The email itself stays in place.
func (b *Board) Generate(emailID int64) (*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	email := b.find(StageNew, emailID)
	if email == nil {
		return nil, ErrNotFound
	}

	name, _, _ := strings.Cut(email.Sender, "@")
	reply := &Record{
		ID:        b.ids.Next(),
		LinkedID:  email.ID,
		Recipient: email.Sender,
		Subject:   "Re: " + email.Subject,
		Body:      fmt.Sprintf("Hi %s,\n\nThank you for your email regarding '%s'.\n\nWe are looking into it and will get back to you shortly.\n\nBest,\nSolis Team", name, email.Subject),
	}
	b.stages[StageGenerated] = append([]*Record{reply}, b.stages[StageGenerated]...)
	return reply, nil
}

// Accept moves a generated response to the head of the approved stage.
func (b *Board) Accept(id int64) (*Record, error) {
	return b.move(id, StageGenerated, StageApproved, "")
}

// Update replaces a generated response's body and moves it to the head
// of the updated stage.
func (b *Board) Update(id int64, body string) (*Record, error) {
	return b.move(id, StageGenerated, StageUpdated, body)
}

// Send moves a response from the approved or updated stage to the head
// of the sent stage.
func (b *Board) Send(id int64, from Stage) (*Record, error) {
	if from != StageApproved && from != StageUpdated {
		return nil, fmt.Errorf("%w: cannot send from %s", ErrInvalidStage, from)
	}
	return b.move(id, from, StageSent, "")
}

// move removes the record from the source stage and inserts it at the
// head of the destination. When body is non-empty the record's body is
// replaced first.
func (b *Board) move(id int64, from, to Stage, body string) (*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src := b.stages[from]
	for i, r := range src {
		if r.ID != id {
			continue
		}
		if body != "" {
			r.Body = body
		}
		b.stages[from] = append(src[:i], src[i+1:]...)
		b.stages[to] = append([]*Record{r}, b.stages[to]...)
		return r, nil
	}
	return nil, ErrNotFound
}

func (b *Board) find(stage Stage, id int64) *Record {
	for _, r := range b.stages[stage] {
		if r.ID == id {
			return r
		}
	}
	return nil
}
