package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solris/commhub/internal/board"
	"github.com/solris/commhub/internal/web/middleware"
)

type boardTab struct {
	Stage string
	Title string
	Count int
}

// BoardPage renders the response board for one stage
func (h *Handlers) BoardPage(w http.ResponseWriter, r *http.Request) {
	b := h.ws(r).Board()

	stage := board.StageNew
	if s := r.URL.Query().Get("stage"); s != "" {
		parsed, err := board.ParseStage(s)
		if err != nil {
			redirectWith(w, r, "/board", "error", "Unknown board stage")
			return
		}
		stage = parsed
	}

	counts := b.Counts()
	tabs := make([]boardTab, 0, len(board.Stages))
	for _, s := range board.Stages {
		tabs = append(tabs, boardTab{Stage: string(s), Title: s.Title(), Count: counts[s]})
	}

	records := b.Records(stage)

	data := map[string]any{
		"Username":   middleware.Username(r),
		"Stage":      string(stage),
		"Tabs":       tabs,
		"Records":    records,
		"EmptyNote":  emptyNote(stage),
		"SelectedID": int64(0),
	}
	flash(r, data)

	if sel := r.URL.Query().Get("selected"); sel != "" {
		id, err := strconv.ParseInt(sel, 10, 64)
		if err == nil {
			if rec, err := b.Get(stage, id); err == nil {
				data["Selected"] = rec
				data["SelectedID"] = rec.ID
			}
		}
	}

	h.render(w, "board", data)
}

// BoardGenerate creates a reply for an inbound email
func (h *Handlers) BoardGenerate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectWith(w, r, "/board", "error", "Invalid email ID")
		return
	}

	reply, err := h.ws(r).Board().Generate(id)
	if err != nil {
		redirectWith(w, r, "/board", "error", "Email not found")
		return
	}

	h.metrics.IncBoardMove(string(board.StageNew), string(board.StageGenerated))
	h.logger.Info("board response generated", "email_id", id, "reply_id", reply.ID)
	redirectWith(w, r, "/board?stage=new&selected="+strconv.FormatInt(id, 10), "success",
		"Response Generated! Check 'Generated Responses' tab.")
}

// BoardAccept moves a generated response to approved
func (h *Handlers) BoardAccept(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectWith(w, r, "/board", "error", "Invalid record ID")
		return
	}

	if _, err := h.ws(r).Board().Accept(id); err != nil {
		redirectWith(w, r, "/board?stage=generated", "error", "Record not found")
		return
	}

	h.metrics.IncBoardMove(string(board.StageGenerated), string(board.StageApproved))
	redirectWith(w, r, "/board?stage=generated", "success", "Response approved")
}

// BoardUpdate saves an edited body and moves the response to updated
func (h *Handlers) BoardUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectWith(w, r, "/board", "error", "Invalid record ID")
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/board?stage=generated", "error", "Invalid form data")
		return
	}

	if _, err := h.ws(r).Board().Update(id, r.FormValue("body")); err != nil {
		redirectWith(w, r, "/board?stage=generated", "error", "Record not found")
		return
	}

	h.metrics.IncBoardMove(string(board.StageGenerated), string(board.StageUpdated))
	redirectWith(w, r, "/board?stage=generated", "success", "Response updated")
}

// BoardSend moves an approved or updated response to sent
func (h *Handlers) BoardSend(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		redirectWith(w, r, "/board", "error", "Invalid record ID")
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/board", "error", "Invalid form data")
		return
	}

	from, err := board.ParseStage(r.FormValue("from"))
	if err != nil {
		redirectWith(w, r, "/board", "error", "Unknown board stage")
		return
	}

	if _, err := h.ws(r).Board().Send(id, from); err != nil {
		redirectWith(w, r, "/board?stage="+string(from), "error", "Record not found")
		return
	}

	h.metrics.IncBoardMove(string(from), string(board.StageSent))
	redirectWith(w, r, "/board?stage="+string(from), "success", "Email sent")
}

func emptyNote(stage board.Stage) string {
	switch stage {
	case board.StageNew:
		return "No new emails pending."
	case board.StageGenerated:
		return "No generated responses pending review."
	case board.StageApproved:
		return "No approved responses pending send."
	case board.StageUpdated:
		return "No updated responses pending send."
	case board.StageSent:
		return "No sent history found."
	}
	return ""
}
