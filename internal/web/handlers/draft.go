package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solris/commhub/internal/draft"
	"github.com/solris/commhub/internal/msgfile"
	"github.com/solris/commhub/internal/pipeline"
	"github.com/solris/commhub/internal/spreadsheet"
	"github.com/solris/commhub/internal/web/middleware"
	"github.com/solris/commhub/internal/web/models"
)

const maxUploadBytes = 10 << 20

type previewData struct {
	Filename string
	Rows     [][]string
}

// Dashboard renders the composer page
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws := h.ws(r)
	snap := ws.Snapshot()

	data := map[string]any{
		"Username":    middleware.Username(r),
		"State":       snap.State.String(),
		"Source":      string(snap.Source),
		"Sender":      snap.Sender,
		"To":          snap.To,
		"Cc":          snap.Cc,
		"Subject":     snap.Subject,
		"Body":        snap.Body,
		"Editing":     snap.Editing,
		"Attachments": snap.Attachments,
		"Inputs":      pipeline.DefaultInputs(),
	}
	flash(r, data)

	if msg := r.URL.Query().Get("result"); msg != "" {
		data["Result"] = msg
	}

	if att, ok := ws.PreviewAttachment(); ok {
		p := previewData{Filename: att.Filename}
		if spreadsheet.Previewable(att.Filename) {
			rows, err := spreadsheet.Preview(att.Content, 10)
			if err != nil {
				h.logger.Warn("attachment preview failed", "filename", att.Filename, "error", err)
			} else {
				p.Rows = rows
			}
		}
		data["Preview"] = p
	}

	history, err := h.dispatches.ListRecent(middleware.Username(r), 10)
	if err != nil {
		h.logger.Error("failed to load dispatch history", "error", err)
	} else if len(history) > 0 {
		data["History"] = history
	}

	h.render(w, "dashboard", data)
}

// DraftGenerate builds a draft from the pipeline template
func (h *Handlers) DraftGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/", "error", "Invalid form data")
		return
	}

	in := pipeline.Inputs{
		Name:           r.FormValue("name"),
		RecipientEmail: r.FormValue("recipient_email"),
		CCEmail:        r.FormValue("cc_email"),
		Product:        r.FormValue("product"),
	}

	d, err := h.generator.Fetch(in)
	if err != nil {
		h.logger.Error("draft generation failed", "error", err)
		redirectWith(w, r, "/", "error", "Could not generate the draft")
		return
	}

	if err := h.ws(r).Populate(d, draft.SourcePipeline); err != nil {
		redirectWith(w, r, "/", "error", "A draft is already loaded")
		return
	}

	h.metrics.IncDraftPopulated(string(draft.SourcePipeline))
	h.logger.Info("draft generated", "to", d.To, "subject", d.Subject)
	redirectWith(w, r, "/", "success", "Draft generated")
}

// DraftUpload builds a draft from an uploaded message file
func (h *Handlers) DraftUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		redirectWith(w, r, "/", "error", "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("message")
	if err != nil {
		redirectWith(w, r, "/", "error", "Choose a message file to upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		redirectWith(w, r, "/", "error", "Could not read the uploaded file")
		return
	}

	d, err := msgfile.Parse(data, h.cfg.SMTP.Sender)
	if err != nil {
		h.metrics.IncParseFailure()
		h.logger.Warn("message parse failed", "filename", header.Filename, "error", err)
		redirectWith(w, r, "/", "error", "Could not parse the message file")
		return
	}

	if err := h.ws(r).Populate(d, draft.SourceUpload); err != nil {
		redirectWith(w, r, "/", "error", "A draft is already loaded")
		return
	}

	h.metrics.IncDraftPopulated(string(draft.SourceUpload))
	h.logger.Info("draft parsed from upload", "filename", header.Filename, "attachments", len(d.Attachments))
	redirectWith(w, r, "/", "success", "Message parsed")
}

// DraftEditing toggles edit mode
func (h *Handlers) DraftEditing(w http.ResponseWriter, r *http.Request) {
	on := r.FormValue("editing") == "on"
	if err := h.ws(r).SetEditing(on); err != nil {
		redirectWith(w, r, "/", "error", "No draft loaded")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DraftUpdate saves edited fields
func (h *Handlers) DraftUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/", "error", "Invalid form data")
		return
	}

	err := h.ws(r).UpdateFields(
		r.FormValue("to"),
		r.FormValue("cc"),
		r.FormValue("subject"),
		r.FormValue("body"),
	)
	if err != nil {
		redirectWith(w, r, "/", "error", "Draft is not editable right now")
		return
	}
	redirectWith(w, r, "/", "success", "Draft updated")
}

// DraftSubmit dispatches the draft
func (h *Handlers) DraftSubmit(w http.ResponseWriter, r *http.Request) {
	ws := h.ws(r)

	d, err := ws.Finalize()
	if err != nil {
		redirectWith(w, r, "/", "error", "Add at least one valid recipient before sending")
		return
	}

	rec := &models.Dispatch{
		Username:        middleware.Username(r),
		FromAddress:     d.Sender,
		ToAddresses:     draft.JoinAddressList(d.To),
		CCAddresses:     draft.JoinAddressList(d.Cc),
		Subject:         d.Subject,
		AttachmentCount: len(d.Attachments),
	}

	result, sendErr := h.sender.Send(r.Context(), d)
	if result != nil {
		rec.Mode = result.Mode()
	} else {
		rec.Mode = "smtp"
	}
	if err := h.dispatches.Create(rec); err != nil {
		h.logger.Error("failed to record dispatch", "error", err)
	}

	if sendErr != nil {
		h.metrics.IncDispatch(rec.Mode, models.DispatchStatusFailed)
		if err := h.dispatches.MarkFailed(rec.ID, sendErr.Error()); err != nil {
			h.logger.Error("failed to update dispatch", "error", err)
		}
		h.logger.Error("dispatch failed", "to", d.To, "error", sendErr)
		redirectWith(w, r, "/", "error", "Sending failed: "+sendErr.Error())
		return
	}

	h.metrics.IncDispatch(rec.Mode, models.DispatchStatusSent)
	if err := h.dispatches.MarkSent(rec.ID); err != nil {
		h.logger.Error("failed to update dispatch", "error", err)
	}

	ws.MarkSent()
	h.logger.Info("dispatch complete", "to", d.To, "mode", rec.Mode)
	redirectWith(w, r, "/", "result", result.Message)
}

// DraftReset discards the draft
func (h *Handlers) DraftReset(w http.ResponseWriter, r *http.Request) {
	h.ws(r).Reset()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// AttachmentAdd uploads a new attachment onto the draft
func (h *Handlers) AttachmentAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		redirectWith(w, r, "/", "error", "Upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("attachment")
	if err != nil {
		redirectWith(w, r, "/", "error", "Choose a file to attach")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		redirectWith(w, r, "/", "error", "Could not read the uploaded file")
		return
	}

	att := draft.NewAttachment(header.Filename, content, header.Header.Get("Content-Type"))
	if err := h.ws(r).AddAttachment(att); err != nil {
		redirectWith(w, r, "/", "error", "No draft loaded")
		return
	}

	h.logger.Info("attachment added", "filename", att.Filename, "bytes", len(content))
	redirectWith(w, r, "/", "success", "Attachment added")
}

// AttachmentDelete removes an attachment by ID
func (h *Handlers) AttachmentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ws(r).RemoveAttachment(id); err != nil {
		redirectWith(w, r, "/", "error", "Attachment not found")
		return
	}
	redirectWith(w, r, "/", "success", "Attachment removed")
}

// AttachmentPreview toggles the preview selection for an attachment
func (h *Handlers) AttachmentPreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ws(r).TogglePreview(id); err != nil {
		redirectWith(w, r, "/", "error", "Attachment not found")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
