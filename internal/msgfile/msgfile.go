// Package msgfile parses an uploaded mail-message file into a draft.
// The container format itself is the parsing library's job; this
// package only applies the workflow's header, body and attachment
// cleanup rules on top of it.
package msgfile

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/solris/commhub/internal/draft"
)

// Parse reads an RFC 5322 message and returns the draft it describes.
// A malformed message yields an error and no partial draft.
func Parse(data []byte, sender string) (*draft.Draft, error) {
	mr, err := mail.CreateReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message file: %w", err)
	}
	defer mr.Close()

	subject, _ := mr.Header.Subject()
	rawTo, _ := mr.Header.Text("To")
	rawCc, _ := mr.Header.Text("Cc")

	var (
		textBody    string
		htmlBody    string
		attachments []draft.Attachment
	)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read message part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				return nil, fmt.Errorf("failed to read body part: %w", readErr)
			}
			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				textBody = string(body)
			case strings.HasPrefix(contentType, "text/html"):
				htmlBody = string(body)
			}

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			content, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				return nil, fmt.Errorf("failed to read attachment: %w", readErr)
			}
			attachments = append(attachments, draft.NewAttachment(filename, content, ""))
		}
	}

	// The plain-text part wins; an HTML-only message is reduced to text.
	body := draft.CleanHeaderText(textBody)
	if body == "" && htmlBody != "" {
		body = draft.ReduceHTML(htmlBody)
	}

	d := &draft.Draft{
		Sender:      sender,
		To:          draft.ParseAddressList(rawTo),
		Cc:          draft.ParseAddressList(rawCc),
		Subject:     draft.CleanHeaderText(subject),
		Body:        body,
		Attachments: attachments,
	}
	return d, nil
}
