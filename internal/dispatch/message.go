package dispatch

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/solris/commhub/internal/draft"
)

// BuildMessage assembles the RFC 5322 wire form of a draft: a
// multipart/mixed body with one text part and one base64 part per
// attachment.
func BuildMessage(d *draft.Draft) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", d.Sender)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(d.To, ", "))
	if len(d.Cc) > 0 {
		fmt.Fprintf(&buf, "Cc: %s\r\n", strings.Join(d.Cc, ", "))
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", d.Subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	buf.WriteString("\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	pw, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := pw.Write([]byte(d.Body)); err != nil {
		return nil, fmt.Errorf("failed to write body part: %w", err)
	}

	for _, a := range d.Attachments {
		mediaType := normalizeMediaType(a.MIMEType)
		partHeader := textproto.MIMEHeader{}
		partHeader.Set("Content-Type", fmt.Sprintf("%s; name=%q", mediaType, a.Filename))
		partHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename))
		partHeader.Set("Content-Transfer-Encoding", "base64")

		pw, err := mw.CreatePart(partHeader)
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part %s: %w", a.Filename, err)
		}
		if err := writeBase64(pw, a.Content); err != nil {
			return nil, fmt.Errorf("failed to encode attachment %s: %w", a.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish message: %w", err)
	}
	return buf.Bytes(), nil
}

// normalizeMediaType returns the stored MIME type when it has the
// type/subtype shape, application/octet-stream otherwise.
func normalizeMediaType(mt string) string {
	maintype, subtype, ok := strings.Cut(mt, "/")
	if !ok || maintype == "" || subtype == "" {
		return "application/octet-stream"
	}
	return mt
}

const base64LineLength = 76

func writeBase64(w io.Writer, content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 0 {
		n := base64LineLength
		if n > len(encoded) {
			n = len(encoded)
		}
		if _, err := w.Write([]byte(encoded[:n])); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
