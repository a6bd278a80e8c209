package mail

import (
	"io"
	"strings"

	"github.com/emersion/go-message/mail"
)

// Content holds the extracted bodies of a fetched message. When a message
// carries multiple parts of the same type they are concatenated in the
// order the reader yields them.
type Content struct {
	Text string
	HTML string
}

// ExtractContent walks the MIME structure of a raw message body and pulls
// out the inline text/plain and text/html parts. Attachments are skipped.
// Unreadable parts are skipped rather than failing the whole message.
func ExtractContent(body io.Reader) (*Content, error) {
	mr, err := mail.CreateReader(body)
	if err != nil {
		return nil, err
	}

	content := &Content{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			b, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			contentType, _, _ := h.ContentType()
			if strings.Contains(contentType, "text/plain") {
				content.Text += string(b)
			} else if strings.Contains(contentType, "text/html") {
				content.HTML += string(b)
			}
		case *mail.AttachmentHeader:
			// Skipped; message bodies are all this gateway needs.
		}
	}

	return content, nil
}
