package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"

	"github.com/yuin/goldmark"

	"noticeboard/internal/domain/notice"
)

// Announcer emails each newly created notice to a fixed recipient list.
type Announcer struct {
	sender     Sender
	recipients []string
	md         goldmark.Markdown
}

// NewAnnouncer creates an Announcer. Raw HTML in notice content is escaped by goldmark's defaults.
// PRE: recipients is non-empty
func NewAnnouncer(sender Sender, recipients []string) *Announcer {
	return &Announcer{
		sender:     sender,
		recipients: append([]string{}, recipients...),
		md:         goldmark.New(),
	}
}

var announceTmpl = template.Must(template.New("announce").Parse(`<h2>{{.Title}}</h2>
{{.Body}}
<p style="color:#666;font-size:12px">Posted {{.Posted}} &middot; displayed for {{.Duration}}s</p>
`))

// Announce renders n and sends it to every recipient in one message.
// PRE: n is a persisted, valid notice
// POST: One email is handed to the sender, or an error is returned
func (a *Announcer) Announce(ctx context.Context, n notice.Notice) error {
	var body bytes.Buffer
	if err := a.md.Convert([]byte(n.Content), &body); err != nil {
		return fmt.Errorf("render notice %s: %w", n.ID, err)
	}

	var html bytes.Buffer
	err := announceTmpl.Execute(&html, struct {
		Title    string
		Body     template.HTML
		Posted   string
		Duration string
	}{
		Title:    n.Title,
		Body:     template.HTML(body.String()),
		Posted:   n.CreatedAtISO,
		Duration: strconv.FormatFloat(n.Duration, 'f', -1, 64),
	})
	if err != nil {
		return fmt.Errorf("render notice %s: %w", n.ID, err)
	}

	_, err = a.sender.Send(ctx, SendRequest{
		To:      a.recipients,
		Subject: "New notice: " + n.Title,
		HTML:    html.String(),
		Text:    n.Title + "\n\n" + n.Content,
	})
	return err
}
