package main

import (
	"fmt"
	pb "inbox-lab/infrastructure/grpc/inboxv1"
	"io"
	"strings"
	"time"

	"github.com/gookit/color"
)

type printer struct {
	out     io.Writer
	colours bool
}

func newPrinter(out io.Writer, colours bool) printer {
	return printer{out: out, colours: colours}
}

func (p printer) render(style color.Style, text string) string {
	if !p.colours {
		return text
	}
	return style.Render(text)
}

func (p printer) message(m *pb.Message, me string) {
	author := p.render(color.New(color.FgCyan), m.SenderID)
	if m.SenderID == me {
		author = p.render(color.New(color.FgGreen, color.OpBold), "me")
	}
	_, _ = fmt.Fprintf(p.out, "[%s] #%d %s: %s\n", m.SentAt.Local().Format(time.TimeOnly), m.ID, author, m.Text)
}

func (p printer) conversation(c *pb.Conversation, created bool) {
	verb := "Found"
	if created {
		verb = "Created"
	}
	_, _ = fmt.Fprintf(p.out, "%s conversation %s with %s\n", verb,
		p.render(color.New(color.FgYellow), c.ID), strings.Join(c.Participants, ", "))
}

func (p printer) summary(res *pb.SummaryResponse, me string) {
	_, _ = fmt.Fprintf(p.out, "%s\n", p.render(color.New(color.OpBold), fmt.Sprintf("Inbox (%d new)", res.UnseenTotal)))
	for _, e := range res.Entries {
		others := make([]string, 0, len(e.Participants))
		for _, participant := range e.Participants {
			if participant != me {
				others = append(others, participant)
			}
		}
		badge := ""
		if e.UnseenCount > 0 {
			badge = p.render(color.New(color.FgWhite, color.BgRed), fmt.Sprintf(" %d ", e.UnseenCount))
		}
		last := p.render(color.New(color.FgGray), "no messages yet")
		if e.LastMessage != nil {
			last = fmt.Sprintf("%s: %s", e.LastMessage.SenderID, e.LastMessage.Text)
		}
		_, _ = fmt.Fprintf(p.out, "%s  %-24s %s %s\n", e.ConversationID, strings.Join(others, ", "), badge, last)
	}
}

func (p printer) info(text string) {
	_, _ = fmt.Fprintln(p.out, p.render(color.New(color.FgMagenta), text))
}
