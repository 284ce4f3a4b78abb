package main

import (
	"errors"
	"fmt"
	"inbox-lab/domain"
	"inbox-lab/domain/event"
	pb "inbox-lab/infrastructure/grpc/inboxv1"
	"inbox-lab/projection"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func newApp(s *session) *cli.App {
	return &cli.App{
		Name:  "inbox",
		Usage: "Talk to an inbox server as $INBOX_USER_ID",
		Commands: []*cli.Command{
			{
				Name:      "start",
				Usage:     "Find or create the conversation with the given users",
				ArgsUsage: "USER [USER...]",
				Action:    s.start,
			},
			{
				Name:      "send",
				Usage:     "Send a message",
				ArgsUsage: "CONVERSATION TEXT...",
				Action:    s.send,
			},
			{
				Name:      "history",
				Usage:     "Print a page of history, newest last",
				ArgsUsage: "CONVERSATION",
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "before", Usage: "Only messages older than this id"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Page size (server default when 0)"},
				},
				Action: s.history,
			},
			{
				Name:      "seen",
				Usage:     "Mark a conversation seen up to a message",
				ArgsUsage: "CONVERSATION MESSAGE_ID",
				Action:    s.seen,
			},
			{
				Name:   "summary",
				Usage:  "List conversations, most recent first",
				Action: s.summary,
			},
			{
				Name:      "listen",
				Usage:     "Show a conversation and follow new messages",
				ArgsUsage: "CONVERSATION",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "mark-seen", Usage: "Mark every displayed message seen"},
				},
				Action: s.listen,
			},
		},
	}
}

func (s *session) start(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: USER")
	}
	res, err := s.client.StartConversation(s.ctx(c.Context), &pb.StartConversationRequest{Participants: c.Args().Slice()})
	if err != nil {
		return err
	}
	s.printer.conversation(res.Conversation, res.Created)
	return nil
}

func (s *session) send(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("missing required arguments: CONVERSATION TEXT")
	}
	res, err := s.client.Send(s.ctx(c.Context), &pb.SendRequest{
		ConversationID: c.Args().First(),
		Text:           strings.Join(c.Args().Tail(), " "),
	})
	if err != nil {
		return err
	}
	s.printer.message(res.Message, s.config.UserID)
	return nil
}

func (s *session) history(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: CONVERSATION")
	}
	res, err := s.client.FetchHistory(s.ctx(c.Context), &pb.FetchHistoryRequest{
		ConversationID: c.Args().First(),
		Before:         c.Uint64("before"),
		Limit:          int32(c.Int("limit")),
	})
	if err != nil {
		return err
	}
	for _, m := range lo.Reverse(res.Messages) {
		s.printer.message(m, s.config.UserID)
	}
	return nil
}

func (s *session) seen(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("missing required arguments: CONVERSATION MESSAGE_ID")
	}
	id, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", c.Args().Get(1), err)
	}
	res, err := s.client.MarkSeen(s.ctx(c.Context), &pb.MarkSeenRequest{ConversationID: c.Args().First(), MessageID: id})
	if err != nil {
		return err
	}
	s.printer.info(fmt.Sprintf("Seen up to #%d", res.Cursor.LastSeenMessageID))
	return nil
}

func (s *session) summary(c *cli.Context) error {
	res, err := s.client.Summarize(s.ctx(c.Context), &pb.SummaryRequest{})
	if err != nil {
		return err
	}
	s.printer.summary(res, s.config.UserID)
	return nil
}

// listen subscribes first, then loads history, so that nothing sent in between is missed.
// The timeline absorbs the overlap.
func (s *session) listen(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: CONVERSATION")
	}
	ctx := s.ctx(c.Context)
	conversationID := c.Args().First()
	timeline := projection.NewTimeline(domain.ConversationID(conversationID))

	stream, err := s.client.Connect(ctx, &pb.ConnectRequest{})
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	// Wait for the subscription before loading, so nothing falls in between.
	if _, err := stream.Header(); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	if err := timeline.BeginLoad(); err != nil {
		return err
	}
	if err := s.refresh(c, timeline); err != nil {
		return err
	}
	printed := s.printNew(timeline, 0)
	s.printer.info(fmt.Sprintf(">>> Listening to %s (Ctrl+C to quit)...", conversationID))

	for {
		evt, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		if evt.Message == nil {
			continue
		}
		if err := timeline.Consume(ctx, event.MessageCreated{Message: fromMessage(evt.Message)}); err != nil {
			return err
		}
		if timeline.HasGap() {
			s.log.Debug("Notifications were dropped, refetching", "conversation_id", conversationID)
			if err := s.refresh(c, timeline); err != nil {
				return err
			}
		}
		printed = s.printNew(timeline, printed)
		if c.Bool("mark-seen") && printed > 0 {
			if _, err := s.client.MarkSeen(ctx, &pb.MarkSeenRequest{ConversationID: conversationID, MessageID: uint64(printed)}); err != nil {
				s.log.Warn("Cannot mark seen", "error", err)
			}
		}
	}
}

func (s *session) refresh(c *cli.Context, timeline *projection.Timeline) error {
	res, err := s.client.FetchHistory(s.ctx(c.Context), &pb.FetchHistoryRequest{ConversationID: string(timeline.ConversationID())})
	if err != nil {
		return err
	}
	page := lo.Map(res.Messages, func(m *pb.Message, _ int) domain.Message { return fromMessage(m) })
	return timeline.ApplyPage(page, len(page))
}

// printNew prints the messages newer than the last printed id and returns the new last id.
func (s *session) printNew(timeline *projection.Timeline, printed domain.MessageID) domain.MessageID {
	for _, m := range timeline.Messages() {
		if m.ID <= printed {
			continue
		}
		s.printer.message(toWire(m), s.config.UserID)
		printed = m.ID
	}
	return printed
}

func fromMessage(m *pb.Message) domain.Message {
	return domain.Message{
		ID:             domain.MessageID(m.ID),
		ConversationID: domain.ConversationID(m.ConversationID),
		SenderID:       domain.UserID(m.SenderID),
		SentAt:         m.SentAt,
		Text:           m.Text,
	}
}

func toWire(m domain.Message) *pb.Message {
	return &pb.Message{
		ID:             uint64(m.ID),
		ConversationID: string(m.ConversationID),
		SenderID:       string(m.SenderID),
		SentAt:         m.SentAt,
		Text:           m.Text,
	}
}
