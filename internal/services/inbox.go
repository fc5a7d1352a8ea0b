package services

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"
	"rfpdesk/api/internal/logging"
)

// MessageSource delivers unseen inbound messages to handle.
// A message is marked seen only when handle returns nil, so failures are retried next poll.
type MessageSource interface {
	Poll(ctx context.Context, handle func(context.Context, InboundMessage) error) error
}

const imapTimeout = 30 * time.Second

// IMAPInbox polls one mailbox over IMAPS.
type IMAPInbox struct {
	addr    string
	user    string
	pass    string
	mailbox string
	logger  *zap.Logger
}

func NewIMAPInbox(addr, user, pass, mailbox string, logger *zap.Logger) *IMAPInbox {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &IMAPInbox{
		addr:    addr,
		user:    user,
		pass:    pass,
		mailbox: mailbox,
		logger:  logging.OrNop(logger),
	}
}

// Poll fetches every unseen message, hands each to handle and flags the handled ones \Seen.
func (b *IMAPInbox) Poll(ctx context.Context, handle func(context.Context, InboundMessage) error) error {
	c, err := client.DialTLS(b.addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to imap server: %w", err)
	}
	c.Timeout = imapTimeout
	defer func() {
		if err := c.Logout(); err != nil {
			b.logger.Debug("imap logout failed", zap.Error(err))
		}
	}()

	if err := c.Login(b.user, b.pass); err != nil {
		return fmt.Errorf("failed to login to imap server: %w", err)
	}
	if _, err := c.Select(b.mailbox, false); err != nil {
		return fmt.Errorf("failed to select mailbox %s: %w", b.mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	seqNums, err := c.Search(criteria)
	if err != nil {
		return fmt.Errorf("failed to search unseen messages: %w", err)
	}
	if len(seqNums) == 0 {
		return nil
	}
	b.logger.Info("fetching unseen messages", zap.Int("count", len(seqNums)), zap.String("mailbox", b.mailbox))

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)
	// Peek so fetching does not set \Seen; only handled messages are flagged
	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	handled := new(imap.SeqSet)
	for m := range messages {
		if ctx.Err() != nil {
			continue // drain the channel so Fetch can finish
		}
		body := m.GetBody(section)
		if body == nil {
			b.logger.Warn("message has no body", zap.Uint32("seq", m.SeqNum))
			continue
		}
		in, err := ParseMessage(body)
		if err != nil {
			// unparseable mail will never succeed; flag it so it is not refetched forever
			b.logger.Warn("failed to parse message", zap.Uint32("seq", m.SeqNum), zap.Error(err))
			handled.AddNum(m.SeqNum)
			continue
		}
		in.SeqNum = m.SeqNum
		if err := handle(ctx, in); err != nil {
			b.logger.Error("failed to handle message",
				zap.Uint32("seq", m.SeqNum), zap.String("from", in.From), zap.Error(err))
			continue
		}
		handled.AddNum(m.SeqNum)
	}
	if err := <-done; err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	if !handled.Empty() {
		flags := []interface{}{imap.SeenFlag}
		if err := c.Store(handled, imap.FormatFlagsOp(imap.AddFlags, true), flags, nil); err != nil {
			return fmt.Errorf("failed to mark messages seen: %w", err)
		}
	}
	return ctx.Err()
}
