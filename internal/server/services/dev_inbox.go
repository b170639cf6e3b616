package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kamikazebr/todo-otp/internal/server/storage"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"go.uber.org/zap"
)

// DevInbox stores outgoing messages locally in development and pushes the
// inbox state to stream subscribers after every change.
type DevInbox struct {
	store       storage.DevMessageStore
	broadcaster *Broadcaster
	logger      *zap.Logger
}

func NewDevInbox(store storage.DevMessageStore, broadcaster *Broadcaster, logger *zap.Logger) *DevInbox {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DevInbox{
		store:       store,
		broadcaster: broadcaster,
		logger:      logger.Named("dev_inbox"),
	}
}

func (d *DevInbox) Save(ctx context.Context, msg *models.DevMessage) error {
	if msg.Type == "" {
		msg.Type = models.MessageTypeEmail
	}
	if err := d.store.Create(ctx, msg); err != nil {
		return storageError("save dev message", err)
	}
	d.publish(ctx)
	return nil
}

func (d *DevInbox) Snapshot(ctx context.Context) (*models.DevInboxSnapshot, error) {
	messages, err := d.store.List(ctx)
	if err != nil {
		return nil, storageError("list dev messages", err)
	}
	if messages == nil {
		messages = []models.DevMessage{}
	}

	unread := 0
	for _, m := range messages {
		if !m.Read {
			unread++
		}
	}
	return &models.DevInboxSnapshot{Messages: messages, UnreadCount: unread}, nil
}

func (d *DevInbox) MarkRead(ctx context.Context, id int64) error {
	found, err := d.store.MarkRead(ctx, id)
	if err != nil {
		return storageError("mark dev message read", err)
	}
	if !found {
		return ErrMessageNotFound
	}
	d.publish(ctx)
	return nil
}

func (d *DevInbox) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := d.store.MarkAllRead(ctx)
	if err != nil {
		return 0, storageError("mark all dev messages read", err)
	}
	d.publish(ctx)
	return n, nil
}

// SnapshotJSON encodes the current inbox state as a stream event payload.
func (d *DevInbox) SnapshotJSON(ctx context.Context) ([]byte, error) {
	snap, err := d.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

func (d *DevInbox) publish(ctx context.Context) {
	if d.broadcaster == nil {
		return
	}
	payload, err := d.SnapshotJSON(ctx)
	if err != nil {
		d.logger.Warn("failed to build inbox snapshot", zap.Error(err))
		return
	}
	d.broadcaster.Broadcast(payload)
}

// DevMailer delivers mail into the dev inbox instead of sending it.
type DevMailer struct {
	inbox  *DevInbox
	logger *zap.Logger
}

func NewDevMailer(inbox *DevInbox, logger *zap.Logger) *DevMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DevMailer{inbox: inbox, logger: logger.Named("dev_mailer")}
}

func (m *DevMailer) Deliver(ctx context.Context, msg Message) error {
	content := msg.HTML
	if strings.TrimSpace(content) == "" {
		content = msg.Text
	}
	if err := m.inbox.Save(ctx, &models.DevMessage{
		To:      msg.To,
		Subject: msg.Subject,
		Content: content,
		Type:    models.MessageTypeEmail,
	}); err != nil {
		return err
	}
	m.logger.Info("email captured in dev inbox", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
