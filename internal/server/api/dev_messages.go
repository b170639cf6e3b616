package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kamikazebr/todo-otp/pkg/models"
	"go.uber.org/zap"
)

const streamKeepAlive = 30 * time.Second

type DevInbox interface {
	Snapshot(ctx context.Context) (*models.DevInboxSnapshot, error)
	SnapshotJSON(ctx context.Context) ([]byte, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) (int64, error)
}

// StreamHub hands out subscriptions to inbox change events.
type StreamHub interface {
	Subscribe() (string, <-chan []byte)
	Unsubscribe(id string)
}

type DevMessagesHandler struct {
	inbox  DevInbox
	hub    StreamHub
	logger *zap.Logger
}

func NewDevMessagesHandler(inbox DevInbox, hub StreamHub, logger *zap.Logger) *DevMessagesHandler {
	return &DevMessagesHandler{inbox: inbox, hub: hub, logger: logger}
}

func (h *DevMessagesHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	snap, err := h.inbox.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *DevMessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "message_id"), 10, 64)
	if err != nil || id <= 0 {
		respondErrorJSON(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	if err := h.inbox.MarkRead(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, models.MarkReadResponse{Success: true})
}

func (h *DevMessagesHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if _, err := h.inbox.MarkAllRead(r.Context()); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, models.MarkReadResponse{Success: true})
}

// Stream sends the inbox snapshot as server-sent events: once on connect,
// then after every change, until the client goes away or the hub drops
// the subscription.
func (h *DevMessagesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("cannot clear write deadline for stream", zap.Error(err))
	}

	initial, err := h.inbox.SnapshotJSON(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}

	id, events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, rc, initial); err != nil {
		return
	}

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, rc, payload); err != nil {
				h.logger.Debug("stream write failed", zap.String("subscriber", id), zap.Error(err))
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, payload []byte) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	return rc.Flush()
}
