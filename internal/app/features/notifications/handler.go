package notifications

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/notify"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves push notification requests.
type Handler struct {
	Notify *notify.Dispatcher
	Log    *zap.Logger
}

func NewHandler(d *notify.Dispatcher, logger *zap.Logger) *Handler {
	return &Handler{Notify: d, Log: logger}
}

type sendRequest struct {
	Topic   string          `json:"topic"`
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// objectData returns raw as a map when it is a JSON object. Any other
// value, arrays included, is ignored and the message carries no data.
func objectData(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

type sentPayload struct {
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type sendResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	MessageID   string      `json:"messageId"`
	SentToTopic string      `json:"sentToTopic"`
	Payload     sentPayload `json:"payload"`
}

// HandleSend handles POST /send-notification.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	data := objectData(req.Data)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "send notification")
	defer cancel()

	id, err := h.Notify.Send(ctx, notify.Request{
		Topic: req.Topic,
		Title: req.Title,
		Body:  req.Message,
		Data:  data,
	})
	if err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	jsonio.OK(w, sendResponse{
		Success:     true,
		Message:     "Notification sent successfully to topic",
		MessageID:   id,
		SentToTopic: req.Topic,
		Payload:     sentPayload{Title: req.Title, Message: req.Message, Data: data},
	}, h.Log)
}
