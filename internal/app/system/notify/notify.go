// Package notify sends push notifications to FCM topics.
//
// A Dispatcher is built once at startup. When no service-account credential
// is configured it is built with a nil Sender and every Send reports the
// service as unavailable.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Sender delivers one message and returns the provider's message ID.
// *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// Request is a notification addressed to a topic. Data values may be any
// JSON value; they are coerced to strings before sending.
type Request struct {
	Topic string
	Title string
	Body  string
	Data  map[string]any
}

// Received reports which required fields were non-empty.
type Received struct {
	Topic   bool `json:"topic"`
	Title   bool `json:"title"`
	Message bool `json:"message"`
}

// MissingFields are the details attached to a validation failure.
type MissingFields struct {
	Required []string `json:"required"`
	Received Received `json:"received"`
}

type Dispatcher struct {
	sender Sender
	log    *zap.Logger
}

// New returns a Dispatcher. sender may be nil.
func New(sender Sender, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sender: sender, log: log}
}

// Configured reports whether a push credential was loaded.
func (d *Dispatcher) Configured() bool { return d != nil && d.sender != nil }

// Send validates req, coerces its data and sends exactly one message to
// req.Topic. Errors are *apperr.Error: Validation for missing fields or a
// payload the provider rejects as invalid, Unavailable when unconfigured,
// Internal for anything else. There is no retry.
func (d *Dispatcher) Send(ctx context.Context, req Request) (string, error) {
	recv := Received{Topic: req.Topic != "", Title: req.Title != "", Message: req.Body != ""}
	if !recv.Topic || !recv.Title || !recv.Message {
		return "", apperr.ValidationWithDetails("Missing required fields", MissingFields{
			Required: []string{"topic", "title", "message"},
			Received: recv,
		})
	}
	if !d.Configured() {
		return "", apperr.Unavailable("Firebase Admin not initialized").
			WithHint("Firebase service account not configured")
	}

	msg := &messaging.Message{
		Topic: req.Topic,
		Notification: &messaging.Notification{
			Title: req.Title,
			Body:  req.Body,
		},
	}
	if req.Data != nil {
		data, err := CoerceData(req.Data)
		if err != nil {
			return "", apperr.Wrap(err, apperr.CodeValidation, "Invalid notification payload")
		}
		msg.Data = data
	}

	d.log.Info("sending FCM notification",
		zap.String("topic", req.Topic),
		zap.String("title", req.Title),
		zap.Int("data_keys", len(msg.Data)))

	id, err := d.sender.Send(ctx, msg)
	if err != nil {
		d.log.Warn("FCM send failed", zap.String("topic", req.Topic), zap.Error(err))
		if errorutils.IsInvalidArgument(err) {
			return "", apperr.Wrap(err, apperr.CodeValidation, "Failed to send notification to topic").
				WithHint("Invalid notification payload")
		}
		return "", apperr.Wrap(err, apperr.CodeInternal, "Failed to send notification to topic").
			WithHint(err.Error())
	}

	d.log.Info("FCM notification sent", zap.String("topic", req.Topic), zap.String("message_id", id))
	return id, nil
}

// CoerceData converts every value to the string form FCM requires:
// strings unchanged, numbers in shortest decimal form, booleans as
// "true"/"false", null as "null", objects and arrays as compact JSON.
func CoerceData(data map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(data))
	for k, v := range data {
		s, err := coerce(v)
		if err != nil {
			return nil, fmt.Errorf("data[%q]: %w", k, err)
		}
		out[k] = s
	}
	return out, nil
}

func coerce(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "null", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return formatNumber(x), nil
	case float32:
		return formatNumber(float64(x)), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x.String(), nil
		}
		return formatNumber(f), nil
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

// formatNumber writes f without a trailing ".0" and switches to exponent
// form only for very large or very small magnitudes. The exponent carries
// no zero padding: 1e-7, 1e+21.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		s := strconv.FormatFloat(f, 'g', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
