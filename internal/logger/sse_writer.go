package logger

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gourmand-app/gourmand/pkg/errors"
	"github.com/r3labs/sse/v2"
	"github.com/rs/zerolog"
)

const defaultTimeFormat = time.Kitchen

// SSEPublisher is the part of the sse server the writer needs.
type SSEPublisher interface {
	Publish(topic string, event *sse.Event)
}

// LogMessage is the shape published on the "logs" stream.
type LogMessage struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Bytes returns the JSON encoding of the message.
func (m LogMessage) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// SSEWriter formats zerolog JSON events into LogMessages and publishes them
// on the "logs" SSE stream so the shell can render a live log view.
type SSEWriter struct {
	SSE        SSEPublisher
	TimeFormat string
	PartsOrder []string
}

func defaultPartsOrder() []string {
	return []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		zerolog.CallerFieldName,
		zerolog.MessageFieldName,
	}
}

// NewSSEWriter returns a writer publishing to the given server.
func NewSSEWriter(s SSEPublisher, options ...func(w *SSEWriter)) SSEWriter {
	w := SSEWriter{
		SSE:        s,
		TimeFormat: defaultTimeFormat,
		PartsOrder: defaultPartsOrder(),
	}

	for _, opt := range options {
		opt(&w)
	}

	return w
}

// Write implements io.Writer for zerolog output.
func (w SSEWriter) Write(p []byte) (n int, err error) {
	if w.SSE == nil {
		return 0, nil
	}

	var evt map[string]interface{}
	if err := json.Unmarshal(p, &evt); err != nil {
		return 0, errors.Wrap(err, "cannot decode log event")
	}

	msg := LogMessage{
		Time:    w.formatTimestamp(evt),
		Level:   formatLevel(evt),
		Message: w.formatMessage(evt),
	}

	data, err := msg.Bytes()
	if err != nil {
		return 0, errors.Wrap(err, "cannot encode log message")
	}

	w.SSE.Publish("logs", &sse.Event{Data: data})

	return len(p), nil
}

func (w SSEWriter) formatTimestamp(evt map[string]interface{}) string {
	raw, ok := evt[zerolog.TimestampFieldName].(string)
	if !ok {
		return ""
	}

	ts, err := time.Parse(zerolog.TimeFieldFormat, raw)
	if err != nil {
		return raw
	}

	return ts.Format(w.TimeFormat)
}

func formatLevel(evt map[string]interface{}) string {
	level, _ := evt[zerolog.LevelFieldName].(string)

	switch level {
	case zerolog.LevelTraceValue:
		return "TRC"
	case zerolog.LevelDebugValue:
		return "DBG"
	case zerolog.LevelInfoValue:
		return "INF"
	case zerolog.LevelWarnValue:
		return "WRN"
	case zerolog.LevelErrorValue:
		return "ERR"
	case zerolog.LevelFatalValue:
		return "FTL"
	case zerolog.LevelPanicValue:
		return "PNC"
	default:
		return strings.ToUpper(level)
	}
}

func (w SSEWriter) formatMessage(evt map[string]interface{}) string {
	var b strings.Builder

	if caller, ok := evt[zerolog.CallerFieldName].(string); ok && caller != "" {
		b.WriteString(caller)
		b.WriteString(" > ")
	}

	if message, ok := evt[zerolog.MessageFieldName].(string); ok {
		b.WriteString(message)
	}

	// append remaining fields as key=value, sorted for stable output
	skip := map[string]struct{}{
		zerolog.TimestampFieldName: {},
		zerolog.LevelFieldName:     {},
		zerolog.CallerFieldName:    {},
		zerolog.MessageFieldName:   {},
	}

	keys := make([]string, 0, len(evt))
	for k := range evt {
		if _, ok := skip[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", k, evt[k]))
	}

	return b.String()
}
