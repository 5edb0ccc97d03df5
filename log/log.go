// Package log provides the slog handlers the bot logs with.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
)

type PrettyHandlerOptions struct {
	SlogOpts slog.HandlerOptions
	// Optional timezone to use for logging. If nil, local timezone is used.
	TimeZone *time.Location
}

// PrettyHandler prints one colored line per record: timestamp, level,
// message, then the attributes as JSON.
type PrettyHandler struct {
	slog.Handler
	l        *log.Logger
	timeZone *time.Location

	// attrs were added with WithAttrs, already qualified by group.
	attrs map[string]interface{}
	group string
}

func levelString(lvl slog.Level) string {
	s := lvl.String()
	switch {
	case lvl < slog.LevelInfo:
		return color.MagentaString(s)
	case lvl < slog.LevelWarn:
		return color.BlueString(s)
	case lvl < slog.LevelError:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func attrValue(a slog.Attr) interface{} {
	v := a.Value.Resolve()
	if errVal, ok := v.Any().(error); ok {
		return errVal.Error()
	}
	if v.Kind() == slog.KindGroup {
		group := make(map[string]interface{}, len(v.Group()))
		for _, ga := range v.Group() {
			group[ga.Key] = attrValue(ga)
		}
		return group
	}
	return v.Any()
}

func (h *PrettyHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for k, v := range h.attrs {
		fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.key(a.Key)] = attrValue(a)
		return true
	})

	var b []byte
	if len(fields) > 0 {
		var err error
		b, err = json.Marshal(fields)
		if err != nil {
			return err
		}
	}

	logTime := r.Time
	if h.timeZone != nil {
		logTime = logTime.In(h.timeZone)
	}

	// [2023-04-15 15:05:05.000 -0700 PDT]
	timeStr := logTime.Format("[2006-01-02 15:04:05.000 -0700 MST]")
	h.l.Println(timeStr, levelString(r.Level), color.CyanString(r.Message), color.HiBlackString(string(b)))
	return nil
}

// WithAttrs keeps pretty printing for loggers made with slog.With.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		next.attrs[h.key(a.Key)] = attrValue(a)
	}
	return next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.group = h.key(name)
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	attrs := make(map[string]interface{}, len(h.attrs))
	for k, v := range h.attrs {
		attrs[k] = v
	}
	return &PrettyHandler{
		Handler:  h.Handler,
		l:        h.l,
		timeZone: h.timeZone,
		attrs:    attrs,
		group:    h.group,
	}
}

func NewPrettyHandler(
	out io.Writer,
	opts PrettyHandlerOptions,
) *PrettyHandler {
	return &PrettyHandler{
		// Only consulted for Enabled.
		Handler:  slog.NewJSONHandler(out, &opts.SlogOpts),
		l:        log.New(out, "", 0),
		timeZone: opts.TimeZone,
		attrs:    map[string]interface{}{},
	}
}

// Helper function to create a new handler with UTC timezone
func NewUTCPrettyHandler(
	out io.Writer,
	opts PrettyHandlerOptions,
) *PrettyHandler {
	opts.TimeZone = time.UTC
	return NewPrettyHandler(out, opts)
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// NewHandler returns the handler for the configured format: "pretty" (the
// default) or "tint". utc only applies to the pretty handler.
func NewHandler(format string, level slog.Level, utc bool) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", "pretty":
		opts := PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: level},
		}
		if utc {
			return NewUTCPrettyHandler(os.Stdout, opts), nil
		}
		return NewPrettyHandler(os.Stdout, opts), nil
	case "tint":
		return tint.NewHandler(colorable.NewColorableStdout(), &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			AddSource:  level <= slog.LevelDebug,
		}), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
