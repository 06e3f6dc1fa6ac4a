package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// FixedFormatWriter turns zerolog JSON records into aligned text lines for
// the rotating log file:
//
//	2026-10-14 09:12:40.118 [INF] [scheduler ] Reading collected cpu=3.1 ram=41.2
//	2026-10-14 09:12:40.502 [ERR] [mqtt-sender] Publish failed error="connect: timeout"
type FixedFormatWriter struct {
	w io.Writer
}

// NewFixedFormatWriter creates a new FixedFormatWriter that wraps the given writer.
func NewFixedFormatWriter(w io.Writer) *FixedFormatWriter {
	return &FixedFormatWriter{w: w}
}

const (
	componentWidth = 11
	lineTimeFormat = "2006-01-02 15:04:05.000"
)

var levelTags = map[string]string{
	"trace": "TRC",
	"debug": "DBG",
	"info":  "INF",
	"warn":  "WRN",
	"error": "ERR",
	"fatal": "FTL",
	"panic": "PNC",
}

func (f *FixedFormatWriter) Write(p []byte) (int, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err != nil {
		return f.w.Write(p)
	}

	ts := popString(fields, "time")
	level := popString(fields, "level")
	component := popString(fields, "component")
	message := popString(fields, "message")
	delete(fields, "caller")

	tag, ok := levelTags[level]
	if !ok {
		tag = "???"
	}
	if len(component) > componentWidth {
		component = component[:componentWidth]
	}

	var b strings.Builder
	b.WriteString(formatTimestamp(ts))
	fmt.Fprintf(&b, " [%s] [%-*s] %s", tag, componentWidth, component, message)
	if extra := formatExtra(fields); extra != "" {
		b.WriteByte(' ')
		b.WriteString(extra)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(f.w, b.String())
	// zerolog treats a short count as an error
	return len(p), err
}

func popString(fields map[string]interface{}, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// formatTimestamp renders an RFC3339 timestamp in its own offset with
// millisecond precision. Unparseable input is padded to the column width.
func formatTimestamp(ts string) string {
	if ts == "" {
		return strings.Repeat(" ", len(lineTimeFormat))
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		if len(ts) >= len(lineTimeFormat) {
			return ts[:len(lineTimeFormat)]
		}
		return ts + strings.Repeat(" ", len(lineTimeFormat)-len(ts))
	}
	return t.Format(lineTimeFormat)
}

// formatExtra renders the remaining fields as sorted key=value pairs.
func formatExtra(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		s := fmt.Sprintf("%v", fields[k])
		if strings.ContainsAny(s, " \t\n\"=") {
			s = fmt.Sprintf("%q", s)
		}
		parts = append(parts, k+"="+s)
	}
	return strings.Join(parts, " ")
}
