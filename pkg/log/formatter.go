package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TextFormatter renders entries as a single human-readable line:
//
//	2026-01-02T15:04:05.000Z INFO  pass started component=producer blocks=12
type TextFormatter struct {
	// DisableTimestamp omits the leading timestamp (useful in tests).
	DisableTimestamp bool
}

// Format implements Formatter.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	var buf bytes.Buffer
	if !f.DisableTimestamp {
		buf.WriteString(entry.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
		buf.WriteByte(' ')
	}
	fmt.Fprintf(&buf, "%-5s %s", entry.Level.String(), entry.Message)
	for _, k := range sortedKeys(entry.Fields) {
		fmt.Fprintf(&buf, " %s=%v", k, entry.Fields[k])
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// JSONFormatter renders entries as one JSON object per line.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	m := make(map[string]interface{}, len(entry.Fields)+4)
	for k, v := range entry.Fields {
		m[k] = v
	}
	m["time"] = entry.Timestamp.UTC().Format(time.RFC3339Nano)
	m["level"] = entry.Level.String()
	m["msg"] = entry.Message
	if entry.Caller != "" {
		m["caller"] = entry.Caller
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
