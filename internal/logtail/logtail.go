package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded JSON log record.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Caller  string
	Message string
	Fields  map[string]any
}

// Keys written by the application's JSON encoder. The alternatives cover
// zap's production defaults.
var (
	timeKeys    = []string{"timestamp", "ts", "time"}
	levelKeys   = []string{"level"}
	loggerKeys  = []string{"logger"}
	callerKeys  = []string{"caller"}
	messageKeys = []string{"message", "msg"}
)

var timeLayouts = []string{
	"2006-01-02T15:04:05.000Z0700",
	time.RFC3339Nano,
}

// Parse decodes a JSON log line. It reports false for lines that are not
// JSON objects.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}

	entry := Entry{
		Time:    parseTime(take(raw, timeKeys)),
		Level:   strings.ToUpper(asString(take(raw, levelKeys))),
		Logger:  asString(take(raw, loggerKeys)),
		Caller:  asString(take(raw, callerKeys)),
		Message: asString(take(raw, messageKeys)),
	}
	delete(raw, "stacktrace")
	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, true
}

// Format renders e as a single display line:
//
//	2024-05-01 10:00:00 ERROR [gateway] – fetch inventory failed error="..."
func Format(e Entry) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(e.Level)
		b.WriteByte(' ')
	}
	if e.Logger != "" {
		b.WriteString("[" + e.Logger + "] ")
	}
	b.WriteString("– ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(e.Fields[k]))
	}
	return b.String()
}

// FormatLines converts raw log lines for display. Lines that are not JSON
// are kept as they are.
func FormatLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if entry, ok := Parse(line); ok {
			out = append(out, Format(entry))
			continue
		}
		out = append(out, line)
	}
	return out
}

// Tail reads the last maxLines of path and formats them for display.
func Tail(path string, maxLines int) ([]string, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	return FormatLines(lines), nil
}

func take(raw map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			delete(raw, k)
			return v
		}
	}
	return nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func parseTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	case float64:
		sec, frac := math.Modf(t)
		return time.Unix(int64(sec), int64(frac*1e9))
	}
	return time.Time{}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case nil:
		return "null"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
