package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/Spritan/climetlab/internal/value"
)

// now is replaced in tests.
var now = time.Now

var inputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"20060102",
	"2006-01",
}

// Date parses dates given as time.Time, ISO-like strings, YYYYMMDD integers,
// or integers <= 0 meaning days relative to today (0 is today, -1 yesterday).
// With an empty layout the result is a time.Time in UTC, otherwise the date
// formatted with layout. layout accepts Go layouts, strftime directives
// (%Y%m%d) and the YYYY/MM/DD/HH tokens.
func Date(layout string) Func {
	goLayout := convertLayout(layout)
	return func(v any) (any, error) {
		t, err := parseDate(v)
		if err != nil {
			return nil, err
		}
		if goLayout == "" {
			return t, nil
		}
		return t.Format(goLayout), nil
	}
}

// DateRange behaves like Date for single dates and expands "start/to/end" and
// "start/to/end/by/N" (N days) strings into lists.
func DateRange(layout string) Func {
	single := Date(layout)
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok || !strings.Contains(strings.ToLower(s), "/to/") {
			return single(v)
		}
		parts := strings.Split(strings.ToLower(s), "/")
		if (len(parts) != 3 && len(parts) != 5) || parts[1] != "to" || (len(parts) == 5 && parts[3] != "by") {
			return nil, invalid("malformed date range %q", s)
		}
		start, err := parseDate(parts[0])
		if err != nil {
			return nil, err
		}
		end, err := parseDate(parts[2])
		if err != nil {
			return nil, err
		}
		step := 1
		if len(parts) == 5 {
			step, err = strconv.Atoi(parts[4])
			if err != nil || step <= 0 {
				return nil, invalid("malformed date range step %q", parts[4])
			}
		}
		var out []any
		for d := start; !d.After(end); d = d.AddDate(0, 0, step) {
			n, err := single(d)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	}
}

func parseDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, l := range inputLayouts {
			if d, err := time.Parse(l, s); err == nil {
				return d.UTC(), nil
			}
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return parseDate(i)
		}
		return time.Time{}, invalid("cannot parse date %q", s)
	}
	switch t := value.Canonical(v).(type) {
	case int64:
		if t <= 0 {
			today := now().UTC().Truncate(24 * time.Hour)
			return today.AddDate(0, 0, int(t)), nil
		}
		d, err := time.Parse("20060102", strconv.FormatInt(t, 10))
		if err != nil {
			return time.Time{}, invalid("cannot parse date %d", t)
		}
		return d, nil
	default:
		return time.Time{}, invalid("cannot convert %T to date", v)
	}
}

var layoutTokens = strings.NewReplacer(
	"%Y", "2006", "%m", "01", "%d", "02", "%H", "15", "%M", "04", "%S", "05", "%j", "002",
	"YYYY", "2006", "MM", "01", "DD", "02", "HH", "15",
)

func convertLayout(layout string) string {
	if layout == "" || strings.Contains(layout, "2006") {
		return layout
	}
	return layoutTokens.Replace(layout)
}
