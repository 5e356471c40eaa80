package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// BuildQuery renders params as a URL query string with a leading "?", or
// "" when nothing is set. Nil and empty-string values are skipped, slices
// repeat their key once per element, and spaces encode as %20. Keys are
// emitted in sorted order.
func BuildQuery(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, v := range queryValues(params[k]) {
			parts = append(parts, escape(k)+"="+escape(v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

func queryValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case *string:
		if t == nil {
			return nil
		}
		return queryValues(*t)
	case int:
		return []string{strconv.Itoa(t)}
	case *int:
		if t == nil {
			return nil
		}
		return []string{strconv.Itoa(*t)}
	case int64:
		return []string{strconv.FormatInt(t, 10)}
	case []int:
		out := make([]string, 0, len(t))
		for _, n := range t {
			out = append(out, strconv.Itoa(n))
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		s := fmt.Sprint(t)
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

// escape percent-encodes s for a query component. url.QueryEscape turns
// spaces into "+" and literal plus signs into "%2B", so every remaining
// "+" is a space.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
