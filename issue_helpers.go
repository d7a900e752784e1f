package climetlab

import (
	"fmt"

	"github.com/Spritan/climetlab/i18n"
)

// IssueAt creates an Issue for the given keyword with provided code and params.
// The message is looked up through the current i18n Translator.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(key, code string, params map[string]any) Issue {
	return Issue{Key: key, Code: code, Message: i18n.T(code, stringify(params)), Params: params}
}

// IssueKV is like IssueAt but takes alternating key/value params.
func IssueKV(key, code string, kv ...any) Issue {
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return IssueAt(key, code, m)
}

func stringify(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}
