package i18n

import (
	"sort"
	"strings"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "value" or "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.lookup(code)
	if msg == "" {
		return code
	}
	return withDetails(msg, data)
}

func (t dictTranslator) lookup(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "unknown_key":
			return "未知のキーです"
		case "invalid_value":
			return "利用できない値です"
		case "invalid_type":
			return "型が不正です"
		case "no_such_combination":
			return "この組み合わせのデータは存在しません"
		case "shape_mismatch":
			return "形状がフィールド数と一致しません"
		case "conflict":
			return "値が競合しています"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "unknown_key":
			return "unknown key"
		case "invalid_value":
			return "value not available"
		case "invalid_type":
			return "invalid type"
		case "no_such_combination":
			return "no data for this combination"
		case "shape_mismatch":
			return "shape does not match number of fields"
		case "conflict":
			return "conflicting values"
		case "parse_error":
			return "parse error"
		}
	}
	return ""
}

// withDetails appends data as "k=v" pairs in key order so messages are stable.
func withDetails(msg string, data map[string]string) string {
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b := &strings.Builder{}
	b.WriteString(msg)
	b.WriteString(" (")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(data[k])
	}
	b.WriteString(")")
	return b.String()
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
