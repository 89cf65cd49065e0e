package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for diagnostic codes.
// data provides values substituted into {placeholders} of the message (for
// example "field" or "kind").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var messages = map[string]map[string]string{
	"en": {
		"missing_field":      "Object contains no field named '{field}'.",
		"shape_mismatch":     "Could not cast to {kind}!",
		"coercion":           "cannot convert value to {kind}",
		"custom_constructor": "custom constructor failed",
		"parse_error":        "parse error",
		"duplicate_key":      "key '{key}' duplicated",
		"truncated":          "max bytes exceeded",
		"unsupported_type":   "no parser for type {type}",
	},
	"ja": {
		"missing_field":      "フィールド '{field}' がオブジェクトに存在しません",
		"shape_mismatch":     "{kind} に変換できません",
		"coercion":           "値を {kind} に変換できません",
		"custom_constructor": "カスタムコンストラクタが失敗しました",
		"parse_error":        "解析エラー",
		"duplicate_key":      "キー '{key}' が重複しています",
		"truncated":          "打ち切られました",
		"unsupported_type":   "型 {type} のパーサーがありません",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
