// Package i18n localizes the Infinite Wiki terminal interface.
//
// The interface language (en, zh-TW) is independent of the session output
// language, which controls the language content is generated in and is part
// of the generation cache fingerprint.
package i18n

import (
	"fmt"
	"os"
	"strings"
)

// Supported interface languages.
const (
	LangEN   = "en"
	LangZhTW = "zh-TW"
)

// currentLang holds the current interface language setting.
var currentLang = LangEN

// messages stores all translations.
var messages = make(map[string]map[string]string)

// Init initializes the i18n system with the specified interface language.
func Init(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))

	// Map common variations
	switch lang {
	case "en", "en-us", "english":
		currentLang = LangEN
	case "zh-tw", "zh_tw", "zh-hant", "chinese", "traditional chinese":
		currentLang = LangZhTW
	default:
		// Check environment variable
		if envLang := os.Getenv("INFINITEWIKI_LANG"); envLang != "" && !strings.EqualFold(envLang, lang) {
			Init(envLang)
			return
		}
		currentLang = LangEN
	}

	loadMessages()
}

// SetLanguage changes the current interface language.
func SetLanguage(lang string) {
	Init(lang)
}

// GetLanguage returns the current interface language.
func GetLanguage() string {
	return currentLang
}

// T returns the translated message for the given key.
// Falls back to English if translation is not found.
func T(key string) string {
	if msg, ok := messages[currentLang][key]; ok {
		return msg
	}

	if msg, ok := messages[LangEN][key]; ok {
		return msg
	}

	// Return key if no translation found
	return key
}

// Sprintf returns the translated and formatted message.
func Sprintf(key string, args ...interface{}) string {
	return fmt.Sprintf(T(key), args...)
}

// loadMessages initializes the message maps.
func loadMessages() {
	messages[LangEN] = make(map[string]string)
	messages[LangZhTW] = make(map[string]string)

	loadEnglishMessages()
	loadChineseMessages()
}

// OutputLanguages lists the output languages offered by the /lang command.
// These are full display names because they are passed verbatim to the
// generation service and embedded in cache fingerprints.
func OutputLanguages() []string {
	return []string{
		"English",
		"繁體中文",
		"简体中文",
		"日本語",
		"Español",
		"Français",
		"Deutsch",
		"한국어",
	}
}

// init is called automatically when the package is imported.
func init() {
	if envLang := os.Getenv("INFINITEWIKI_LANG"); envLang != "" {
		Init(envLang)
	} else {
		Init(LangEN)
	}
}
