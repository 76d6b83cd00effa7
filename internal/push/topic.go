// Package push handles topic subscription and notifications the app is
// opened with.
package push

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

const (
	TopicArabic  = "signals_ar"
	TopicEnglish = "signals_en"
)

// TopicFor picks the notification topic for a locale. Arabic locales get
// the Arabic topic; everything else, including unparsable input, English.
func TopicFor(locale string) string {
	tag, err := language.Parse(normalizeLocale(locale))
	if err != nil {
		return TopicEnglish
	}
	base, _ := tag.Base()
	if base.String() == "ar" {
		return TopicArabic
	}
	return TopicEnglish
}

// LocaleFromEnv returns the process locale using the POSIX lookup order.
func LocaleFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// normalizeLocale turns POSIX forms like "ar_EG.UTF-8" into BCP 47.
func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	return strings.ReplaceAll(locale, "_", "-")
}
