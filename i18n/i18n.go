package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

var translations = make(map[string]map[string]string)
var DefaultLang = "en"

// supported pairs each catalog file with the tag it is matched against.
var supported = []struct {
	lang string
	tag  language.Tag
}{
	{"en", language.English},
	{"pt", language.BrazilianPortuguese},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, s := range supported {
		tags[i] = s.tag
	}
	return language.NewMatcher(tags)
}()

func LoadTranslations() error {
	for _, s := range supported {
		data, err := locales.ReadFile(fmt.Sprintf("locales/%s.json", s.lang))
		if err != nil {
			return err
		}
		var t map[string]string
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("parse %s catalog: %w", s.lang, err)
		}
		translations[s.lang] = t
	}
	return nil
}

func T(lang, key string) string {
	if t, ok := translations[lang]; ok {
		if val, ok := t[key]; ok {
			return val
		}
	}
	// Fallback to English
	if lang != DefaultLang {
		return T(DefaultLang, key)
	}
	return key
}

// DetectLanguage picks the best supported catalog for the Accept-Language header.
func DetectLanguage(r *http.Request) string {
	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLang
	}
	return supported[idx].lang
}
