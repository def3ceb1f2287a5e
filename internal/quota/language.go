package quota

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// Language is a supported message language.
type Language string

const (
	LangEnglish  Language = "en"
	LangChinese  Language = "zh"
	LangJapanese Language = "ja"
	LangKorean   Language = "ko"
)

// DefaultLanguage is used whenever a hint cannot be resolved.
const DefaultLanguage = LangEnglish

// SupportedLanguages lists the languages with message templates, default first.
var SupportedLanguages = []Language{LangEnglish, LangChinese, LangJapanese, LangKorean}

var (
	supportedTags = []language.Tag{language.English, language.Chinese, language.Japanese, language.Korean}
	tagMatcher    = language.NewMatcher(supportedTags)
)

// maxCodeLen bounds what is tried as a BCP 47 tag before falling back to text heuristics.
const maxCodeLen = 35

// ParseLanguage resolves s to a supported language. Unsupported values fall back to DefaultLanguage.
func ParseLanguage(s string) Language {
	if lang, ok := parseCode(s); ok {
		return lang
	}
	return DefaultLanguage
}

// LookupLanguage reports whether s is a code for a supported language.
func LookupLanguage(s string) (Language, bool) {
	return parseCode(s)
}

// DetectLanguage resolves a hint that is either an explicit language code
// ("zh-CN", "ko") or the user's message text. Anything unrecognised yields fallback.
func DetectLanguage(hint string, fallback Language) Language {
	if !fallback.supported() {
		fallback = DefaultLanguage
	}
	if lang, ok := parseCode(hint); ok {
		return lang
	}
	if lang, ok := detectScript(hint); ok {
		return lang
	}
	return fallback
}

func (l Language) supported() bool {
	for _, s := range SupportedLanguages {
		if l == s {
			return true
		}
	}
	return false
}

func parseCode(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxCodeLen || strings.ContainsAny(s, " \t\r\n") {
		return "", false
	}
	var tags []language.Tag
	if strings.ContainsAny(s, ",;") {
		// Accept-Language header, e.g. "ja-JP,ja;q=0.9,en;q=0.8"
		parsed, _, err := language.ParseAcceptLanguage(s)
		if err != nil || len(parsed) == 0 {
			return "", false
		}
		tags = parsed
	} else {
		tag, err := language.Parse(s)
		if err != nil {
			return "", false
		}
		tags = []language.Tag{tag}
	}
	_, idx, conf := tagMatcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(SupportedLanguages) {
		return "", false
	}
	return SupportedLanguages[idx], true
}

// detectScript looks at the writing system of free text. Hangul wins, then kana
// (Japanese mixes kanji and kana), then Han.
func detectScript(text string) (Language, bool) {
	sawHan := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hangul, r):
			return LangKorean, true
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			return LangJapanese, true
		case unicode.Is(unicode.Han, r):
			sawHan = true
		}
	}
	if sawHan {
		return LangChinese, true
	}
	return "", false
}
