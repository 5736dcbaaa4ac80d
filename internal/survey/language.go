package survey

import "strings"

// Language is a conversant's selected language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// English is the catalog's authoring language.
var English = Language{Code: "en", Name: "English"}

var supportedLanguages = map[string]Language{
	"english":  English,
	"spanish":  {Code: "es", Name: "Spanish"},
	"español":  {Code: "es", Name: "Spanish"},
	"hindi":    {Code: "hi", Name: "Hindi"},
	"हिंदी":    {Code: "hi", Name: "Hindi"},
	"chinese":  {Code: "zh", Name: "Chinese"},
	"中文":       {Code: "zh", Name: "Chinese"},
	"french":   {Code: "fr", Name: "French"},
	"français": {Code: "fr", Name: "French"},
}

// LookupLanguage matches a typed language name (English or native spelling).
func LookupLanguage(input string) (Language, bool) {
	lang, ok := supportedLanguages[strings.ToLower(strings.TrimSpace(input))]
	return lang, ok
}

// LanguageMenu is the multilingual prompt shown before a language is chosen.
const LanguageMenu = `Please select your preferred language / Por favor, seleccione su idioma preferido / कृपया अपनी पसंदीदा भाषा चुनें / 请选择您的首选语言 / Veuillez sélectionner votre langue préférée:

Available languages:
- English
- Spanish (Español)
- Hindi (हिंदी)
- Chinese (中文)
- French (Français)

Type your preferred language:`

// InvalidLanguageReply is sent when the typed language is not supported.
const InvalidLanguageReply = `Invalid language selection. Please type one of the following:
- English
- Spanish/Español
- Hindi/हिंदी
- Chinese/中文
- French/Français`

var affirmatives = map[string]struct{}{
	"yes": {}, "y": {}, "sí": {}, "si": {}, "हाँ": {}, "हां": {}, "是": {}, "oui": {},
}

// IsAffirmative reports whether input is a consent word in a supported language.
func IsAffirmative(input string) bool {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimRight(s, ".!")
	_, ok := affirmatives[s]
	return ok
}
