// Package language provides Unicode-range language detection for transcripts.
//
// Detection is heuristic: the first script block found in the text decides the
// tag. The same function backs message tagging and playback voice selection so
// the two can never disagree.
package language

// Base language tags returned by Detect.
const (
	Urdu     = "ur"
	Arabic   = "ar"
	Hindi    = "hi"
	Punjabi  = "pa"
	Chinese  = "zh"
	Japanese = "ja"
	Korean   = "ko"
	Russian  = "ru"
	English  = "en"
)

// urduMarkers are codepoints inside the Arabic block that occur in Urdu but
// not in standard Arabic (ٹ پ چ ڈ ڑ ژ ک گ ں ھ ی). Their presence
// disambiguates Urdu from Arabic text.
var urduMarkers = [...]rune{
	0x0679, 0x067E, 0x0686, 0x0688, 0x0691,
	0x0698, 0x06A9, 0x06AF, 0x06BA, 0x06BE, 0x06CC,
}

// Detect returns the base language tag for text. It is pure and total: every
// script block is tested over the whole text, the highest-priority block
// present wins, and text matching no block is tagged English. Priority is a
// fixed block order, not rune order within the text.
func Detect(text string) string {
	var arabic, urdu, hindi, punjabi, chinese, japanese, korean, russian bool
	for _, r := range text {
		switch {
		case r >= 0x0600 && r <= 0x06FF:
			arabic = true
			for _, m := range urduMarkers {
				if r == m {
					urdu = true
				}
			}
		case r >= 0x0900 && r <= 0x097F:
			hindi = true
		case r >= 0x0A00 && r <= 0x0A7F:
			punjabi = true
		case r >= 0x4E00 && r <= 0x9FFF:
			chinese = true
		case r >= 0x3040 && r <= 0x309F, r >= 0x30A0 && r <= 0x30FF:
			japanese = true
		case r >= 0xAC00 && r <= 0xD7AF:
			korean = true
		case r >= 0x0400 && r <= 0x04FF:
			russian = true
		}
	}

	switch {
	case urdu:
		return Urdu
	case arabic:
		// Arabic block present but no Urdu-specific codepoint anywhere.
		return Arabic
	case hindi:
		return Hindi
	case punjabi:
		return Punjabi
	case chinese:
		return Chinese
	case japanese:
		return Japanese
	case korean:
		return Korean
	case russian:
		return Russian
	}
	return English
}

// regions maps base tags to the full BCP-47 tags used for voice selection.
var regions = map[string]string{
	Urdu:     "ur-PK",
	Arabic:   "ar-SA",
	Hindi:    "hi-IN",
	Punjabi:  "pa-IN",
	Chinese:  "zh-CN",
	Japanese: "ja-JP",
	Korean:   "ko-KR",
	Russian:  "ru-RU",
	English:  "en-US",
}

// BCP47 expands a base tag to a full region tag ("ur" → "ur-PK"). Tags
// without a known region, including tags that already carry one, are
// returned unchanged.
func BCP47(tag string) string {
	if full, ok := regions[tag]; ok {
		return full
	}
	return tag
}
