package playback

import "strings"

// Voice describes a synthesis voice offered by a backend.
type Voice struct {
	// ID is the backend-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Lang is the voice's BCP-47 language tag (e.g. "ur-PK").
	Lang string

	// Local reports whether the voice is synthesised on-device.
	Local bool
}

// BestVoice picks the best voice for a language tag: exact tag match first,
// then a base-language prefix match preferring local voices, then any voice
// whose tag contains the base language code. Returns false when nothing
// matches.
func BestVoice(voices []Voice, lang string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	base, _, _ := strings.Cut(lang, "-")

	for _, v := range voices {
		if strings.EqualFold(v.Lang, lang) {
			return v, true
		}
	}

	var prefixMatch *Voice
	for i := range voices {
		if hasBasePrefix(voices[i].Lang, base) {
			if voices[i].Local {
				return voices[i], true
			}
			if prefixMatch == nil {
				prefixMatch = &voices[i]
			}
		}
	}
	if prefixMatch != nil {
		return *prefixMatch, true
	}

	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Lang), strings.ToLower(base)) {
			return v, true
		}
	}
	return Voice{}, false
}

func hasBasePrefix(tag, base string) bool {
	return strings.HasPrefix(strings.ToLower(tag), strings.ToLower(base))
}
