package analysis

import "strings"

// dispositivoWindowLen bounds the window handed to the outcome classifier.
const dispositivoWindowLen = 2500

// rulingMarkers are the phrases that introduce the operative ruling, in
// priority order. "dispositivo" comes last: it is the weakest signal and
// also a substring of "do dispositivo".
var rulingMarkers = []string{
	"ante o exposto",
	"diante do exposto",
	"isso posto",
	"pelo exposto",
	"do dispositivo",
	"dispositivo",
}

// DispositivoWindow returns the slice of fullText most likely to contain
// the operative ruling: from the first ruling marker found, bounded to
// ~2500 characters. Sentences in this document family place the ruling
// near the end, so when no marker matches the tail of the text is
// returned instead. The result is non-empty whenever fullText has any
// non-whitespace content.
func DispositivoWindow(fullText string) string {
	text := foldSpace(fullText)
	lower := strings.ToLower(text)

	for _, marker := range rulingMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		end := clampEnd(text, idx+dispositivoWindowLen)
		return strings.TrimSpace(text[idx:end])
	}

	start := clampStart(text, len(text)-dispositivoWindowLen)
	return strings.TrimSpace(text[start:])
}
