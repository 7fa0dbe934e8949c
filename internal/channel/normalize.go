package channel

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const callSynonym = "GRABACION CALL"

var synonymReplacer = strings.NewReplacer(
	"GRABACION CALL", string(CALL),
	"GRABACIÓN CALL", string(CALL),
)

// Normalize turns a raw comma separated "gestion efectiva" value into channel tags.
// Raw order is kept; a tag seen twice keeps its first position.
func Normalize(raw string) Set {
	var out Set
	for _, token := range strings.Split(raw, ",") {
		tag := NormalizeTag(token)
		if tag == "" || out.Has(tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// NormalizeTag uppercases one token and collapses the recording synonyms into CALL.
func NormalizeTag(token string) Channel {
	tag := strings.ToUpper(strings.TrimSpace(token))
	if tag == "" {
		return ""
	}
	tag = synonymReplacer.Replace(tag)
	if folded := foldAccents(tag); strings.Contains(folded, callSynonym) {
		tag = strings.ReplaceAll(folded, callSynonym, string(CALL))
	}
	return Channel(strings.TrimSpace(tag))
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
