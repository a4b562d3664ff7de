// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package querytrans

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder delimiters come from the Unicode private use area so no rule
// pattern can match them.
const (
	placeholderOpen  = '\uE000'
	placeholderClose = '\uE001'
)

// quotedRe matches a straight or curly double-quoted phrase. A quote without
// its partner is left to the rules as ordinary text.
var quotedRe = regexp.MustCompile(`"[^"]*"|“[^”]*”`)

var placeholderRe = regexp.MustCompile(string(placeholderOpen) + `(\d+)` + string(placeholderClose))

// span is one protected quoted phrase.
type span struct {
	// text is the phrase exactly as it appeared, delimiters included.
	text string
	// curly is true when the phrase was delimited by “ and ”.
	curly bool
}

// render returns the phrase as it goes back into the output. Straight
// phrases return verbatim; curly phrases keep their content but get ASCII
// delimiters.
func (s span) render() string {
	if !s.curly {
		return s.text
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s.text, "“"), "”")
	return `"` + inner + `"`
}

// document is a query with its quoted phrases lifted into a side table.
type document struct {
	text  string
	spans []span
}

// protect replaces every quoted phrase in s with an indexed placeholder.
// Stray placeholder runes in s are dropped first so restore cannot be fooled.
func protect(s string) document {
	s = strings.Map(func(r rune) rune {
		if r == placeholderOpen || r == placeholderClose {
			return -1
		}
		return r
	}, s)

	var doc document
	doc.text = quotedRe.ReplaceAllStringFunc(s, func(m string) string {
		idx := len(doc.spans)
		doc.spans = append(doc.spans, span{text: m, curly: strings.HasPrefix(m, "“")})
		return string(placeholderOpen) + strconv.Itoa(idx) + string(placeholderClose)
	})
	return doc
}

// restore substitutes every placeholder in text with its phrase.
func (d document) restore(text string) string {
	if len(d.spans) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		idx, err := strconv.Atoi(m[len(string(placeholderOpen)) : len(m)-len(string(placeholderClose))])
		if err != nil || idx >= len(d.spans) {
			return ""
		}
		return d.spans[idx].render()
	})
}
