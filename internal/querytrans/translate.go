// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package querytrans

import (
	"regexp"
	"strings"
)

// FieldTag is the PubMed title/abstract field marker. It is the only field
// tag the translator understands.
const FieldTag = "[Title/Abstract]"

// Semantic Scholar infix operators.
const (
	OpAnd = "+"
	OpOr  = "|"
	OpNot = "-"
)

// Rule is one rewrite step of the translation pipeline. Rules see the query
// with quoted phrases already replaced by placeholders, so they may rewrite
// freely without touching phrase content.
type Rule struct {
	Name  string
	Apply func(string) string
}

var (
	// filterCore matches the date range filter itself.
	filterCore = dateToken + `:` + dateToken + regexp.QuoteMeta(DateMarker)

	// connectiveRe is an AND/OR connective standing on its own: preceded by
	// whitespace or the start of the query, or wrapped in its own parentheses.
	connectiveRe = `(?:(?:^|\s)(?:AND|OR)|\(\s*(?:AND|OR)\s*\))`

	// dateClauseRe matches a date filter plus one enclosing layer of
	// parentheses and the connective that introduces it. The connective may
	// stand before the parentheses, in parentheses of its own, or just inside
	// the filter's parentheses.
	dateClauseRe = regexp.MustCompile(
		`\s*(?:` +
			`(?:` + connectiveRe + `\s*)?\(\s*(?:(?:AND|OR)\s+)?` + filterCore + `\s*\)` +
			`|` +
			`(?:` + connectiveRe + `\s+)?` + filterCore +
			`)`)

	// Connectives are whitespace delimited, so AND-1 or anti-OR are terms.
	trailingConnectiveRe = regexp.MustCompile(`(?:^|\s+)(?:AND|OR)\s*$`)
	leadingConnectiveRe  = regexp.MustCompile(`^\s*(?:AND|OR)(?:\s+|$)`)
	openConnectiveRe     = regexp.MustCompile(`\(\s*(?:AND|OR)\s+`)
	closeConnectiveRe    = regexp.MustCompile(`\s+(?:AND|OR)\s*\)`)
	loneConnectiveRe     = regexp.MustCompile(`\(\s*(?:AND|OR)\s*\)`)

	negationRe = regexp.MustCompile(`(^|[\s(])NOT\s+(\S)`)
	tokenRe    = regexp.MustCompile(`[^\s\p{Zs}]+`)

	spaceRunRe   = regexp.MustCompile(`[\s\p{Zs}]+`)
	openSpaceRe  = regexp.MustCompile(`\(\s+`)
	closeSpaceRe = regexp.MustCompile(`\s+\)`)

	emptyGroupRe = regexp.MustCompile(`\(\s*\)`)
	openRunRe    = regexp.MustCompile(`\({2,}`)
	closeRunRe   = regexp.MustCompile(`\){2,}`)

	// Operators are whitespace delimited too; the plus in CD8+ or C++ is
	// part of the term.
	leadingOpRe     = regexp.MustCompile(`^\s*[+|](?:\s+|$)`)
	trailingOpRe    = regexp.MustCompile(`(?:^|\s+)[+|-]\s*$`)
	openOperatorRe  = regexp.MustCompile(`\(\s*[+|]\s+`)
	closeOperatorRe = regexp.MustCompile(`\s+[+|]\s*\)`)
	loneOperatorRe  = regexp.MustCompile(`\(\s*[+|]\s*\)`)
)

var quoteMarks = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
)

// Rules returns the translation pipeline in the order it runs. Later rules
// rely on the normalisation done by earlier ones.
func Rules() []Rule {
	return []Rule{
		{Name: "field-tag", Apply: removeFieldTags},
		{Name: "date-filter", Apply: removeDateFilters},
		{Name: "dangling-connective", Apply: removeDanglingConnectives},
		{Name: "negation", Apply: convertNegation},
		{Name: "connective", Apply: convertConnectives},
		{Name: "whitespace", Apply: normalizeWhitespace},
		{Name: "grouping", Apply: cleanGrouping},
		{Name: "quote-marks", Apply: normalizeQuoteMarks},
	}
}

var pipeline = Rules()

// Translate rewrites a PubMed query into Semantic Scholar syntax. The result
// is empty when nothing searchable remains, for example when source holds
// only a date filter. Quoted phrases come through with their content intact.
func Translate(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	doc := protect(source)
	text := doc.text
	for _, r := range pipeline {
		text = r.Apply(text)
	}
	return doc.restore(text)
}

// Trace runs the pipeline and records the query after every rule, quoted
// phrases restored. It exists for debugging rule interactions.
func Trace(source string) []Step {
	doc := protect(source)
	text := doc.text
	steps := make([]Step, 0, len(pipeline))
	for _, r := range pipeline {
		text = r.Apply(text)
		steps = append(steps, Step{Rule: r.Name, Output: doc.restore(text)})
	}
	return steps
}

// Step is the output of one rule inside a Trace.
type Step struct {
	Rule   string `json:"rule" yaml:"rule"`
	Output string `json:"output" yaml:"output"`
}

func removeFieldTags(s string) string {
	return strings.ReplaceAll(s, FieldTag, "")
}

func removeDateFilters(s string) string {
	s = dateClauseRe.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, DateMarker, "")
}

// removeDanglingConnectives strips AND/OR that no longer join two operands:
// at either end of the query and just inside a group.
func removeDanglingConnectives(s string) string {
	return untilStable(s, func(s string) string {
		s = loneConnectiveRe.ReplaceAllString(s, "")
		s = trailingConnectiveRe.ReplaceAllString(s, "")
		s = leadingConnectiveRe.ReplaceAllString(s, "")
		s = openConnectiveRe.ReplaceAllString(s, "(")
		return closeConnectiveRe.ReplaceAllString(s, ")")
	})
}

// convertNegation turns "NOT term" into "-term".
func convertNegation(s string) string {
	return untilStable(s, func(s string) string {
		return negationRe.ReplaceAllString(s, "${1}"+OpNot+"${2}")
	})
}

// convertConnectives maps whitespace-delimited AND and OR tokens. Words that
// merely contain them, such as ANDROGEN, are left alone.
func convertConnectives(s string) string {
	return tokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		switch tok {
		case "AND":
			return OpAnd
		case "OR":
			return OpOr
		}
		return tok
	})
}

func normalizeWhitespace(s string) string {
	s = spaceRunRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = openSpaceRe.ReplaceAllString(s, "(")
	return closeSpaceRe.ReplaceAllString(s, ")")
}

// cleanGrouping drops empty groups and collapses runs of parentheses. It is
// a heuristic: "((a OR b) AND c)" loses its outer opening parenthesis.
func cleanGrouping(s string) string {
	s = untilStable(s, func(s string) string {
		s = emptyGroupRe.ReplaceAllString(s, "")
		s = loneOperatorRe.ReplaceAllString(s, "")
		s = openRunRe.ReplaceAllString(s, "(")
		s = closeRunRe.ReplaceAllString(s, ")")
		s = openOperatorRe.ReplaceAllString(s, "(")
		s = closeOperatorRe.ReplaceAllString(s, ")")
		s = leadingOpRe.ReplaceAllString(s, "")
		return trailingOpRe.ReplaceAllString(s, "")
	})
	return normalizeWhitespace(s)
}

func normalizeQuoteMarks(s string) string {
	return quoteMarks.Replace(s)
}

// untilStable applies f until the string stops changing. Every f used here
// only shortens its input, so the loop terminates.
func untilStable(s string, f func(string) string) string {
	for {
		next := f(s)
		if next == s {
			return s
		}
		s = next
	}
}
