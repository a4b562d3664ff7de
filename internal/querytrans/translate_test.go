// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package querytrans

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", ""},
		{"blank", "   \t ", ""},
		{"field tag and connective", "cancer[Title/Abstract] AND therapy", "cancer + therapy"},
		{"quoted phrase with date clause", `"gene therapy" AND cancer (2020/1/1:2024/12/31[pdat])`, `"gene therapy" + cancer`},
		{"grouped query with date clause", "(cancer[Title/Abstract] AND therapy) AND (2020/1/1:2024/12/31[pdat])", "(cancer + therapy)"},
		{"disjunction with phrase", `(radiotherapy OR "radiation therapy") AND (2019/1/1:2020/1/1[pdat])`, `(radiotherapy | "radiation therapy")`},
		{"leading date clause", "(2020/1/1:2024/12/31[pdat]) AND cancer", "cancer"},
		{"date inside a group", "cancer AND (2020/1/1:2024/12/31[pdat] AND therapy)", "cancer + (therapy)"},
		{"connective inside date parens", "cancer (AND 2020/1/1:2024/12/31[pdat])", "cancer"},
		{"connective in phrase untouched", `"rock AND roll" OR jazz`, `"rock AND roll" | jazz`},
		{"only a date filter", "2020/1/1:2024/12/31[pdat]", ""},
		{"only a field tag", "[Title/Abstract]", ""},
		{"trailing connective", "cancer OR", "cancer"},
		{"empty group", "cancer AND ( )", "cancer"},
		{"nested groups collapse heuristically", "((a OR b) AND c)", "(a | b) + c)"},
		{"negation", `cancer NOT "side effects"`, `cancer -"side effects"`},
		{"curly quotes", "“gene AND therapy” AND ‘x’", `"gene AND therapy" + 'x'`},
		{"words containing connectives", "ANDROGEN AND ORGAN", "ANDROGEN + ORGAN"},
		{"stray date marker", "cancer[Title/Abstract] AND [pdat]", "cancer"},
		{"whitespace outside phrases", `  "gene   therapy"   AND   cancer  `, `"gene   therapy" + cancer`},
		{"lowercase connectives are terms", "cancer and therapy", "cancer and therapy"},
		{"marker with plus closing a group", "(CD4+ OR CD8+) AND tumor", "(CD4+ | CD8+) + tumor"},
		{"language name with pluses", "(java OR C++)", "(java | C++)"},
		{"hyphenated term starting with connective", "AND-1 AND cancer", "AND-1 + cancer"},
		{"hyphenated term ending with connective", "cancer AND anti-OR", "cancer + anti-OR"},
		{"parenthesized connective before date", "cancer (AND) (2020/1/1:2024/12/31[pdat])", "cancer"},
		{"lone parenthesized connective", "cancer (OR) therapy", "cancer therapy"},
		{"prime marks are not quotes", "5′-UTR AND 3″ region", "5′-UTR + 3″ region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.source))
		})
	}
}

func TestRulesOrder(t *testing.T) {
	var names []string
	for _, r := range Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"field-tag", "date-filter", "dangling-connective", "negation",
		"connective", "whitespace", "grouping", "quote-marks",
	}, names)
}

func TestRemoveDateFilters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"connective and parens", "cancer AND (2020/1/1:2024/12/31[pdat])", "cancer"},
		{"or connective bare", "cancer OR 2020/1/1:2024/12/31[pdat]", "cancer"},
		{"parens without connective", "cancer (2020/1/1:2024/12/31[pdat])", "cancer"},
		{"connective inside parens", "cancer (OR 2020/1/1:2024/12/31[pdat])", "cancer"},
		{"every filter removed", "a AND 2001/1/1:2002/1/1[pdat] b AND (2003/1/1:2004/1/1[pdat])", "a b"},
		{"stray marker", "cancer[pdat]", "cancer"},
		{"outer group kept", "(cancer AND 2020/1/1:2024/12/31[pdat])", "(cancer)"},
		{"parenthesized connective", "cancer (AND) (2020/1/1:2024/12/31[pdat])", "cancer"},
		{"hyphenated term kept", "anti-OR (2020/1/1:2024/12/31[pdat])", "anti-OR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removeDateFilters(tt.in))
		})
	}
}

func TestRemoveDanglingConnectives(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cancer AND", "cancer"},
		{"cancer AND OR", "cancer"},
		{"AND cancer", "cancer"},
		{"(AND cancer)", "(cancer)"},
		{"(cancer OR )", "(cancer)"},
		{"cancer BRAND", "cancer BRAND"},
		{"ORGAN", "ORGAN"},
		{"AND-1 AND cancer", "AND-1 AND cancer"},
		{"cancer AND anti-OR", "cancer AND anti-OR"},
		{"anti-OR", "anti-OR"},
		{"(AND)", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, removeDanglingConnectives(tt.in))
		})
	}
}

func TestConvertConnectives(t *testing.T) {
	assert.Equal(t, "a + b | c", convertConnectives("a AND b OR c"))
	assert.Equal(t, "a\t+\nb", convertConnectives("a\tAND\nb"))
	assert.Equal(t, "(a AND)", convertConnectives("(a AND)"))
	assert.Equal(t, "ANDERSON", convertConnectives("ANDERSON"))
}

func TestConvertNegation(t *testing.T) {
	assert.Equal(t, "a -b", convertNegation("a NOT b"))
	assert.Equal(t, "-b", convertNegation("NOT b"))
	assert.Equal(t, "a -(b OR c)", convertNegation("a NOT (b OR c)"))
	assert.Equal(t, "(-b)", convertNegation("(NOT b)"))
	assert.Equal(t, "KNOT b", convertNegation("KNOT b"))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "(a b)", normalizeWhitespace("  (  a \n\t b  )  "))
	assert.Equal(t, "a b", normalizeWhitespace("a b"))
}

func TestCleanGrouping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a ()", "a"},
		{"a (( ))", "a"},
		{"((a))", "(a)"},
		{"(+ a)", "(a)"},
		{"(a |)", "(a)"},
		{"+ a +", "a"},
		{"a -", "a"},
		{"a -b", "a -b"},
		{"(CD4+ | CD8+)", "(CD4+ | CD8+)"},
		{"(java | C++)", "(java | C++)"},
		{"C++", "C++"},
		{"a (+)", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanGrouping(tt.in))
		})
	}
}

func TestNormalizeQuoteMarks(t *testing.T) {
	assert.Equal(t, `"a" 'b' "c"`, normalizeQuoteMarks("“a” ‘b’ „c‟"))
	assert.Equal(t, "5′-UTR 3″", normalizeQuoteMarks("5′-UTR 3″"))
}

var quotedSpanRe = regexp.MustCompile(`"[^"]*"`)

func TestTranslatePreservesQuotedPhrases(t *testing.T) {
	sources := []string{
		`"gene therapy" AND cancer (2020/1/1:2024/12/31[pdat])`,
		`"rock AND roll" OR "jazz  OR  blues"`,
		`("breast cancer"[Title/Abstract] OR "mammary  neoplasm") AND "NOT a negation"`,
		`"( )" AND "((x))" AND "a[pdat]"`,
		`"Crohn’s disease" AND ibd`,
		`"2020/1/1:2024/12/31[pdat]" AND x`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			out := Translate(src)
			for _, phrase := range quotedSpanRe.FindAllString(src, -1) {
				assert.Contains(t, out, phrase)
			}
		})
	}
}

func TestTranslateNeverEndsWithConnective(t *testing.T) {
	sources := []string{
		"cancer AND",
		"cancer OR (2020/1/1:2024/12/31[pdat])",
		"cancer AND [Title/Abstract]",
		"cancer AND OR AND",
		"cancer AND ()",
		"x AND (y OR)",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			fields := strings.Fields(Translate(src))
			require.NotEmpty(t, fields)
			last := fields[len(fields)-1]
			assert.NotEqual(t, "AND", last)
			assert.NotEqual(t, "OR", last)
		})
	}
}

// meaningTokens keeps the parts of a translation that carry meaning:
// quoted phrases and operators.
func meaningTokens(s string) []string {
	var out []string
	out = append(out, quotedSpanRe.FindAllString(s, -1)...)
	rest := quotedSpanRe.ReplaceAllString(s, " ")
	for _, f := range strings.Fields(rest) {
		if f == OpAnd || f == OpOr {
			out = append(out, f)
		}
	}
	return out
}

func TestTranslateTwiceKeepsMeaning(t *testing.T) {
	sources := []string{
		"cancer[Title/Abstract] AND therapy",
		`"gene therapy" AND cancer (2020/1/1:2024/12/31[pdat])`,
		`(radiotherapy OR "radiation  therapy") AND (tumour OR neoplasm)`,
		"((a OR b) AND c)",
		`“curly AND phrase” OR plain`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			once := Translate(src)
			twice := Translate(once)
			assert.Equal(t, meaningTokens(once), meaningTokens(twice))
		})
	}
}

func TestTraceMatchesTranslate(t *testing.T) {
	src := `"gene therapy"[Title/Abstract] AND cancer AND (2020/1/1:2024/12/31[pdat])`
	steps := Trace(src)
	require.Len(t, steps, len(Rules()))
	assert.Equal(t, "field-tag", steps[0].Rule)
	assert.Equal(t, `"gene therapy" AND cancer AND (2020/1/1:2024/12/31[pdat])`, steps[0].Output)
	assert.Equal(t, `"gene therapy" AND cancer`, steps[1].Output)
	assert.Equal(t, Translate(src), steps[len(steps)-1].Output)
}

func TestProtectRestore(t *testing.T) {
	doc := protect(`"a b" AND “c” x`)
	require.Len(t, doc.spans, 2)
	assert.NotContains(t, doc.text, `"`)
	assert.False(t, doc.spans[0].curly)
	assert.True(t, doc.spans[1].curly)
	assert.Equal(t, `"a b" AND "c" x`, doc.restore(doc.text))

	// Placeholder runes supplied by the caller are discarded.
	stray := protect("x\uE0000\uE001y")
	assert.Equal(t, "x0y", stray.restore(stray.text))
}
