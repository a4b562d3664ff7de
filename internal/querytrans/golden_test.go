// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package querytrans

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// goldenQueries are realistic PubMed queries whose full rule trace is pinned
// in testdata/golden. Regenerate with: go test ./internal/querytrans -update
var goldenQueries = map[string]string{
	"systematic_review": `("breast cancer"[Title/Abstract] OR "mammary neoplasm"[Title/Abstract]) AND (radiotherapy[Title/Abstract] OR "radiation therapy"[Title/Abstract]) AND (2015/1/1:2024/12/31[pdat])`,
	"negated_phrase":    `covid-19[Title/Abstract] AND vaccine NOT "case report" AND (2020/03/01:2023/6/30[pdat])`,
	"curly_quotes":      `“long covid” OR ‘post-acute sequelae’ AND fatigue[Title/Abstract]`,
}

func renderTrace(source string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "source: %s\n", source)
	for _, s := range Trace(source) {
		fmt.Fprintf(&b, "%-20s %s\n", s.Rule, s.Output)
	}
	start, end := ExtractISODates(source)
	fmt.Fprintf(&b, "dates: %s %s\n", start, end)
	return []byte(b.String())
}

func TestTranslateGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for name, src := range goldenQueries {
		t.Run(name, func(t *testing.T) {
			g.Assert(t, name, renderTrace(src))
		})
	}
}
