package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-analyst/constants"
)

func TestAnnotateLines(t *testing.T) {
	rules := []LineRule{
		{Text: "R001", Data: []Field{
			{Name: constants.ArticleReference, Value: "R001"},
			{Name: constants.ArticleQuantity, Value: "2"},
			{Name: constants.ArticleTotal, Value: "7,00"},
		}},
		{Text: "R002", Data: []Field{
			{Name: constants.ArticleReference, Value: "R002"},
			{Name: constants.ArticleTotal, Value: "9,00"},
		}, Color: ColorValid},
	}
	runs := invoiceRuns()[:14]

	got := AnnotateLines(runs, rules)
	require.Len(t, got, 2)

	ok := got[0]
	assert.Equal(t, 0, ok.Rule)
	assert.Equal(t, ColorLineRule, ok.Color, "rule colour defaults to dark green")
	assert.Empty(t, ok.Missing)
	assert.Equal(t, "Reference: R001\nQuantité: 2\nTotal: 7,00", ok.Note)
	assert.Equal(t, 100.0, ok.BBox.Y0)

	bad := got[1]
	assert.Equal(t, 1, bad.Rule)
	assert.Equal(t, ColorInvalid, bad.Color)
	assert.Equal(t, []Field{{Name: constants.ArticleTotal, Value: "9,00"}}, bad.Missing)
	assert.Contains(t, bad.Note, "Something is wrong with this row, check the values:\n- Might be Total: 9,00")

	assert.Nil(t, AnnotateLines(runs, nil))
}

func TestAnnotateLines_FirstRuleWinsPerLine(t *testing.T) {
	rules := []LineRule{
		{Text: "R00", Data: []Field{{Name: constants.ArticleReference, Value: "R00"}}},
		{Text: "R001", Data: []Field{{Name: constants.ArticleReference, Value: "R001"}}},
	}
	got := AnnotateLines(invoiceRuns()[:14], rules)
	require.Len(t, got, 2, "one annotation per matching line")
	for _, a := range got {
		assert.Equal(t, 0, a.Rule)
	}
	assert.NotEqual(t, got[0].BBox, got[1].BBox)
}

func TestArticleRules(t *testing.T) {
	rules := ArticleRules([]Article{
		article("R001", "Vis", "3.50", "", "2", "7.00"),
		article("", "Sans ref", "1", "PCE", "1", "1"),
	})
	require.Len(t, rules, 1)
	assert.Equal(t, "R001", rules[0].Text)
	assert.Equal(t, []Field{
		{Name: constants.ArticleReference, Value: "R001"},
		{Name: constants.ArticleUnitPrice, Value: "3.50"},
		{Name: constants.ArticleQuantity, Value: "2"},
		{Name: constants.ArticleTotal, Value: "7.00"},
	}, rules[0].Data)
}
