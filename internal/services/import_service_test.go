package services

import (
	"context"
	"strings"
	"testing"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeRows = "categories,subcategories,messages\nA,S1,m1\nA,S1,m2\nA,S2,m3\n"

func messages(sub models.Subcategory) []string {
	out := make([]string, 0, len(sub.Messages))
	for _, m := range sub.Messages {
		out = append(out, m.Content)
	}
	return out
}

func TestImportGroupsRowsIntoOneCategory(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	summary, err := f.imports.Import(ctx, admin, strings.NewReader(threeRows), "rows.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 3, summary.Rows)

	all, err := f.categories.List(ctx, admin, StatusAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	a := all[0]
	assert.Equal(t, "A", a.Name)
	assert.Equal(t, models.StatusDisapproved, a.Status)
	assert.Equal(t, admin.UserID, a.CreatedBy)
	require.Len(t, a.Subcategories, 2)
	assert.Equal(t, "S1", a.Subcategories[0].Name)
	assert.Equal(t, []string{"m1", "m2"}, messages(a.Subcategories[0]))
	assert.Equal(t, "S2", a.Subcategories[1].Name)
	assert.Equal(t, []string{"m3"}, messages(a.Subcategories[1]))
}

func TestReimportIsIdempotentByName(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	_, err := f.imports.Import(ctx, admin, strings.NewReader(threeRows), "rows.csv")
	require.NoError(t, err)
	summary, err := f.imports.Import(ctx, admin, strings.NewReader(threeRows), "rows.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Updated)

	all, err := f.categories.List(ctx, admin, StatusAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Subcategories, 2)
}

func TestImportReplacesSubcategories(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	f.create(t, admin, "A", "Old")

	_, err := f.imports.Import(ctx, admin, strings.NewReader("category,subcategory,message\nA,New,fresh\n"), "rows.csv")
	require.NoError(t, err)

	all, err := f.categories.List(ctx, admin, StatusAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Len(t, all[0].Subcategories, 1)
	assert.Equal(t, "New", all[0].Subcategories[0].Name)
	assert.Equal(t, models.StatusApproved, all[0].Status, "no status column keeps the stored status")
}

func TestImportSkipsRowWithoutMessage(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	rows := "categories,subcategories,messages\nA,S1,m1\nA,S1,\n"
	summary, err := f.imports.Import(ctx, admin, strings.NewReader(rows), "rows.csv")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.SkippedRows, 1)
	assert.Equal(t, 3, summary.SkippedRows[0].Row)

	all, err := f.categories.List(ctx, admin, StatusAll)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"m1"}, messages(all[0].Subcategories[0]))
}

func TestImportStatusPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("english default approves", func(t *testing.T) {
		f := newFixture(t, models.TaxonomyEnglish, models.StatusApproved)
		_, err := f.imports.Import(ctx, admin, strings.NewReader(threeRows), "rows.csv")
		require.NoError(t, err)

		list, err := f.categories.List(ctx, member, "")
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("explicit status wins over default", func(t *testing.T) {
		f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
		rows := "Categories ,Subcategories ,Messages ,Status \nA,S1,m1,approved\nA,S1,m2,Disapproved\nB,S1,m3,\n"
		_, err := f.imports.Import(ctx, admin, strings.NewReader(rows), "rows.csv")
		require.NoError(t, err)

		all, err := f.categories.List(ctx, admin, StatusAll)
		require.NoError(t, err)
		require.Len(t, all, 2)
		status := map[string]models.Status{}
		for _, c := range all {
			status[c.Name] = c.Status
		}
		assert.Equal(t, models.StatusApproved, status["A"])
		assert.Equal(t, models.StatusDisapproved, status["B"])
	})
}

func TestImportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("members cannot import", func(t *testing.T) {
		f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
		_, err := f.imports.Import(ctx, member, strings.NewReader(threeRows), "rows.csv")
		assert.True(t, apperr.Is(err, apperr.KindPermission))
	})

	t.Run("missing columns", func(t *testing.T) {
		f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
		_, err := f.imports.Import(ctx, admin, strings.NewReader("categories,notes\nA,x\n"), "rows.csv")
		assert.True(t, apperr.Is(err, apperr.KindParse))
	})

	t.Run("unreadable workbook", func(t *testing.T) {
		f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
		_, err := f.imports.Import(ctx, admin, strings.NewReader("not a zip"), "rows.xlsx")
		assert.True(t, apperr.Is(err, apperr.KindParse))
	})

	t.Run("storage failure returns partial summary", func(t *testing.T) {
		f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
		f.store.FailWrites = assert.AnError
		summary, err := f.imports.Import(ctx, admin, strings.NewReader(threeRows), "rows.csv")
		assert.True(t, apperr.Is(err, apperr.KindStorage))
		require.NotNil(t, summary)
		assert.True(t, summary.Aborted)
		assert.Equal(t, 0, summary.Created)
	})
}

func TestImportInvalidatesCache(t *testing.T) {
	f := newFixture(t, models.TaxonomyEnglish, models.StatusApproved)
	ctx := context.Background()

	list, err := f.categories.List(ctx, member, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.imports.Import(ctx, admin, strings.NewReader(threeRows), "rows.csv")
	require.NoError(t, err)

	list, err = f.categories.List(ctx, member, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAnalyzeDoesNotWrite(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	analysis, err := f.imports.Analyze(strings.NewReader(threeRows), "rows.csv")
	require.NoError(t, err)
	assert.Empty(t, analysis.Missing)
	assert.Equal(t, 3, analysis.Valid)

	n, err := f.store.Count(ctx, models.CategoryFilter{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
