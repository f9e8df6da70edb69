package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"approved", "APPROVED", " Approved "} {
		status, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, StatusApproved, status)
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestParseTaxonomy(t *testing.T) {
	tests := map[string]Taxonomy{
		"":        TaxonomyDefault,
		"default": TaxonomyDefault,
		"English": TaxonomyEnglish,
		"en":      TaxonomyEnglish,
	}
	for in, want := range tests {
		got, err := ParseTaxonomy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseTaxonomy("fr")
	assert.Error(t, err)

	assert.Equal(t, "categories", TaxonomyDefault.Collection())
	assert.Equal(t, "englishcategories", TaxonomyEnglish.Collection())
}

func TestCategoryFilter(t *testing.T) {
	all := CategoryFilter{}
	assert.True(t, all.Matches(StatusPending))
	assert.False(t, all.OnlyApproved())

	review := StatusFilter(StatusPending, StatusDisapproved)
	assert.True(t, review.Matches(StatusDisapproved))
	assert.False(t, review.Matches(StatusApproved))

	assert.True(t, StatusFilter(StatusApproved).OnlyApproved())
}

func TestSubcategoryHelpers(t *testing.T) {
	c := &Category{Subcategories: AssignIDs([]Subcategory{
		{Name: "General", Messages: []Message{{Content: "hi"}}},
		{Name: "Formal"},
	})}

	for _, sub := range c.Subcategories {
		assert.False(t, sub.ID.IsZero())
		assert.NotNil(t, sub.Messages)
	}
	assert.False(t, c.Subcategories[0].Messages[0].ID.IsZero())

	first := c.Subcategories[0].ID
	assert.Equal(t, "General", c.FindSubcategory(first).Name)
	assert.Nil(t, c.FindSubcategory(primitive.NewObjectID()))

	assert.True(t, c.HasSubcategoryNamed("Formal", primitive.NilObjectID))
	assert.False(t, c.HasSubcategoryNamed("General", first))

	assert.Equal(t, []Subcategory{}, AssignIDs(nil))
}
