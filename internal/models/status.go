package models

import (
	"fmt"
	"strings"
)

// Status is the moderation state of a category.
type Status string

const (
	StatusPending     Status = "Pending"
	StatusApproved    Status = "Approved"
	StatusDisapproved Status = "Disapproved"
)

// ParseStatus accepts the three status literals case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "approved":
		return StatusApproved, nil
	case "disapproved":
		return StatusDisapproved, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusDisapproved
}

// Taxonomy identifies one of the parallel category trees.
type Taxonomy string

const (
	TaxonomyDefault Taxonomy = "default"
	TaxonomyEnglish Taxonomy = "english"
)

// Taxonomies lists every taxonomy the service manages.
var Taxonomies = []Taxonomy{TaxonomyDefault, TaxonomyEnglish}

// ParseTaxonomy maps a CLI/config literal onto a Taxonomy.
func ParseTaxonomy(s string) (Taxonomy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return TaxonomyDefault, nil
	case "english", "en":
		return TaxonomyEnglish, nil
	}
	return "", fmt.Errorf("unknown taxonomy %q", s)
}

// Collection is the Mongo collection backing the taxonomy.
func (t Taxonomy) Collection() string {
	if t == TaxonomyEnglish {
		return "englishcategories"
	}
	return "categories"
}

// Role is the privilege level carried in a session token.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)
