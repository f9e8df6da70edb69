package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is a logical import column.
type Field string

const (
	FieldCategory    Field = "categories"
	FieldSubcategory Field = "subcategories"
	FieldMessage     Field = "messages"
	FieldStatus      Field = "status"
)

// RequiredFields must all resolve for a sheet to be importable.
var RequiredFields = []Field{FieldCategory, FieldSubcategory, FieldMessage}

// aliases are compared after normalizeHeader, so they are written folded.
var aliases = map[Field][]string{
	FieldCategory:    {"categories", "category", "categorie", "categoria", "categorias"},
	FieldSubcategory: {"subcategories", "subcategory", "souscategorie", "souscategories", "subcategoria", "subcategorias"},
	FieldMessage:     {"messages", "message", "contenu", "content", "mensaje", "mensajes"},
	FieldStatus:      {"status", "statut", "etat", "estado"},
}

var lookup = func() map[string]Field {
	m := make(map[string]Field)
	for field, names := range aliases {
		for _, name := range names {
			m[name] = field
		}
	}
	return m
}()

// normalizeHeader folds a header cell so that "Catégories ", "CATEGORIES"
// and "sous-catégorie" compare equal to their aliases.
func normalizeHeader(h string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, h)
	if err != nil {
		folded = h
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '-' || r == '_' || r == '\ufeff' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Columns maps each resolved field to its zero-based column index.
type Columns map[Field]int

// ResolveColumns matches header cells to fields. When two cells resolve to
// the same field the leftmost wins.
func ResolveColumns(header []string) Columns {
	cols := make(Columns)
	for i, cell := range header {
		field, ok := lookup[normalizeHeader(cell)]
		if !ok {
			continue
		}
		if _, seen := cols[field]; !seen {
			cols[field] = i
		}
	}
	return cols
}

// Missing lists the required fields that did not resolve.
func (c Columns) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := c[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// value returns the trimmed cell for field, or "" when the column is
// absent or the row is short.
func (c Columns) value(row []string, field Field) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
