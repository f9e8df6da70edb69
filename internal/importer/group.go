package importer

import (
	"fmt"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Row is one data line with its values resolved and trimmed.
type Row struct {
	Line        int
	Category    string
	Subcategory string
	Message     string
	Status      string
}

func (r Row) blank() bool {
	return r.Category == "" && r.Subcategory == "" && r.Message == "" && r.Status == ""
}

// ExtractRows resolves every data row of the table against cols.
func ExtractRows(t *Table, cols Columns) []Row {
	rows := make([]Row, 0, len(t.Rows))
	for i, raw := range t.Rows {
		rows = append(rows, Row{
			Line:        t.Line(i),
			Category:    cols.value(raw, FieldCategory),
			Subcategory: cols.value(raw, FieldSubcategory),
			Message:     cols.value(raw, FieldMessage),
			Status:      cols.value(raw, FieldStatus),
		})
	}
	return rows
}

// GroupedSubcategory keeps messages in row order.
type GroupedSubcategory struct {
	Name     string
	Messages []string
}

// GroupedCategory is the tree built for one category name. Status comes
// from the first row of that category; StatusExplicit records whether
// that row actually carried one.
type GroupedCategory struct {
	Name           string
	Status         models.Status
	StatusExplicit bool
	Subcategories  []*GroupedSubcategory
}

func (g *GroupedCategory) subcategory(name string) *GroupedSubcategory {
	for _, sub := range g.Subcategories {
		if sub.Name == name {
			return sub
		}
	}
	sub := &GroupedSubcategory{Name: name}
	g.Subcategories = append(g.Subcategories, sub)
	return sub
}

// Upsert converts the group into the store write.
func (g *GroupedCategory) Upsert() models.CategoryUpsert {
	subs := make([]models.Subcategory, 0, len(g.Subcategories))
	for _, sub := range g.Subcategories {
		msgs := make([]models.Message, 0, len(sub.Messages))
		for _, content := range sub.Messages {
			msgs = append(msgs, models.Message{Content: content})
		}
		subs = append(subs, models.Subcategory{Name: sub.Name, Messages: msgs})
	}
	return models.CategoryUpsert{
		Name:           g.Name,
		Status:         g.Status,
		StatusExplicit: g.StatusExplicit,
		Subcategories:  subs,
	}
}

// Grouping is the in-memory result of folding rows into category trees.
type Grouping struct {
	Categories []*GroupedCategory
	Rows       int
	Skipped    []models.SkippedRow
	Warnings   []string
}

// Group folds rows into category trees in first-seen order. Rows lacking a
// category, subcategory or message are skipped and reported; blank rows
// are ignored silently. A later row with a different status for an
// already seen category does not change it.
func Group(rows []Row, defaultStatus models.Status) *Grouping {
	g := &Grouping{}
	index := make(map[string]*GroupedCategory)

	for _, row := range rows {
		if row.blank() {
			continue
		}
		g.Rows++

		if reason := missingReason(row); reason != "" {
			g.Skipped = append(g.Skipped, models.SkippedRow{Row: row.Line, Reason: reason})
			logger.Log.WithFields(logrus.Fields{
				"row":    row.Line,
				"reason": reason,
			}).Warn("Skipping import row")
			continue
		}

		cat, ok := index[row.Category]
		if !ok {
			cat = &GroupedCategory{Name: row.Category, Status: defaultStatus}
			if row.Status != "" {
				status, err := models.ParseStatus(row.Status)
				if err != nil {
					g.Warnings = append(g.Warnings, fmt.Sprintf(
						"row %d: unknown status %q for %q, using %s", row.Line, row.Status, row.Category, defaultStatus))
				} else {
					cat.Status = status
					cat.StatusExplicit = true
				}
			}
			index[row.Category] = cat
			g.Categories = append(g.Categories, cat)
		}

		sub := cat.subcategory(row.Subcategory)
		sub.Messages = append(sub.Messages, row.Message)
	}
	return g
}

func missingReason(row Row) string {
	switch {
	case row.Category == "":
		return "missing category"
	case row.Subcategory == "":
		return "missing subcategory"
	case row.Message == "":
		return "missing message"
	}
	return ""
}
