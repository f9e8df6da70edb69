package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Dias221467/Message_Catalog/internal/importer"
	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/internal/services"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMaxUploadBytes caps spreadsheet uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// CategoryHandler serves one taxonomy. The router mounts one instance per
// taxonomy prefix.
type CategoryHandler struct {
	Categories     *services.CategoryService
	Moderation     *services.ModerationService
	Imports        *services.ImportService
	MaxUploadBytes int64
}

func NewCategoryHandler(
	categories *services.CategoryService,
	moderation *services.ModerationService,
	imports *services.ImportService,
	maxUploadBytes int64,
) *CategoryHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &CategoryHandler{
		Categories:     categories,
		Moderation:     moderation,
		Imports:        imports,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (h *CategoryHandler) log() *logrus.Entry {
	return logger.Log.WithField("taxonomy", h.Categories.Taxonomy())
}

// GET /categories?status=
func (h *CategoryHandler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	categories, err := h.Categories.List(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// POST /categories
func (h *CategoryHandler) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input services.CreateCategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Categories.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.log().WithField("category_id", category.ID.Hex()).Info("Category created")
	writeJSON(w, http.StatusCreated, map[string]interface{}{"category": category})
}

// GET /categories/{id}
func (h *CategoryHandler) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Categories.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"category": category})
}

// PUT /categories/{id}
func (h *CategoryHandler) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input services.UpdateCategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Categories.Update(r.Context(), actor, id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"category": category})
}

// DELETE /categories/{id}
func (h *CategoryHandler) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Categories.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// DELETE /categories and DELETE /categories/clear
func (h *CategoryHandler) DeleteAllCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.Categories.DeleteAll(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.log().WithField("count", n).Info("Taxonomy cleared")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      fmt.Sprintf("Deleted %d categories", n),
		"deletedCount": n,
	})
}

// GET /categories/review
func (h *CategoryHandler) ReviewQueueHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Moderation.ReviewQueue(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// GET /categories/review/count
func (h *CategoryHandler) ReviewCountHandler(w http.ResponseWriter, r *http.Request) {
	total, err := h.Moderation.ReviewCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	pending, err := h.Moderation.PendingCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": total, "pending": pending})
}

type statusRequest struct {
	CategoryID string `json:"categoryId"`
	Status     string `json:"status"`
}

// PUT /categories/approve {categoryId, status}
func (h *CategoryHandler) SetStatusByBodyHandler(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := services.ParseObjectID(req.CategoryID, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setStatus(w, r, id, req.Status)
}

// PUT /categories/{id}/approve {status}
func (h *CategoryHandler) ApproveCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", "category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.setStatus(w, r, id, req.Status)
}

func (h *CategoryHandler) setStatus(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, status string) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Moderation.SetStatus(r.Context(), actor, id, status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"category": category})
}

// PUT /categories/{id}/reject
func (h *CategoryHandler) RejectCategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Moderation.Reject(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Category rejected",
		"category": category,
	})
}

// POST /categories/{id}/subcategories
func (h *CategoryHandler) AddSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id", "category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input services.AddSubcategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Categories.AddSubcategory(r.Context(), actor, id, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"category": category})
}

// PUT /categories/{id}/subcategories/{subId}
func (h *CategoryHandler) UpdateSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, subID, err := subcategoryPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var input services.UpdateSubcategoryInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Categories.UpdateSubcategory(r.Context(), actor, id, subID, input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"category": category})
}

// DELETE /categories/{id}/subcategories/{subId}
func (h *CategoryHandler) DeleteSubcategoryHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, subID, err := subcategoryPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Categories.RemoveSubcategory(r.Context(), actor, id, subID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"category": category})
}

// POST /categories/{id}/subcategories/{subId}/messages {content}
func (h *CategoryHandler) AddMessageHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, subID, err := subcategoryPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.Categories.AddMessage(r.Context(), actor, id, subID, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"category": category})
}

func subcategoryPath(r *http.Request) (id, subID primitive.ObjectID, err error) {
	if id, err = pathID(r, "id", "category"); err != nil {
		return id, subID, err
	}
	subID, err = pathID(r, "subId", "subcategory")
	return id, subID, err
}

// importFile reads the multipart "file" field within the upload limit.
func (h *CategoryHandler) importFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, "", apperr.Validation("file exceeds the %d byte upload limit", h.MaxUploadBytes)
		}
		return nil, "", apperr.Wrap(apperr.KindValidation, err, "no file uploaded")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindValidation, err, "no file uploaded")
	}
	if !importer.IsSupported(header.Filename) {
		file.Close()
		return nil, "", apperr.Validation("unsupported file type: use %s", strings.Join(importer.SupportedExtensions, ", "))
	}
	return file, header.Filename, nil
}

// POST /categories/import
func (h *CategoryHandler) ImportCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	file, filename, err := h.importFile(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	summary, err := h.Imports.Import(r.Context(), actor, file, filename)
	if err != nil {
		if summary != nil {
			// partial imports are not rolled back, so report what landed
			kind := apperr.KindOf(err)
			h.log().WithError(err).WithField("file", filename).Error("Import aborted")
			writeJSON(w, apperr.HTTPStatus(kind), map[string]interface{}{
				"success": false,
				"kind":    kind,
				"message": apperr.Message(err),
				"summary": summary,
			})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": importMessage(summary),
		"summary": summary,
	})
}

func importMessage(s *models.ImportSummary) string {
	return fmt.Sprintf("Imported %d categories (%d created, %d updated), %d rows skipped",
		s.Created+s.Updated, s.Created, s.Updated, s.Skipped)
}

// POST /categories/import/analyze
func (h *CategoryHandler) AnalyzeImportHandler(w http.ResponseWriter, r *http.Request) {
	file, filename, err := h.importFile(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	analysis, err := h.Imports.Analyze(file, filename)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
