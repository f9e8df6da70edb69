package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/Dias221467/Message_Catalog/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CategoryRepository handles database operations for one taxonomy's
// category collection.
type CategoryRepository struct {
	taxonomy   models.Taxonomy
	collection *mongo.Collection
}

// NewCategoryRepository creates a repository bound to the taxonomy's collection
func NewCategoryRepository(db *mongo.Database, taxonomy models.Taxonomy) *CategoryRepository {
	return &CategoryRepository{
		taxonomy:   taxonomy,
		collection: db.Collection(taxonomy.Collection()),
	}
}

func (r *CategoryRepository) Taxonomy() models.Taxonomy { return r.taxonomy }

func (r *CategoryRepository) log(id primitive.ObjectID) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"taxonomy":    r.taxonomy,
		"category_id": id.Hex(),
	})
}

// EnsureIndexes creates the unique name index backing name uniqueness and
// the index behind the newest-first status listings.
func (r *CategoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("name_unique"),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return translate(err, "failed to create indexes on %s", r.collection.Name())
	}
	return nil
}

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	now := time.Now().UTC()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now
	category.Subcategories = models.AssignIDs(category.Subcategories)

	if _, err := r.collection.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Wrap(apperr.KindDuplicateName, err, "category %q already exists", category.Name)
		}
		r.log(category.ID).WithError(err).Error("Failed to insert category")
		return nil, translate(err, "failed to create category")
	}

	r.log(category.ID).WithField("status", category.Status).Info("Category created")
	return category, nil
}

func statusFilter(filter models.CategoryFilter) bson.M {
	switch len(filter.Statuses) {
	case 0:
		return bson.M{}
	case 1:
		return bson.M{"status": filter.Statuses[0]}
	default:
		return bson.M{"status": bson.M{"$in": filter.Statuses}}
	}
}

// List returns categories ordered by name
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	// newest first; _id breaks ties between equal timestamps
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, statusFilter(filter), opts)
	if err != nil {
		logger.Log.WithError(err).WithField("taxonomy", r.taxonomy).Error("Failed to list categories")
		return nil, translate(err, "failed to list categories")
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, translate(err, "failed to decode categories")
	}
	return categories, nil
}

func (r *CategoryRepository) Count(ctx context.Context, filter models.CategoryFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, statusFilter(filter))
	if err != nil {
		return 0, translate(err, "failed to count categories")
	}
	return n, nil
}

// GetByID fetches a category by its ID
func (r *CategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var category models.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("category not found")
	}
	if err != nil {
		r.log(id).WithError(err).Error("Failed to find category")
		return nil, translate(err, "failed to fetch category")
	}
	return &category, nil
}

// findAndUpdate applies update to the document matched by filter and
// returns the post-image. ErrNoDocuments is returned untranslated so
// callers can tell "no match" apart from storage failures.
func (r *CategoryRepository) findAndUpdate(ctx context.Context, filter, update bson.M, arrayFilters ...interface{}) (*models.Category, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if len(arrayFilters) > 0 {
		opts.SetArrayFilters(options.ArrayFilters{Filters: arrayFilters})
	}

	var category models.Category
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update applies a partial update to the category's own fields
func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, update models.CategoryUpdate) (*models.Category, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Subcategories != nil {
		set["subcategories"] = models.AssignIDs(*update.Subcategories)
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}

	category, err := r.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, apperr.NotFound("category not found")
	case mongo.IsDuplicateKeyError(err):
		return nil, apperr.Wrap(apperr.KindDuplicateName, err, "category %q already exists", *update.Name)
	case err != nil:
		r.log(id).WithError(err).Error("Failed to update category")
		return nil, translate(err, "failed to update category")
	}

	r.log(id).Info("Category updated")
	return category, nil
}

// SetStatus writes the status field only
func (r *CategoryRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status models.Status) (*models.Category, error) {
	return r.Update(ctx, id, models.CategoryUpdate{Status: &status})
}

// Delete removes one category. Notifications referencing it are left as is.
func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		r.log(id).WithError(err).Error("Failed to delete category")
		return translate(err, "failed to delete category")
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("category not found")
	}

	r.log(id).Info("Category deleted")
	return nil
}

// DeleteAll removes every category of the taxonomy and returns the count
func (r *CategoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		logger.Log.WithError(err).WithField("taxonomy", r.taxonomy).Error("Failed to clear categories")
		return 0, translate(err, "failed to delete categories")
	}

	logger.Log.WithFields(logrus.Fields{
		"taxonomy": r.taxonomy,
		"count":    res.DeletedCount,
	}).Warn("All categories deleted")
	return res.DeletedCount, nil
}

// AddSubcategory appends a subcategory unless a sibling already has its
// name. The name check and the push happen in one document update.
func (r *CategoryRepository) AddSubcategory(ctx context.Context, id primitive.ObjectID, sub models.Subcategory) (*models.Category, error) {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	sub.Messages = models.AssignMessageIDs(sub.Messages)

	filter := bson.M{"_id": id, "subcategories.name": bson.M{"$ne": sub.Name}}
	update := bson.M{
		"$push": bson.M{"subcategories": sub},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	category, err := r.findAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.New(apperr.KindDuplicateSubcategory, "subcategory %q already exists", sub.Name)
	}
	if err != nil {
		r.log(id).WithError(err).Error("Failed to add subcategory")
		return nil, translate(err, "failed to add subcategory")
	}

	r.log(id).WithField("subcategory_id", sub.ID.Hex()).Info("Subcategory added")
	return category, nil
}

// RemoveSubcategory pulls one subcategory out of its parent
func (r *CategoryRepository) RemoveSubcategory(ctx context.Context, id, subID primitive.ObjectID) (*models.Category, error) {
	filter := bson.M{"_id": id, "subcategories._id": subID}
	update := bson.M{
		"$pull": bson.M{"subcategories": bson.M{"_id": subID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	category, err := r.findAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.NotFound("subcategory not found")
	}
	if err != nil {
		r.log(id).WithError(err).Error("Failed to remove subcategory")
		return nil, translate(err, "failed to remove subcategory")
	}

	r.log(id).WithField("subcategory_id", subID.Hex()).Info("Subcategory removed")
	return category, nil
}

// UpdateSubcategory merges name and/or messages into one subcategory.
// A rename is refused when another sibling already carries the new name.
func (r *CategoryRepository) UpdateSubcategory(ctx context.Context, id, subID primitive.ObjectID, update models.SubcategoryUpdate) (*models.Category, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	conditions := bson.A{
		bson.M{"_id": id},
		bson.M{"subcategories._id": subID},
	}
	if update.Name != nil {
		set["subcategories.$[s].name"] = *update.Name
		conditions = append(conditions, bson.M{"subcategories": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"name": *update.Name,
			"_id":  bson.M{"$ne": subID},
		}}}})
	}
	if update.Messages != nil {
		set["subcategories.$[s].messages"] = models.AssignMessageIDs(*update.Messages)
	}

	category, err := r.findAndUpdate(ctx, bson.M{"$and": conditions}, bson.M{"$set": set}, bson.M{"s._id": subID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if current.FindSubcategory(subID) == nil || update.Name == nil {
			return nil, apperr.NotFound("subcategory not found")
		}
		return nil, apperr.New(apperr.KindDuplicateSubcategory, "subcategory %q already exists", *update.Name)
	}
	if err != nil {
		r.log(id).WithError(err).Error("Failed to update subcategory")
		return nil, translate(err, "failed to update subcategory")
	}

	r.log(id).WithField("subcategory_id", subID.Hex()).Info("Subcategory updated")
	return category, nil
}

// AddMessage appends a message to one subcategory
func (r *CategoryRepository) AddMessage(ctx context.Context, id, subID primitive.ObjectID, msg models.Message) (*models.Category, error) {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}

	filter := bson.M{"_id": id, "subcategories._id": subID}
	update := bson.M{
		"$push": bson.M{"subcategories.$.messages": msg},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	category, err := r.findAndUpdate(ctx, filter, update)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.NotFound("subcategory not found")
	}
	if err != nil {
		r.log(id).WithError(err).Error("Failed to add message")
		return nil, translate(err, "failed to add message")
	}
	return category, nil
}

// UpsertByName replaces the subcategories of the category with the given
// name, creating it when absent. The status is overwritten only when the
// upsert marks it explicit; otherwise it applies to inserts alone.
func (r *CategoryRepository) UpsertByName(ctx context.Context, up models.CategoryUpsert) (bool, error) {
	now := time.Now().UTC()
	set := bson.M{
		"subcategories": models.AssignIDs(up.Subcategories),
		"updated_at":    now,
	}
	onInsert := bson.M{"created_at": now}
	if up.StatusExplicit {
		set["status"] = up.Status
	} else {
		onInsert["status"] = up.Status
	}
	if up.CreatedBy != nil {
		onInsert["created_by"] = *up.CreatedBy
	}

	filter := bson.M{"name": up.Name}
	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	opts := options.Update().SetUpsert(true)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// a concurrent upsert inserted the same name first; the retry matches it
		res, err = r.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"taxonomy": r.taxonomy,
			"name":     up.Name,
		}).Error("Failed to upsert category")
		return false, translate(err, "failed to upsert category %q", up.Name)
	}
	return res.UpsertedCount == 1, nil
}
