package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Dias221467/Message_Catalog/internal/models"
	"github.com/Dias221467/Message_Catalog/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateStatusFollowsRole(t *testing.T) {
	for _, taxonomy := range models.Taxonomies {
		t.Run(string(taxonomy), func(t *testing.T) {
			f := newFixture(t, taxonomy, models.StatusDisapproved)

			byMember := f.create(t, member, "Greetings")
			assert.Equal(t, models.StatusPending, byMember.Status)
			assert.Equal(t, member.UserID, byMember.CreatedBy)

			byAdmin := f.create(t, admin, "Farewells")
			assert.Equal(t, models.StatusApproved, byAdmin.Status)
		})
	}
}

func TestCreatePendingWritesNotification(t *testing.T) {
	f := newFixture(t, models.TaxonomyEnglish, models.StatusApproved)
	ctx := context.Background()

	pending := f.create(t, member, "Greetings")
	f.create(t, admin, "Farewells")

	list, err := f.notifications.List(ctx, models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	n := list.Notifications[0]
	assert.Equal(t, models.NotificationCategoryApproval, n.Type)
	assert.Equal(t, pending.ID, n.CategoryID)
	assert.Equal(t, "Greetings", n.CategoryName)
	assert.True(t, n.IsEnglish)
	assert.False(t, n.IsRead)
	assert.EqualValues(t, 1, list.UnreadCount)
	assert.Len(t, f.publisher.sent, 1)
}

func TestCreateSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	f.ledger.FailWrites = assert.AnError

	c := f.create(t, member, "Greetings")
	assert.Equal(t, models.StatusPending, c.Status)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	_, err := f.categories.Create(ctx, admin, CreateCategoryInput{Name: "   "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.categories.Create(ctx, admin, CreateCategoryInput{
		Name:          "Greetings",
		Subcategories: []models.Subcategory{{Name: "Hi"}, {Name: "Hi"}},
	})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateSubcategory))

	f.create(t, admin, "Greetings")
	_, err = f.categories.Create(ctx, member, CreateCategoryInput{Name: " Greetings "})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateName))
}

func TestListApprovedOnlyShowsApproved(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	f.create(t, member, "Pending one")
	approved := f.create(t, admin, "Approved one")
	rejected := f.create(t, admin, "Rejected one")
	_, err := f.moderation.Reject(ctx, admin, rejected.ID)
	require.NoError(t, err)

	for _, literal := range []string{"", "Approved", "approved"} {
		list, err := f.categories.List(ctx, member, literal)
		require.NoError(t, err)
		require.Len(t, list, 1, "literal %q", literal)
		assert.Equal(t, approved.ID, list[0].ID)
	}

	all, err := f.categories.List(ctx, admin, StatusAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := f.categories.List(ctx, admin, "PENDING")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Pending one", pending[0].Name)
}

func TestListRejectsBadRequests(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	_, err := f.categories.List(ctx, member, "Pending")
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	_, err = f.categories.List(ctx, member, StatusAll)
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	_, err = f.categories.List(ctx, admin, "archived")
	assert.True(t, apperr.Is(err, apperr.KindInvalidStatus))
}

func TestListUsesCacheAndWritesInvalidate(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()

	f.create(t, admin, "Greetings")
	_, err := f.categories.List(ctx, member, "")
	require.NoError(t, err)
	list, err := f.categories.List(ctx, member, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, f.cache.hits)

	f.create(t, admin, "Farewells")
	list, err = f.categories.List(ctx, member, "")
	require.NoError(t, err)
	assert.Len(t, list, 2, "a write must not leave a stale listing")
}

func TestListDoesNotCacheAListingOverlappingAModeration(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, admin, "Greetings")

	gated := newGatedStore(f.store)
	reader := NewCategoryService(gated, NewTaxonomyPolicy(models.TaxonomyDefault, models.StatusDisapproved),
		f.notifications, NewActivityService(f.activityLog), f.cache)

	done := make(chan []models.Category, 1)
	go func() {
		list, err := reader.List(ctx, member, "")
		assert.NoError(t, err)
		done <- list
	}()

	<-gated.listed
	_, err := f.moderation.SetStatus(ctx, admin, c.ID, "Disapproved")
	require.NoError(t, err)
	close(gated.release)

	stale := <-done
	assert.Len(t, stale, 1, "the overlapping read saw the old state")
	assert.Equal(t, 1, f.cache.stale)

	list, err := f.categories.List(ctx, member, "")
	require.NoError(t, err)
	assert.Empty(t, list, "a disapproved category must leave the public listing")
}

func TestGetHidesUnapprovedFromMembers(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, member, "Greetings")

	_, err := f.categories.Get(ctx, member, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := f.categories.Get(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Greetings", got.Name)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, admin, "Greetings", "Hi")
	f.create(t, admin, "Farewells")

	name := "Salutations"
	updated, err := f.categories.Update(ctx, admin, c.ID, UpdateCategoryInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Salutations", updated.Name)
	assert.Len(t, updated.Subcategories, 1, "omitted fields stay unchanged")

	taken := "Farewells"
	_, err = f.categories.Update(ctx, admin, c.ID, UpdateCategoryInput{Name: &taken})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateName))

	for _, literal := range []string{"maybe", "Pending", "pending"} {
		_, err = f.categories.Update(ctx, admin, c.ID, UpdateCategoryInput{Name: &taken, Status: &literal})
		assert.True(t, apperr.Is(err, apperr.KindInvalidStatus), "literal %q", literal)
	}
	stored, err := f.store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status, "Pending is only reachable at creation")
	assert.Equal(t, "Salutations", stored.Name, "a refused status leaves the other fields alone")

	_, err = f.categories.Update(ctx, member, c.ID, UpdateCategoryInput{Name: &name})
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	_, err = f.categories.Update(ctx, admin, primitive.NewObjectID(), UpdateCategoryInput{Name: &name})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdateStatusIsAModerationTransition(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, member, "Greetings")

	unread, err := f.ledger.CountUnread(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	name := "Salutations"
	status := "disapproved"
	updated, err := f.categories.Update(ctx, admin, c.ID, UpdateCategoryInput{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisapproved, updated.Status)
	assert.Equal(t, "Salutations", updated.Name)

	unread, err = f.ledger.CountUnread(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread, "the transition marks the notification read")

	entries, err := f.activityLog.List(ctx, models.TaxonomyDefault, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityCategoryDisapproved, entries[0].Type)

	_, err = f.categories.Update(ctx, member, c.ID, UpdateCategoryInput{Status: &status})
	assert.True(t, apperr.Is(err, apperr.KindPermission))
}

func TestDeleteMissingCategory(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	f.create(t, admin, "Greetings")

	err := f.categories.Delete(ctx, admin, primitive.NewObjectID())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	n, err := f.store.Count(ctx, models.CategoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestDeleteKeepsNotifications(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, member, "Greetings")

	require.NoError(t, f.categories.Delete(ctx, admin, c.ID))

	list, err := f.notifications.List(ctx, models.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.True(t, list.Notifications[0].Dangling)
	assert.Nil(t, list.Notifications[0].Category)
}

func TestDeleteAll(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	f.create(t, admin, "A")
	f.create(t, admin, "B")

	_, err := f.categories.DeleteAll(ctx, member)
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	n, err := f.categories.DeleteAll(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	all, err := f.categories.List(ctx, admin, StatusAll)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddSubcategoryDuplicateLeavesCategoryUnchanged(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, admin, "Greetings", "Hi", "Hello")

	_, err := f.categories.AddSubcategory(ctx, admin, c.ID, AddSubcategoryInput{Name: "Hi"})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateSubcategory))

	got, err := f.categories.Get(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Subcategories, 2)
}

func TestConcurrentAddSubcategory(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, admin, "Greetings")

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.categories.AddSubcategory(ctx, admin, c.ID, AddSubcategoryInput{Name: "X"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindDuplicateSubcategory))
	}
	assert.Equal(t, 1, succeeded)

	got, err := f.categories.Get(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.Subcategories, 1)
}

func TestSubcategoryLifecycle(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, admin, "Greetings", "Hi")

	withSub, err := f.categories.AddSubcategory(ctx, admin, c.ID, AddSubcategoryInput{
		Name:     "Hello",
		Messages: []models.Message{{Content: "Hello there"}},
	})
	require.NoError(t, err)
	require.Len(t, withSub.Subcategories, 2)
	hello := withSub.Subcategories[1]
	assert.False(t, hello.ID.IsZero())
	require.Len(t, hello.Messages, 1)
	assert.False(t, hello.Messages[0].ID.IsZero())

	withMsg, err := f.categories.AddMessage(ctx, admin, c.ID, hello.ID, "Hello again")
	require.NoError(t, err)
	assert.Len(t, withMsg.FindSubcategory(hello.ID).Messages, 2)

	_, err = f.categories.AddMessage(ctx, admin, c.ID, hello.ID, "  ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	clash := "Hi"
	_, err = f.categories.UpdateSubcategory(ctx, admin, c.ID, hello.ID, UpdateSubcategoryInput{Name: &clash})
	assert.True(t, apperr.Is(err, apperr.KindDuplicateSubcategory))

	rename := "Howdy"
	renamed, err := f.categories.UpdateSubcategory(ctx, admin, c.ID, hello.ID, UpdateSubcategoryInput{Name: &rename})
	require.NoError(t, err)
	assert.Equal(t, "Howdy", renamed.FindSubcategory(hello.ID).Name)
	assert.Len(t, renamed.FindSubcategory(hello.ID).Messages, 2)

	removed, err := f.categories.RemoveSubcategory(ctx, admin, c.ID, hello.ID)
	require.NoError(t, err)
	assert.Len(t, removed.Subcategories, 1)

	_, err = f.categories.RemoveSubcategory(ctx, admin, c.ID, hello.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.categories.AddMessage(ctx, admin, c.ID, primitive.NewObjectID(), "lost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCategoryWritesAreAudited(t *testing.T) {
	f := newFixture(t, models.TaxonomyDefault, models.StatusDisapproved)
	ctx := context.Background()
	c := f.create(t, admin, "Greetings")
	require.NoError(t, f.categories.Delete(ctx, admin, c.ID))

	entries, err := NewActivityService(f.activityLog).GetRecentActivities(ctx, models.TaxonomyDefault, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActivityCategoryDeleted, entries[0].Type)
	assert.Equal(t, models.ActivityCategoryCreated, entries[1].Type)
	assert.Equal(t, admin.UserID, entries[0].ActorID)
}
