package services

import (
	"context"
	"testing"

	"github.com/baharkarakas/servicehub-backend/internal/apperr"
	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/baharkarakas/servicehub-backend/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyDefaultsAndPopulates(t *testing.T) {
	f := newFixture()
	n, err := f.notify.Notify(context.Background(), f.customer.ID, models.NotificationInput{
		Title:        "Hello",
		Message:      "World",
		RelatedID:    "b-1",
		RelatedModel: "Booking",
	})
	require.NoError(t, err)

	assert.Equal(t, models.NotifySystem, n.Type)
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.False(t, n.Read)
	require.NotNil(t, n.Recipient)
	assert.Equal(t, "Jane Wanjiku", n.Recipient.Name)
	require.NotNil(t, n.Related)
	assert.Equal(t, models.RelatedEntity{ID: "b-1", Model: "Booking"}, *n.Related)

	pushed := f.pub.named(realtime.EventNotification)
	require.Len(t, pushed, 1)
	assert.Equal(t, f.customer.ID, pushed[0].UserID)
	assert.Equal(t, n, pushed[0].Payload)
}

func TestNotifyPersistFailure(t *testing.T) {
	f := newFixture()
	f.notes.createErr = errBoom

	_, err := f.notify.Notify(context.Background(), f.customer.ID, models.NotificationInput{Title: "x", Message: "y"})
	assert.ErrorIs(t, err, ErrNotStored)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, f.pub.events, "nothing is pushed when nothing was stored")
}

func TestNotifyPushFailureKeepsRow(t *testing.T) {
	f := newFixture()
	f.pub.err = errBoom

	n, err := f.notify.Notify(context.Background(), f.customer.ID, models.NotificationInput{Title: "x", Message: "y"})
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, ErrNotStored)
	assert.NotEmpty(t, n.ID)
	assert.Len(t, f.notes.forRecipient(f.customer.ID), 1)
}

func TestNotifyAdmins(t *testing.T) {
	f := newFixture()
	sent, err := f.notify.NotifyAdmins(context.Background(), models.NotificationInput{Title: "New User Registered", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Len(t, f.notes.forRecipient("admin-1"), 1)
	assert.Len(t, f.notes.forRecipient("admin-2"), 1)
	assert.Empty(t, f.notes.forRecipient(f.customer.ID))

	f.pub.err = errBoom
	sent, err = f.notify.NotifyAdmins(context.Background(), models.NotificationInput{Title: "again", Message: "m"})
	assert.Error(t, err)
	assert.Equal(t, 2, sent, "rows stored even though the push failed")

	f.notes.createErr = errBoom
	sent, err = f.notify.NotifyAdmins(context.Background(), models.NotificationInput{Title: "lost", Message: "m"})
	assert.Error(t, err)
	assert.Equal(t, 0, sent)
}

func TestNotificationInbox(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		n, err := f.notify.Notify(ctx, f.customer.ID, models.NotificationInput{Title: "t", Message: "m"})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}
	_, err := f.notify.Notify(ctx, f.provider.ID, models.NotificationInput{Title: "other", Message: "m"})
	require.NoError(t, err)

	page, err := f.notify.List(ctx, f.customer.ID, false, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, int64(2), page.Pagination.Pages)
	assert.Equal(t, int64(3), page.UnreadCount)

	require.NoError(t, f.notify.MarkRead(ctx, f.customer.ID, ids[0]))
	page, err = f.notify.List(ctx, f.customer.ID, true, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	assert.Equal(t, int64(2), page.UnreadCount)

	// another user's notification is invisible
	err = f.notify.MarkRead(ctx, f.provider.ID, ids[1])
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	err = f.notify.Delete(ctx, f.provider.ID, ids[1])
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	n, err := f.notify.MarkAllRead(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, f.notify.Delete(ctx, f.customer.ID, ids[0]))
	n, err = f.notify.DeleteAll(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	page, err = f.notify.List(ctx, f.customer.ID, false, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Notifications)
	assert.Empty(t, page.Notifications)
	assert.Len(t, f.notes.forRecipient(f.provider.ID), 1)
}
