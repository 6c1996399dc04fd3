package complaint_test

import (
	"encoding/base64"
	"testing"

	"smartcomplaint/backend/internal/complaint"
	"smartcomplaint/backend/internal/logger"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notify"
	"smartcomplaint/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mem     *storage.Memory
	service *complaint.Service
	owner   *models.User
	admin   *models.User
	other   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storage.NewMemory()
	log := logger.NewNop()
	fanout := notify.NewFanout(mem, log)

	f := &fixture{
		mem:     mem,
		service: complaint.NewService(mem, &memBlobs{}, fanout, log),
		owner:   &models.User{Username: "sofia", Email: "sofia@example.com"},
		admin:   &models.User{Username: "root", Email: "root@example.com", IsAdmin: true},
		other:   &models.User{Username: "marko", Email: "marko@example.com"},
	}
	require.NoError(t, mem.CreateUser(f.owner))
	require.NoError(t, mem.CreateUser(f.admin))
	require.NoError(t, mem.CreateUser(f.other))
	return f
}

// memBlobs keeps stored payloads in memory.
type memBlobs struct {
	saved map[string][]byte
}

func (b *memBlobs) Save(name string, data []byte) (string, error) {
	if b.saved == nil {
		b.saved = make(map[string][]byte)
	}
	handle := "blob-" + name
	b.saved[handle] = data
	return handle, nil
}

func (b *memBlobs) URL(handle string) string { return "/uploads/" + handle }

// TestSubmitDefaults covers the scenario: details only, no GPS, no files.
func TestSubmitDefaults(t *testing.T) {
	f := newFixture(t)

	c, files, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, "General", c.ComplaintType)
	assert.Equal(t, "Normal", c.Urgency)
	assert.Equal(t, "Not specified", c.Location)
	assert.Equal(t, "sofia", c.Name)
	assert.False(t, c.HasGPS())
	assert.Empty(t, files)
	assert.NotEmpty(t, c.ComplaintID)

	// Owner confirmation plus one admin announcement.
	require.Len(t, f.mem.NotificationsFor(f.owner.ID), 1)
	require.Len(t, f.mem.NotificationsFor(f.admin.ID), 1)
	assert.Empty(t, f.mem.NotificationsFor(f.other.ID))
}

func TestSubmitRequiresDetails(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{})

	var vErr *complaint.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestSubmitWithGPS(t *testing.T) {
	f := newFixture(t)

	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{
		Details: "broken lamp",
		GPS:     &complaint.GPSFix{Latitude: 48.45, Longitude: 35.05, Accuracy: 12.5},
	})

	require.NoError(t, err)
	assert.True(t, c.HasGPS())
	require.NotNil(t, c.GPSAccuracy)
	assert.Equal(t, 12.5, *c.GPSAccuracy)
}

// TestSubmitSkipsBadAttachment: one malformed file must not abort the
// submission or the remaining files.
func TestSubmitSkipsBadAttachment(t *testing.T) {
	f := newFixture(t)
	good := base64.StdEncoding.EncodeToString([]byte("photo-bytes"))

	c, files, err := f.service.Submit(f.owner, complaint.SubmitRequest{
		Details: "water leak",
		Files: []complaint.FileUpload{
			{Name: "bad.png", Data: "%%%not-base64%%%"},
			{Name: "good.png", Data: "data:image/png;base64," + good},
		},
	})

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.False(t, files[0].Saved)
	assert.True(t, files[1].Saved)

	stored, err := f.mem.GetComplaintByCID(c.ComplaintID)
	require.NoError(t, err)
	require.Len(t, stored.Files, 1)
	assert.Equal(t, "good.png", stored.Files[0].Name)
	assert.Equal(t, int64(len("photo-bytes")), stored.Files[0].Size)
}

// TestSetStatusPermission covers the scenario: a non-owner, non-admin caller
// gets "Permission denied".
func TestSetStatusPermission(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	err = f.service.SetStatus(f.other, c.ComplaintID, models.StatusResolved)

	require.ErrorIs(t, err, complaint.ErrPermissionDenied)
	assert.Equal(t, "Permission denied", err.Error())
}

// TestSetStatusAnyTransition pins the permissive state machine: any status
// is reachable from any other, and each change notifies the owner.
func TestSetStatusAnyTransition(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)
	before := len(f.mem.NotificationsFor(f.owner.ID))

	require.NoError(t, f.service.SetStatus(f.admin, c.ComplaintID, models.StatusResolved))
	require.NoError(t, f.service.SetStatus(f.admin, c.ComplaintID, models.StatusPending))

	stored, err := f.mem.GetComplaintByCID(c.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	notes := f.mem.NotificationsFor(f.owner.ID)
	require.Len(t, notes, before+2)
	assert.Contains(t, notes[len(notes)-1].Message, "from resolved to pending")
}

func TestSetStatusUnknownValue(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	err = f.service.SetStatus(f.admin, c.ComplaintID, "escalated")

	var vErr *complaint.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestSetStatusNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.service.SetStatus(f.admin, "CMP00000000", models.StatusResolved)

	require.ErrorIs(t, err, complaint.ErrNotFound)
}

// TestSubmitFeedbackNotifiesAdmins covers the scenario: rating 5 increases
// each admin's notification count; the owner's own count stays untouched by
// this call.
func TestSubmitFeedbackNotifiesAdmins(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	ownerBefore := len(f.mem.NotificationsFor(f.owner.ID))
	adminBefore := len(f.mem.NotificationsFor(f.admin.ID))

	require.NoError(t, f.service.SubmitFeedback(f.owner, c.ComplaintID, 5, "fixed quickly"))

	assert.Len(t, f.mem.NotificationsFor(f.owner.ID), ownerBefore)
	adminNotes := f.mem.NotificationsFor(f.admin.ID)
	require.Len(t, adminNotes, adminBefore+1)
	assert.Contains(t, adminNotes[len(adminNotes)-1].Message, "5/5 rating")

	stored, err := f.mem.GetComplaintByCID(c.ComplaintID)
	require.NoError(t, err)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
	assert.NotNil(t, stored.FeedbackSubmittedAt)
}

// Feedback is accepted in any status; there is no resolved-only guard.
func TestSubmitFeedbackInPendingStatus(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	assert.NoError(t, f.service.SubmitFeedback(f.owner, c.ComplaintID, 3, "meh"))
}

func TestSubmitFeedbackRatingRange(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	var vErr *complaint.ValidationError
	require.ErrorAs(t, f.service.SubmitFeedback(f.owner, c.ComplaintID, 0, ""), &vErr)
	require.ErrorAs(t, f.service.SubmitFeedback(f.owner, c.ComplaintID, 6, ""), &vErr)
}

func TestSubmitFeedbackOwnerOnly(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	require.ErrorIs(t, f.service.SubmitFeedback(f.other, c.ComplaintID, 4, ""), complaint.ErrPermissionDenied)
	require.ErrorIs(t, f.service.SubmitFeedback(f.admin, c.ComplaintID, 4, ""), complaint.ErrPermissionDenied)
}

// TestReopen covers the scenario: reason recorded, reopened flag set,
// counter incremented by one, one warning per admin.
func TestReopen(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)
	adminBefore := len(f.mem.NotificationsFor(f.admin.ID))

	require.NoError(t, f.service.Reopen(f.owner, c.ComplaintID, "still broken"))

	stored, err := f.mem.GetComplaintByCID(c.ComplaintID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReopened, stored.Status)
	assert.True(t, stored.Reopened)
	require.NotNil(t, stored.ReopenReason)
	assert.Equal(t, "still broken", *stored.ReopenReason)
	assert.Equal(t, 1, stored.ReopenCount)

	adminNotes := f.mem.NotificationsFor(f.admin.ID)
	require.Len(t, adminNotes, adminBefore+1)
	assert.Equal(t, models.NotifyWarning, adminNotes[len(adminNotes)-1].Type)
}

// TestReopenCountMonotone: the counter only ever goes up, one per reopen.
func TestReopenCountMonotone(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		require.NoError(t, f.service.Reopen(f.owner, c.ComplaintID, "again"))
		stored, err := f.mem.GetComplaintByCID(c.ComplaintID)
		require.NoError(t, err)
		assert.Equal(t, i, stored.ReopenCount)
	}
}

// TestReopenKeepsReminderFlag pins the known gap: a complaint that already
// got its reminder is not re-armed by reopening.
func TestReopenKeepsReminderFlag(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	stored, err := f.mem.GetComplaintByCID(c.ComplaintID)
	require.NoError(t, err)
	stored.ReminderSent = true
	require.NoError(t, f.mem.SaveComplaint(stored))

	require.NoError(t, f.service.Reopen(f.owner, c.ComplaintID, "still broken"))

	stored, err = f.mem.GetComplaintByCID(c.ComplaintID)
	require.NoError(t, err)
	assert.True(t, stored.ReminderSent)
}

func TestReopenOwnerOnly(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	require.ErrorIs(t, f.service.Reopen(f.admin, c.ComplaintID, "nope"), complaint.ErrPermissionDenied)
}

// TestDeleteCascades: removing a complaint also removes its attachments and
// the notifications referencing it.
func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	payload := base64.StdEncoding.EncodeToString([]byte("photo"))
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{
		Details: "water leak",
		Files:   []complaint.FileUpload{{Name: "leak.png", Data: payload}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, f.mem.NotificationsFor(f.owner.ID))

	require.NoError(t, f.service.Delete(f.admin, c.ComplaintID))

	gone, err := f.mem.GetComplaintByCID(c.ComplaintID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Empty(t, f.mem.NotificationsFor(f.owner.ID))
	assert.Empty(t, f.mem.NotificationsFor(f.admin.ID))
}

func TestDeleteRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	c, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "water leak"})
	require.NoError(t, err)

	require.ErrorIs(t, f.service.Delete(f.owner, c.ComplaintID), complaint.ErrPermissionDenied)
}

// TestListVisibility: admins see everything, users only their own.
func TestListVisibility(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.service.Submit(f.owner, complaint.SubmitRequest{Details: "one"})
	require.NoError(t, err)
	_, _, err = f.service.Submit(f.other, complaint.SubmitRequest{Details: "two"})
	require.NoError(t, err)

	all, err := f.service.List(f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.service.List(f.owner)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "one", own[0].Details)
}
