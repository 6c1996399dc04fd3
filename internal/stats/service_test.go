package stats_test

import (
	"strings"
	"testing"
	"time"

	"smartcomplaint/backend/internal/complaint"
	"smartcomplaint/backend/internal/logger"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notify"
	"smartcomplaint/backend/internal/stats"
	"smartcomplaint/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mem     *storage.Memory
	service *stats.Service
	owner   *models.User
	admin   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storage.NewMemory()
	log := logger.NewNop()
	f := &fixture{
		mem:     mem,
		service: stats.NewService(mem, notify.NewFanout(mem, log), log),
		owner:   &models.User{Username: "sofia", Email: "sofia@example.com"},
		admin:   &models.User{Username: "root", Email: "root@example.com", IsAdmin: true},
	}
	require.NoError(t, mem.CreateUser(f.owner))
	require.NoError(t, mem.CreateUser(f.admin))
	return f
}

func (f *fixture) addComplaint(t *testing.T, c *models.Complaint) *models.Complaint {
	t.Helper()
	if c.UserID == 0 {
		c.UserID = f.owner.ID
	}
	require.NoError(t, f.mem.CreateComplaint(c))
	return c
}

func intPtr(v int) *int { return &v }

// TestDashboardStatusCountsSumToTotal: every complaint is in exactly one
// status bucket.
func TestDashboardStatusCountsSumToTotal(t *testing.T) {
	f := newFixture(t)
	f.addComplaint(t, &models.Complaint{Details: "a", Status: models.StatusPending, ComplaintType: "Water"})
	f.addComplaint(t, &models.Complaint{Details: "b", Status: models.StatusProgress, ComplaintType: "Water"})
	f.addComplaint(t, &models.Complaint{Details: "c", Status: models.StatusResolved, ComplaintType: "Electricity"})
	f.addComplaint(t, &models.Complaint{Details: "d", Status: models.StatusReopened, ComplaintType: "Electricity", Urgency: models.UrgencyHigh})

	d, err := f.service.DashboardStats(f.admin)

	require.NoError(t, err)
	assert.Equal(t, 4, d.Total)
	assert.Equal(t, d.Total, d.Pending+d.Progress+d.Resolved+d.Reopened)
	assert.Equal(t, 1, d.HighUrgency)
	assert.Equal(t, map[string]int{"Water": 2, "Electricity": 2}, d.Categories)
}

// TestDashboardAvgRating: only rated complaints contribute, rounded to one
// decimal place.
func TestDashboardAvgRating(t *testing.T) {
	f := newFixture(t)
	f.addComplaint(t, &models.Complaint{Details: "a", Status: models.StatusResolved, Rating: intPtr(4)})
	f.addComplaint(t, &models.Complaint{Details: "b", Status: models.StatusResolved, Rating: intPtr(3)})
	f.addComplaint(t, &models.Complaint{Details: "c", Status: models.StatusPending})

	d, err := f.service.DashboardStats(f.owner)

	require.NoError(t, err)
	assert.Equal(t, 3.5, d.AvgRating)
}

func TestDashboardNoRatings(t *testing.T) {
	f := newFixture(t)
	f.addComplaint(t, &models.Complaint{Details: "a", Status: models.StatusPending})

	d, err := f.service.DashboardStats(f.owner)

	require.NoError(t, err)
	assert.Zero(t, d.AvgRating)
}

// TestDashboardScope: total_users is only exposed to admins, and non-admins
// only aggregate over their own complaints.
func TestDashboardScope(t *testing.T) {
	f := newFixture(t)
	other := &models.User{Username: "marko", Email: "marko@example.com"}
	require.NoError(t, f.mem.CreateUser(other))
	f.addComplaint(t, &models.Complaint{Details: "mine", Status: models.StatusPending})
	f.addComplaint(t, &models.Complaint{UserID: other.ID, Details: "theirs", Status: models.StatusPending})

	own, err := f.service.DashboardStats(f.owner)
	require.NoError(t, err)
	assert.Equal(t, 1, own.Total)
	assert.Nil(t, own.TotalUsers)

	global, err := f.service.DashboardStats(f.admin)
	require.NoError(t, err)
	assert.Equal(t, 2, global.Total)
	require.NotNil(t, global.TotalUsers)
	assert.Equal(t, int64(3), *global.TotalUsers)
}

func TestAdminOverviewRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AdminOverview(f.owner)

	require.ErrorIs(t, err, complaint.ErrPermissionDenied)
}

// TestAdminOverviewDaysPending: settled complaints report zero days no
// matter how old they are; active ones report their true age.
func TestAdminOverviewDaysPending(t *testing.T) {
	f := newFixture(t)
	old := time.Now().Add(-5 * 24 * time.Hour)
	f.addComplaint(t, &models.Complaint{Details: "stale", Status: models.StatusPending, SubmittedAt: old})
	f.addComplaint(t, &models.Complaint{Details: "done", Status: models.StatusResolved, SubmittedAt: old})

	ov, err := f.service.AdminOverview(f.admin)

	require.NoError(t, err)
	rows := map[string]stats.OverviewRow{}
	for _, row := range ov.Complaints {
		rows[row.FullDetails] = row
	}
	assert.Equal(t, 5, rows["stale"].DaysPending)
	assert.Equal(t, 0, rows["done"].DaysPending)
	assert.Equal(t, 1, ov.Stats.PendingOverdue)
	assert.Equal(t, 2, ov.Stats.TotalComplaints)
	assert.Equal(t, int64(2), ov.Stats.TotalUsers)
}

// TestAdminOverviewTruncation: the preview is cut at 100 characters with an
// ellipsis; full_details keeps the whole text.
func TestAdminOverviewTruncation(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("x", 150)
	f.addComplaint(t, &models.Complaint{Details: long, Status: models.StatusPending})

	ov, err := f.service.AdminOverview(f.admin)

	require.NoError(t, err)
	require.Len(t, ov.Complaints, 1)
	row := ov.Complaints[0]
	assert.Equal(t, strings.Repeat("x", 100)+"...", row.Details)
	assert.Equal(t, long, row.FullDetails)
	assert.Equal(t, "sofia", row.UserName)
	assert.Equal(t, "sofia@example.com", row.UserEmail)
}

func TestAdminOverviewShortDetailsNotTruncated(t *testing.T) {
	f := newFixture(t)
	f.addComplaint(t, &models.Complaint{Details: "short", Status: models.StatusPending})

	ov, err := f.service.AdminOverview(f.admin)

	require.NoError(t, err)
	require.Len(t, ov.Complaints, 1)
	assert.Equal(t, "short", ov.Complaints[0].Details)
}

// TestCheckRemindersIdempotent: the first sweep notifies the owner and every
// admin once per stale complaint; the second sweep finds nothing.
func TestCheckRemindersIdempotent(t *testing.T) {
	f := newFixture(t)
	old := time.Now().Add(-5 * 24 * time.Hour)
	f.addComplaint(t, &models.Complaint{Details: "stale", Status: models.StatusPending, SubmittedAt: old})
	f.addComplaint(t, &models.Complaint{Details: "fresh", Status: models.StatusPending})
	f.addComplaint(t, &models.Complaint{Details: "done", Status: models.StatusResolved, SubmittedAt: old})

	sent, err := f.service.CheckReminders(f.admin)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	ownerNotes := f.mem.NotificationsFor(f.owner.ID)
	require.Len(t, ownerNotes, 1)
	assert.Contains(t, ownerNotes[0].Message, "pending for 5 days")
	assert.Equal(t, models.NotifyWarning, ownerNotes[0].Type)
	require.Len(t, f.mem.NotificationsFor(f.admin.ID), 1)

	sent, err = f.service.CheckReminders(f.admin)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, f.mem.NotificationsFor(f.owner.ID), 1)
}

// Reopening does not re-arm the reminder; the sweep still skips it.
func TestCheckRemindersSkipsRemindedReopened(t *testing.T) {
	f := newFixture(t)
	old := time.Now().Add(-10 * 24 * time.Hour)
	c := f.addComplaint(t, &models.Complaint{
		Details:      "stale",
		Status:       models.StatusReopened,
		SubmittedAt:  old,
		Reopened:     true,
		ReminderSent: true,
	})
	_ = c

	sent, err := f.service.CheckReminders(f.admin)

	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestCheckRemindersRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CheckReminders(f.owner)

	require.ErrorIs(t, err, complaint.ErrPermissionDenied)
}
