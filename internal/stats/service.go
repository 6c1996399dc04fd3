// Package stats computes the dashboard and admin aggregates and runs the
// reminder sweep. Aggregates are derived synchronously per request by folding
// over the matched complaint set; categories are whatever complaint_type
// values exist, not a fixed list.
package stats

import (
	"math"
	"time"

	"smartcomplaint/backend/internal/complaint"
	"smartcomplaint/backend/internal/config"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notify"
	"smartcomplaint/backend/internal/storage"

	"go.uber.org/zap"
)

// Service computes statistics over the complaint store.
type Service struct {
	Storage storage.Storage
	Fanout  *notify.Fanout
	Log     *zap.SugaredLogger

	// ReminderDays is the staleness threshold for the sweep.
	ReminderDays int
}

// NewService creates a stats service with the default reminder threshold.
func NewService(s storage.Storage, fanout *notify.Fanout, log *zap.SugaredLogger) *Service {
	return &Service{Storage: s, Fanout: fanout, Log: log, ReminderDays: config.DefaultReminderDays}
}

// Dashboard is the per-user (or global, for admins) statistics block.
type Dashboard struct {
	Total       int            `json:"total"`
	Pending     int            `json:"pending"`
	Progress    int            `json:"progress"`
	Resolved    int            `json:"resolved"`
	Reopened    int            `json:"reopened"`
	HighUrgency int            `json:"high_urgency"`
	Categories  map[string]int `json:"categories"`
	AvgRating   float64        `json:"avg_rating"`
	// TotalUsers is only populated for admins; null otherwise.
	TotalUsers *int64 `json:"total_users"`
}

// DashboardStats aggregates over all complaints for admins, or over the
// actor's own complaints otherwise.
func (s *Service) DashboardStats(actor *models.User) (*Dashboard, error) {
	var complaints []models.Complaint
	var err error
	d := &Dashboard{Categories: make(map[string]int)}

	if actor.IsAdmin {
		complaints, err = s.Storage.GetAllComplaints()
		if err != nil {
			return nil, err
		}
		count, err := s.Storage.CountUsers()
		if err != nil {
			return nil, err
		}
		d.TotalUsers = &count
	} else {
		complaints, err = s.Storage.GetComplaintsForUser(actor.ID)
		if err != nil {
			return nil, err
		}
	}

	ratingSum, rated := 0, 0
	for _, c := range complaints {
		d.Total++
		switch c.Status {
		case models.StatusPending:
			d.Pending++
		case models.StatusProgress:
			d.Progress++
		case models.StatusResolved:
			d.Resolved++
		case models.StatusReopened:
			d.Reopened++
		}
		if c.Urgency == models.UrgencyHigh {
			d.HighUrgency++
		}
		d.Categories[c.ComplaintType]++
		if c.Rating != nil {
			ratingSum += *c.Rating
			rated++
		}
	}
	if rated > 0 {
		d.AvgRating = math.Round(float64(ratingSum)/float64(rated)*10) / 10
	}

	return d, nil
}

// OverviewRow is one complaint in the admin panel listing. Details are
// truncated to the preview length; the full text travels alongside.
type OverviewRow struct {
	ID            string `json:"id"`
	UserName      string `json:"user_name"`
	UserEmail     string `json:"user_email"`
	ComplaintType string `json:"complaint_type"`
	Urgency       string `json:"urgency"`
	Location      string `json:"location"`
	Details       string `json:"details"`
	FullDetails   string `json:"full_details"`
	Status        string `json:"status"`
	SubmittedAt   string `json:"submitted_at"`
	SubmittedDate string `json:"submitted_date"`
	SubmittedTime string `json:"submitted_time"`
	HasFiles      bool   `json:"has_files"`
	FilesCount    int    `json:"files_count"`
	Rating        *int   `json:"rating"`
	DaysPending   int    `json:"days_pending"`
}

// OverviewStats is the admin panel summary block.
type OverviewStats struct {
	TotalComplaints int   `json:"total_complaints"`
	TotalUsers      int64 `json:"total_users"`
	WithFiles       int   `json:"with_files"`
	PendingOverdue  int   `json:"pending_overdue"`
}

// Overview is the full admin panel payload.
type Overview struct {
	Complaints []OverviewRow `json:"complaints"`
	Stats      OverviewStats `json:"stats"`
}

// AdminOverview builds the admin panel data. Admin only.
func (s *Service) AdminOverview(actor *models.User) (*Overview, error) {
	if !actor.IsAdmin {
		return nil, complaint.ErrPermissionDenied
	}

	complaints, err := s.Storage.GetAllComplaints()
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.Storage.CountUsers()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	overdueCutoff := now.Add(-time.Duration(s.ReminderDays) * 24 * time.Hour)

	out := &Overview{
		Complaints: make([]OverviewRow, 0, len(complaints)),
		Stats: OverviewStats{
			TotalComplaints: len(complaints),
			TotalUsers:      totalUsers,
		},
	}

	for _, c := range complaints {
		active := c.Status == models.StatusPending || c.Status == models.StatusProgress

		if len(c.Files) > 0 {
			out.Stats.WithFiles++
		}
		if active && !c.SubmittedAt.After(overdueCutoff) {
			out.Stats.PendingOverdue++
		}

		// days_pending only counts the active backlog; settled complaints
		// report 0 regardless of age.
		days := 0
		if active {
			days = wholeDays(now.Sub(c.SubmittedAt))
		}

		out.Complaints = append(out.Complaints, OverviewRow{
			ID:            c.ComplaintID,
			UserName:      c.User.Username,
			UserEmail:     c.User.Email,
			ComplaintType: c.ComplaintType,
			Urgency:       c.Urgency,
			Location:      c.Location,
			Details:       truncate(c.Details, config.DetailsPreviewLength),
			FullDetails:   c.Details,
			Status:        c.Status,
			SubmittedAt:   c.SubmittedAt.Format(time.RFC3339),
			SubmittedDate: c.SubmittedAt.Format("2006-01-02"),
			SubmittedTime: c.SubmittedAt.Format("15:04"),
			HasFiles:      len(c.Files) > 0,
			FilesCount:    len(c.Files),
			Rating:        c.Rating,
			DaysPending:   days,
		})
	}

	return out, nil
}

// CheckReminders sweeps stale active complaints, firing the reminder fanout
// and marking each complaint so it is excluded from every future sweep.
// Admin only. Returns the number of reminders sent.
func (s *Service) CheckReminders(actor *models.User) (int, error) {
	if !actor.IsAdmin {
		return 0, complaint.ErrPermissionDenied
	}

	now := time.Now()
	cutoff := now.Add(-time.Duration(s.ReminderDays) * 24 * time.Hour)

	stale, err := s.Storage.GetStaleComplaints(cutoff)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range stale {
		c := &stale[i]
		days := wholeDays(now.Sub(c.SubmittedAt))

		s.Fanout.ReminderDue(c, days)

		reminded := now
		c.ReminderSent = true
		c.ReminderSentAt = &reminded
		if err := s.Storage.SaveComplaint(c); err != nil {
			s.Log.Errorf("ERROR: Failed to mark reminder for complaint %s: %v", c.ComplaintID, err)
			continue
		}
		sent++
	}

	return sent, nil
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
