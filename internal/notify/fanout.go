// Package notify creates Notification records in response to lifecycle
// events. Every delivery is independent and best-effort: a failed admin
// notification never rolls back the mutation that triggered it, and never
// stops the remaining recipients from being notified.
package notify

import (
	"fmt"

	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/storage"

	"go.uber.org/zap"
)

// Alerter mirrors warning-level events to an out-of-band admin channel.
type Alerter interface {
	Alert(title, message string)
}

// Fanout turns lifecycle events into persisted notifications. The admin
// recipient set is recomputed from the user store on every event rather than
// kept as a subscriber list.
type Fanout struct {
	Storage storage.Storage
	Log     *zap.SugaredLogger
	Alerter Alerter // optional
}

// NewFanout creates a fanout service.
func NewFanout(s storage.Storage, log *zap.SugaredLogger) *Fanout {
	return &Fanout{Storage: s, Log: log}
}

// LoginSucceeded notifies the user of a successful login.
func (f *Fanout) LoginSucceeded(user *models.User) {
	f.deliver(&models.Notification{
		UserID:  user.ID,
		Title:   "Login Successful",
		Message: fmt.Sprintf("Welcome back %s!", user.Username),
		Type:    models.NotifySuccess,
	}, nil)
}

// Registered welcomes a newly created user.
func (f *Fanout) Registered(user *models.User) {
	f.deliver(&models.Notification{
		UserID:  user.ID,
		Title:   "Welcome!",
		Message: fmt.Sprintf("Welcome %s to Smart Complaint System!", user.Username),
		Type:    models.NotifySuccess,
	}, nil)
}

// ComplaintSubmitted confirms the filing to the owner and announces it to
// every admin.
func (f *Fanout) ComplaintSubmitted(owner *models.User, complaint *models.Complaint) {
	f.deliver(&models.Notification{
		UserID:  owner.ID,
		Title:   "Complaint Filed",
		Message: fmt.Sprintf("Your complaint %s has been submitted successfully.", complaint.ComplaintID),
		Type:    models.NotifySuccess,
	}, complaint)

	f.toAdmins(&models.Notification{
		Title:   "New Complaint",
		Message: fmt.Sprintf("New complaint %s filed by %s", complaint.ComplaintID, owner.Username),
		Type:    models.NotifyInfo,
	}, complaint)
}

// StatusChanged informs the owner about a status transition.
func (f *Fanout) StatusChanged(complaint *models.Complaint, oldStatus, newStatus string) {
	f.deliver(&models.Notification{
		UserID:  complaint.UserID,
		Title:   "Status Updated",
		Message: fmt.Sprintf("Your complaint %s status changed from %s to %s", complaint.ComplaintID, oldStatus, newStatus),
		Type:    models.NotifyInfo,
	}, complaint)
}

// FeedbackSubmitted announces a new rating to every admin.
func (f *Fanout) FeedbackSubmitted(complaint *models.Complaint, rating int) {
	f.toAdmins(&models.Notification{
		Title:   "New Feedback",
		Message: fmt.Sprintf("Complaint %s received %d/5 rating", complaint.ComplaintID, rating),
		Type:    models.NotifyInfo,
	}, complaint)
}

// ComplaintReopened warns every admin that a settled complaint came back.
func (f *Fanout) ComplaintReopened(complaint *models.Complaint, byUsername, reason string) {
	n := &models.Notification{
		Title:   "Complaint Reopened",
		Message: fmt.Sprintf("Complaint %s reopened by %s. Reason: %s", complaint.ComplaintID, byUsername, reason),
		Type:    models.NotifyWarning,
	}
	f.toAdmins(n, complaint)
	f.alert(n.Title, n.Message)
}

// ReminderDue warns the owner and every admin about a stale complaint.
func (f *Fanout) ReminderDue(complaint *models.Complaint, daysPending int) {
	f.deliver(&models.Notification{
		UserID:  complaint.UserID,
		Title:   "Pending Complaint Reminder",
		Message: fmt.Sprintf("Your complaint %s is pending for %d days.", complaint.ComplaintID, daysPending),
		Type:    models.NotifyWarning,
	}, complaint)

	n := &models.Notification{
		Title:   "⚠️ Pending Complaint",
		Message: fmt.Sprintf("Complaint %s pending for %d days", complaint.ComplaintID, daysPending),
		Type:    models.NotifyWarning,
	}
	f.toAdmins(n, complaint)
	f.alert(n.Title, n.Message)
}

// toAdmins delivers a copy of the notification to every current admin. The
// set is a live query; admins added after past events only see future ones.
func (f *Fanout) toAdmins(template *models.Notification, complaint *models.Complaint) {
	admins, err := f.Storage.GetAdminUsers()
	if err != nil {
		f.Log.Errorf("ERROR: Failed to resolve admin recipients: %v", err)
		return
	}
	for _, admin := range admins {
		n := *template
		n.UserID = admin.ID
		f.deliver(&n, complaint)
	}
}

// deliver persists a single notification and pushes it to the live stream.
// Failures are logged and swallowed.
func (f *Fanout) deliver(n *models.Notification, complaint *models.Complaint) {
	var publicID string
	if complaint != nil {
		n.ComplaintRef = &complaint.ID
		publicID = complaint.ComplaintID
	}

	if err := f.Storage.CreateNotification(n); err != nil {
		f.Log.Errorf("ERROR: Failed to persist notification %q for user %d: %v", n.Title, n.UserID, err)
		return
	}

	msg := models.NotificationMessage{
		UserID:      n.UserID,
		ID:          n.ID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        n.Type,
		ComplaintID: publicID,
		CreatedAt:   n.CreatedAt,
	}
	if err := f.Storage.PublishNotification(msg); err != nil {
		f.Log.Warnf("WARNING: Failed to publish notification %d to live stream: %v", n.ID, err)
	}
}

func (f *Fanout) alert(title, message string) {
	if f.Alerter != nil {
		f.Alerter.Alert(title, message)
	}
}
