// Package complaint implements the complaint lifecycle: submission, status
// changes, feedback, reopening and deletion, with notification fanout on
// every state change.
package complaint

import (
	"time"

	"smartcomplaint/backend/internal/blobstore"
	"smartcomplaint/backend/internal/config"
	"smartcomplaint/backend/internal/models"
	"smartcomplaint/backend/internal/notify"
	"smartcomplaint/backend/internal/storage"

	"go.uber.org/zap"
)

// Service handles the business logic for complaints.
type Service struct {
	Storage storage.Storage
	Blobs   blobstore.Store
	Fanout  *notify.Fanout
	Log     *zap.SugaredLogger
}

// NewService creates a new complaint service.
func NewService(s storage.Storage, blobs blobstore.Store, fanout *notify.Fanout, log *zap.SugaredLogger) *Service {
	return &Service{Storage: s, Blobs: blobs, Fanout: fanout, Log: log}
}

// GPSFix is an optional location reading attached to a submission. The three
// fields are set together or not at all.
type GPSFix struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// FileUpload is an inline attachment payload, base64-encoded, optionally
// carrying a data-URI prefix.
type FileUpload struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// SubmitRequest carries everything a user provides when filing a complaint.
type SubmitRequest struct {
	ComplaintType string       `json:"complaint_type"`
	Urgency       string       `json:"urgency"`
	Location      string       `json:"location"`
	Details       string       `json:"details"`
	Name          string       `json:"name"`
	Roll          *string      `json:"roll"`
	Tags          []string     `json:"tags"`
	GPS           *GPSFix      `json:"gpsLocation"`
	Files         []FileUpload `json:"files"`
}

// FileResult reports the outcome for one uploaded file. Attachments are
// handled per-item: a bad file is skipped, it never aborts the submission.
type FileResult struct {
	Name  string `json:"name"`
	Saved bool   `json:"saved"`
}

// Submit creates a complaint in the pending state and fans out the
// submission notifications.
func (s *Service) Submit(actor *models.User, req SubmitRequest) (*models.Complaint, []FileResult, error) {
	if req.Details == "" {
		return nil, nil, validationError("Details are required")
	}

	c := &models.Complaint{
		UserID:        actor.ID,
		ComplaintType: req.ComplaintType,
		Urgency:       req.Urgency,
		Location:      req.Location,
		Details:       req.Details,
		Name:          req.Name,
		Roll:          req.Roll,
		Tags:          req.Tags,
		Status:        models.StatusPending,
	}
	if c.ComplaintType == "" {
		c.ComplaintType = config.DefaultComplaintType
	}
	if c.Urgency == "" {
		c.Urgency = config.DefaultUrgency
	}
	if c.Location == "" {
		c.Location = config.DefaultLocation
	}
	if c.Name == "" {
		c.Name = actor.Username
	}
	if req.GPS != nil {
		lat, lon, acc := req.GPS.Latitude, req.GPS.Longitude, req.GPS.Accuracy
		c.Latitude = &lat
		c.Longitude = &lon
		c.GPSAccuracy = &acc
	}

	if err := s.Storage.CreateComplaint(c); err != nil {
		return nil, nil, err
	}

	results := s.storeFiles(c, req.Files)

	s.Fanout.ComplaintSubmitted(actor, c)
	return c, results, nil
}

// storeFiles decodes and persists each upload independently, accumulating a
// per-file outcome instead of failing the batch.
func (s *Service) storeFiles(c *models.Complaint, files []FileUpload) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		if f.Data == "" {
			continue
		}
		res := FileResult{Name: f.Name}

		data, err := blobstore.Decode(f.Data)
		if err != nil {
			s.Log.Errorf("ERROR: Failed to decode file %s for complaint %s: %v", f.Name, c.ComplaintID, err)
			results = append(results, res)
			continue
		}

		handle, err := s.Blobs.Save(f.Name, data)
		if err != nil {
			s.Log.Errorf("ERROR: Failed to store file %s for complaint %s: %v", f.Name, c.ComplaintID, err)
			results = append(results, res)
			continue
		}

		att := &models.Attachment{
			ComplaintRef: c.ID,
			Name:         f.Name,
			StoredName:   handle,
			Size:         int64(len(data)),
		}
		if err := s.Storage.CreateAttachment(att); err != nil {
			results = append(results, res)
			continue
		}

		c.Files = append(c.Files, *att)
		res.Saved = true
		results = append(results, res)
	}
	return results
}

// List returns complaints visible to the actor: all of them for admins, only
// their own otherwise, newest first.
func (s *Service) List(actor *models.User) ([]models.Complaint, error) {
	if actor.IsAdmin {
		return s.Storage.GetAllComplaints()
	}
	return s.Storage.GetComplaintsForUser(actor.ID)
}

// SetStatus overwrites the complaint status. Allowed for admins and for the
// owner; any status can be set from any status.
func (s *Service) SetStatus(actor *models.User, complaintID, newStatus string) error {
	switch newStatus {
	case models.StatusPending, models.StatusProgress, models.StatusResolved, models.StatusReopened:
	default:
		return validationError("Invalid status")
	}

	c, err := s.Storage.GetComplaintByCID(complaintID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if !actor.IsAdmin && c.UserID != actor.ID {
		return ErrPermissionDenied
	}

	oldStatus := c.Status
	c.Status = newStatus
	if err := s.Storage.SaveComplaint(c); err != nil {
		return err
	}

	s.Fanout.StatusChanged(c, oldStatus, newStatus)
	return nil
}

// SubmitFeedback records the owner's rating and comment. Feedback is
// accepted in any status; there is no resolved-only guard.
func (s *Service) SubmitFeedback(actor *models.User, complaintID string, rating int, feedback string) error {
	if rating < config.MinRating || rating > config.MaxRating {
		return validationError("Rating must be between 1 and 5")
	}

	c, err := s.Storage.GetComplaintByCID(complaintID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if c.UserID != actor.ID {
		return ErrPermissionDenied
	}

	now := time.Now()
	c.Rating = &rating
	c.Feedback = &feedback
	c.FeedbackSubmittedAt = &now
	if err := s.Storage.SaveComplaint(c); err != nil {
		return err
	}

	s.Fanout.FeedbackSubmitted(c, rating)
	return nil
}

// Reopen returns an owner's complaint to the active workflow. The reminder
// flag is intentionally left alone: a complaint that already got its one
// reminder stays out of future sweeps even after reopening.
func (s *Service) Reopen(actor *models.User, complaintID, reason string) error {
	c, err := s.Storage.GetComplaintByCID(complaintID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}
	if c.UserID != actor.ID {
		return ErrPermissionDenied
	}

	c.Status = models.StatusReopened
	c.Reopened = true
	c.ReopenReason = &reason
	c.ReopenCount++
	if err := s.Storage.SaveComplaint(c); err != nil {
		return err
	}

	s.Fanout.ComplaintReopened(c, actor.Username, reason)
	return nil
}

// Delete removes a complaint with its attachments and linked notifications.
// Admin only.
func (s *Service) Delete(actor *models.User, complaintID string) error {
	if !actor.IsAdmin {
		return ErrPermissionDenied
	}

	c, err := s.Storage.GetComplaintByCID(complaintID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrNotFound
	}

	return s.Storage.DeleteComplaint(c)
}
