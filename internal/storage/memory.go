package storage

import (
	"sort"
	"sync"
	"time"

	"smartcomplaint/backend/internal/models"
)

// Memory is an in-memory Storage implementation. It backs the service-level
// tests and small tools that do not need PostgreSQL or Redis.
type Memory struct {
	mu sync.Mutex

	users         map[uint]*models.User
	complaints    map[uint]*models.Complaint
	attachments   map[uint]*models.Attachment
	notifications map[uint]*models.Notification
	revoked       map[string]time.Time

	nextUserID         uint
	nextComplaintID    uint
	nextAttachmentID   uint
	nextNotificationID uint

	// Published collects every pub/sub message, newest last.
	Published []models.NotificationMessage
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[uint]*models.User),
		complaints:    make(map[uint]*models.Complaint),
		attachments:   make(map[uint]*models.Attachment),
		notifications: make(map[uint]*models.Notification),
		revoked:       make(map[string]time.Time),
	}
}

// ---- Users ----

func (m *Memory) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	user.ID = m.nextUserID
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *Memory) GetUserByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) GetUserByUsername(username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetAdminUsers() ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var admins []models.User
	for _, u := range m.users {
		if u.IsAdmin {
			admins = append(admins, *u)
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	return admins, nil
}

func (m *Memory) CountUsers() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

// ---- Complaints ----

func (m *Memory) CreateComplaint(complaint *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextComplaintID++
	complaint.ID = m.nextComplaintID
	if complaint.ComplaintID == "" {
		complaint.ComplaintID = models.NewComplaintID()
	}
	if complaint.Status == "" {
		complaint.Status = models.StatusPending
	}
	if complaint.SubmittedAt.IsZero() {
		complaint.SubmittedAt = time.Now()
	}
	complaint.UpdatedAt = time.Now()
	stored := *complaint
	m.complaints[complaint.ID] = &stored
	return nil
}

func (m *Memory) SaveComplaint(complaint *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	complaint.UpdatedAt = time.Now()
	stored := *complaint
	m.complaints[complaint.ID] = &stored
	return nil
}

func (m *Memory) DeleteComplaint(complaint *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.complaints, complaint.ID)
	for id, a := range m.attachments {
		if a.ComplaintRef == complaint.ID {
			delete(m.attachments, id)
		}
	}
	for id, n := range m.notifications {
		if n.ComplaintRef != nil && *n.ComplaintRef == complaint.ID {
			delete(m.notifications, id)
		}
	}
	return nil
}

func (m *Memory) GetComplaintByCID(complaintID string) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.complaints {
		if c.ComplaintID == complaintID {
			return m.hydrateLocked(c), nil
		}
	}
	return nil, nil
}

func (m *Memory) GetComplaintsForUser(userID uint) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, c := range m.complaints {
		if c.UserID == userID {
			out = append(out, *m.hydrateLocked(c))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) GetAllComplaints() ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, c := range m.complaints {
		out = append(out, *m.hydrateLocked(c))
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) GetStaleComplaints(before time.Time) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, c := range m.complaints {
		active := c.Status == models.StatusPending || c.Status == models.StatusProgress
		if active && !c.ReminderSent && !c.SubmittedAt.After(before) {
			out = append(out, *m.hydrateLocked(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// hydrateLocked fills in the owner and attachment associations the way the
// GORM implementation preloads them. Caller must hold the lock.
func (m *Memory) hydrateLocked(c *models.Complaint) *models.Complaint {
	copied := *c
	if u, ok := m.users[c.UserID]; ok {
		copied.User = *u
	}
	copied.Files = nil
	ids := make([]uint, 0)
	for id, a := range m.attachments {
		if a.ComplaintRef == c.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		copied.Files = append(copied.Files, *m.attachments[id])
	}
	return &copied
}

func sortNewestFirst(cs []models.Complaint) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].SubmittedAt.After(cs[j].SubmittedAt) })
}

// ---- Attachments ----

func (m *Memory) CreateAttachment(attachment *models.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAttachmentID++
	attachment.ID = m.nextAttachmentID
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = time.Now()
	}
	stored := *attachment
	m.attachments[attachment.ID] = &stored
	return nil
}

// ---- Notifications ----

func (m *Memory) CreateNotification(notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNotificationID++
	notification.ID = m.nextNotificationID
	if notification.Type == "" {
		notification.Type = models.NotifyInfo
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	stored := *notification
	m.notifications[notification.ID] = &stored
	return nil
}

func (m *Memory) SaveNotification(notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *notification
	m.notifications[notification.ID] = &stored
	return nil
}

func (m *Memory) GetNotificationByID(id uint) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		copied := *n
		if n.ComplaintRef != nil {
			if c, ok := m.complaints[*n.ComplaintRef]; ok {
				linked := *c
				copied.Complaint = &linked
			}
		}
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) GetUnreadNotifications(userID uint, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			copied := *n
			if n.ComplaintRef != nil {
				if c, ok := m.complaints[*n.ComplaintRef]; ok {
					linked := *c
					copied.Complaint = &linked
				}
			}
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// NotificationsFor returns every stored notification for a user, for tests.
func (m *Memory) NotificationsFor(userID uint) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---- Redis stand-ins ----

func (m *Memory) PublishNotification(msg models.NotificationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, msg)
	return nil
}

func (m *Memory) RevokeToken(jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl > 0 {
		m.revoked[jti] = time.Now().Add(ttl)
	}
	return nil
}

func (m *Memory) IsTokenRevoked(jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[jti]
	return ok && time.Now().Before(until), nil
}
