package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartcomplaint/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Storage is the persistence boundary used by the services. Lookup methods
// return (nil, nil) on a miss; callers decide whether a miss is an error.
type Storage interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetAdminUsers() ([]models.User, error)
	CountUsers() (int64, error)

	CreateComplaint(complaint *models.Complaint) error
	SaveComplaint(complaint *models.Complaint) error
	DeleteComplaint(complaint *models.Complaint) error
	GetComplaintByCID(complaintID string) (*models.Complaint, error)
	GetComplaintsForUser(userID uint) ([]models.Complaint, error)
	GetAllComplaints() ([]models.Complaint, error)
	GetStaleComplaints(before time.Time) ([]models.Complaint, error)

	CreateAttachment(attachment *models.Attachment) error

	CreateNotification(notification *models.Notification) error
	SaveNotification(notification *models.Notification) error
	GetNotificationByID(id uint) (*models.Notification, error)
	GetUnreadNotifications(userID uint, limit int) ([]models.Notification, error)

	PublishNotification(msg models.NotificationMessage) error
	RevokeToken(jti string, ttl time.Duration) error
	IsTokenRevoked(jti string) (bool, error)
}

// Service implements Storage on top of PostgreSQL (via GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
	Log   *zap.SugaredLogger
}

// NewStorageService constructor.
func NewStorageService(db *gorm.DB, rdb *redis.Client, log *zap.SugaredLogger) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
		Log:   log,
	}
}

// ---- Users ----

func (s *Service) CreateUser(user *models.User) error {
	if err := s.DB.Create(user).Error; err != nil {
		s.Log.Errorf("ERROR: Failed to create user %s: %v", user.Username, err)
		return err
	}
	return nil
}

func (s *Service) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAdminUsers returns the current set of admins. It is queried fresh at
// every fanout so admins created later are included in future broadcasts.
func (s *Service) GetAdminUsers() ([]models.User, error) {
	var admins []models.User
	if err := s.DB.Where("is_admin = ?", true).Find(&admins).Error; err != nil {
		s.Log.Errorf("ERROR: Failed to list admin users: %v", err)
		return nil, err
	}
	return admins, nil
}

func (s *Service) CountUsers() (int64, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ---- Complaints ----

func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	if err := s.DB.Create(complaint).Error; err != nil {
		s.Log.Errorf("ERROR: Failed to create complaint for user %d: %v", complaint.UserID, err)
		return err
	}
	return nil
}

func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	if err := s.DB.Save(complaint).Error; err != nil {
		s.Log.Errorf("ERROR: Failed to save complaint %s: %v", complaint.ComplaintID, err)
		return err
	}
	return nil
}

// DeleteComplaint removes the complaint together with its attachments and any
// notifications that reference it.
func (s *Service) DeleteComplaint(complaint *models.Complaint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complaint_ref = ?", complaint.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("complaint_ref = ?", complaint.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(complaint).Error
	})
}

func (s *Service) GetComplaintByCID(complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.Preload("Files").Preload("User").
		Where("complaint_id = ?", complaintID).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *Service) GetComplaintsForUser(userID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Preload("Files").Preload("User").
		Where("user_id = ?", userID).
		Order("submitted_at desc").Find(&complaints).Error
	if err != nil {
		s.Log.Errorf("ERROR: Failed to list complaints for user %d: %v", userID, err)
		return nil, err
	}
	return complaints, nil
}

func (s *Service) GetAllComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Preload("Files").Preload("User").
		Order("submitted_at desc").Find(&complaints).Error
	if err != nil {
		s.Log.Errorf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// GetStaleComplaints returns active complaints submitted before the cutoff
// that have not yet been reminded. A complaint leaves this set forever once
// its reminder is sent.
func (s *Service) GetStaleComplaints(before time.Time) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Preload("User").
		Where("status IN ?", []string{models.StatusPending, models.StatusProgress}).
		Where("reminder_sent = ?", false).
		Where("submitted_at <= ?", before).
		Find(&complaints).Error
	if err != nil {
		s.Log.Errorf("ERROR: Failed to list stale complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// ---- Attachments ----

func (s *Service) CreateAttachment(attachment *models.Attachment) error {
	if err := s.DB.Create(attachment).Error; err != nil {
		s.Log.Errorf("ERROR: Failed to save attachment %s: %v", attachment.Name, err)
		return err
	}
	return nil
}

// ---- Notifications ----

func (s *Service) CreateNotification(notification *models.Notification) error {
	if notification.Type == "" {
		notification.Type = models.NotifyInfo
	}
	if err := s.DB.Create(notification).Error; err != nil {
		s.Log.Errorf("ERROR: Failed to create notification for user %d: %v", notification.UserID, err)
		return err
	}
	return nil
}

func (s *Service) SaveNotification(notification *models.Notification) error {
	return s.DB.Save(notification).Error
}

func (s *Service) GetNotificationByID(id uint) (*models.Notification, error) {
	var notification models.Notification
	err := s.DB.Preload("Complaint").First(&notification, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (s *Service) GetUnreadNotifications(userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.Preload("Complaint").
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at desc").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		s.Log.Errorf("ERROR: Failed to list notifications for user %d: %v", userID, err)
		return nil, err
	}
	return notifications, nil
}

// ---- Redis ----

// PublishNotification pushes a notification onto the per-user pub/sub channel
// feeding the websocket hub. Delivery is best-effort.
func (s *Service) PublishNotification(msg models.NotificationMessage) error {
	if s.Redis == nil {
		return nil // no live stream configured (admin CLI)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("notify:%d", msg.UserID)
	return s.Redis.Publish(s.Ctx, channel, payload).Err()
}

// RevokeToken marks a session token id as revoked for the remainder of the
// token's lifetime.
func (s *Service) RevokeToken(jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to revoke
	}
	key := "revoked:" + jti
	return s.Redis.Set(s.Ctx, key, "1", ttl).Err()
}

// IsTokenRevoked checks the revocation flag in Redis.
func (s *Service) IsTokenRevoked(jti string) (bool, error) {
	key := "revoked:" + jti
	status, err := s.Redis.Get(s.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}
