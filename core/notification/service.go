package notification

import (
	"errors"
	"time"

	"github.com/telepoint/backoffice/core"
)

var ErrNotFound = errors.New("notification not found")

type (
	// Repository stores the shared feed plus a per-operator read watermark:
	// everything above an operator's watermark counts as unread for them.
	Repository interface {
		CreateNotification(n Notification) (Notification, error)
		LatestNotifications(limit int) ([]Notification, error)
		// FilterNotifications returns the page of rows plus the unpaginated total.
		FilterNotifications(filter QueryFilter) ([]Notification, int, error)
		LastNotificationID() (int, error)
		CountNotificationsAfter(id int) (int, error)
		GetReadWatermark(operatorID int) (int, error)
		SetReadWatermark(operatorID, lastID int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Broadcast appends an entry to the shared feed.
func (svc *Service) Broadcast(title, message string) error {
	title = core.CleanString(title)
	message = core.CleanString(message)
	if title == "" && message == "" {
		return nil
	}
	_, err := svc.repo.CreateNotification(Notification{
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

func (svc *Service) Latest(limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = core.Conf.Notifications.BadgeLimit
	}
	return svc.repo.LatestNotifications(limit)
}

func (svc *Service) Filter(filter QueryFilter) ([]Notification, int, error) {
	return svc.repo.FilterNotifications(filter)
}

// UnreadCount counts feed entries above the operator's read watermark.
func (svc *Service) UnreadCount(operatorID int) (int, error) {
	wm, err := svc.repo.GetReadWatermark(operatorID)
	if err != nil {
		return 0, err
	}
	return svc.repo.CountNotificationsAfter(wm)
}

// BadgeFeed assembles the header bell payload for an operator.
func (svc *Service) BadgeFeed(operatorID int) (Feed, error) {
	unread, err := svc.UnreadCount(operatorID)
	if err != nil {
		return Feed{}, err
	}
	lastID, err := svc.repo.LastNotificationID()
	if err != nil {
		return Feed{}, err
	}
	latest, err := svc.Latest(core.Conf.Notifications.BadgeLimit)
	if err != nil {
		return Feed{}, err
	}
	return Feed{UnreadCount: unread, LastID: lastID, Latest: latest}, nil
}

// MarkAllRead moves the operator's watermark to the top of the feed.
func (svc *Service) MarkAllRead(operatorID int) error {
	lastID, err := svc.repo.LastNotificationID()
	if err != nil {
		return err
	}
	return svc.repo.SetReadWatermark(operatorID, lastID)
}
