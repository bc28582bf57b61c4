package dummydb

import (
	"sort"
	"strings"

	"github.com/telepoint/backoffice/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) query() []notification.Notification {
	notifs := make([]notification.Notification, 0, len(repo.db.table))
	for _, n := range repo.db.table {
		notifs = append(notifs, *n)
	}
	// newest first
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].ID > notifs[j].ID })
	return notifs
}

func (repo *notificationRepository) CreateNotification(n notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	n.ID = repo.db.seq
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) LatestNotifications(limit int) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := repo.query()
	if limit > 0 && limit < len(notifs) {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

func (repo *notificationRepository) FilterNotifications(filter notification.QueryFilter) ([]notification.Notification, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	notifs := repo.query()

	if filter.Search != "" {
		var filtered []notification.Notification
		search := strings.ToLower(filter.Search)
		for _, n := range notifs {
			if strings.Contains(strings.ToLower(n.Title), search) ||
				strings.Contains(strings.ToLower(n.Message), search) {
				filtered = append(filtered, n)
			}
		}
		notifs = filtered
	}

	total := len(notifs)
	offset, limit := filter.Pagination.Offset(), filter.Pagination.Limit()
	if offset >= len(notifs) {
		return nil, total, nil
	}
	notifs = notifs[offset:]
	if limit > 0 && limit < len(notifs) {
		notifs = notifs[:limit]
	}
	return notifs, total, nil
}

func (repo *notificationRepository) LastNotificationID() (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.seq, nil
}

func (repo *notificationRepository) CountNotificationsAfter(id int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	count := 0
	for _, n := range repo.db.table {
		if n.ID > id {
			count++
		}
	}
	return count, nil
}

func (repo *notificationRepository) GetReadWatermark(operatorID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.watermarks[operatorID], nil
}

func (repo *notificationRepository) SetReadWatermark(operatorID, lastID int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if lastID > repo.db.watermarks[operatorID] {
		repo.db.watermarks[operatorID] = lastID
	}
	return nil
}
