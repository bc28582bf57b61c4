package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/notification"
)

type notificationRow struct {
	ID        int       `db:"id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

func (r notificationRow) toDomain() notification.Notification {
	return notification.Notification{
		ID:        r.ID,
		Title:     r.Title,
		Message:   r.Message,
		CreatedAt: r.CreatedAt,
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) CreateNotification(n notification.Notification) (notification.Notification, error) {
	query := `INSERT INTO notification (title, message, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := repo.db.Get(&n.ID, query, n.Title, n.Message, n.CreatedAt); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) LatestNotifications(limit int) ([]notification.Notification, error) {
	var rows []notificationRow
	query := `SELECT * FROM notification ORDER BY id DESC LIMIT $1`
	if err := repo.db.Select(&rows, query, limit); err != nil {
		return nil, errors.Wrap(err, "querying latest notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifs = append(notifs, r.toDomain())
	}
	return notifs, nil
}

func (repo notificationRepository) FilterNotifications(filter notification.QueryFilter) ([]notification.Notification, int, error) {
	qb := newQueryBuilder(`SELECT * FROM notification WHERE TRUE`)
	if filter.Search != "" {
		qb.where(`(title ILIKE %[1]s OR message ILIKE %[1]s)`, "%"+filter.Search+"%")
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM notification WHERE TRUE`+qb.conditions(), qb.args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting notifications")
	}

	suffix := qb.pageSuffix(filter.Pagination, core.Desc("id"))
	query, args := qb.build(suffix)

	var rows []notificationRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifs = append(notifs, r.toDomain())
	}
	return notifs, total, nil
}

func (repo notificationRepository) LastNotificationID() (int, error) {
	var id int
	if err := repo.db.Get(&id, `SELECT COALESCE(MAX(id), 0) FROM notification`); err != nil {
		return 0, errors.Wrap(err, "querying last notification ID")
	}
	return id, nil
}

func (repo notificationRepository) CountNotificationsAfter(id int) (int, error) {
	var count int
	if err := repo.db.Get(&count, `SELECT COUNT(*) FROM notification WHERE id > $1`, id); err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return count, nil
}

func (repo notificationRepository) GetReadWatermark(operatorID int) (int, error) {
	var lastID int
	query := `SELECT COALESCE(MAX(last_id), 0) FROM notification_read WHERE operator_id = $1`
	if err := repo.db.Get(&lastID, query, operatorID); err != nil {
		return 0, errors.Wrap(err, "querying read watermark")
	}
	return lastID, nil
}

func (repo notificationRepository) SetReadWatermark(operatorID, lastID int) error {
	query := `
INSERT INTO notification_read (operator_id, last_id)
VALUES ($1, $2)
ON CONFLICT (operator_id) DO UPDATE SET last_id = GREATEST(notification_read.last_id, EXCLUDED.last_id)`
	if _, err := repo.db.Exec(query, operatorID, lastID); err != nil {
		return errors.Wrap(err, "setting read watermark")
	}
	return nil
}
