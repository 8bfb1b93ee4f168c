package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"streamvault/models"
)

// ActivityRepository appends admin audit records. The table is append-only:
// there are deliberately no update or delete methods.
type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert appends an activity record, assigning its id and timestamp.
func (r *ActivityRepository) Insert(a *models.AdminActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(`INSERT INTO admin_activities
		(id, actor, action, resource_type, resource_id, description, detail,
		 success, error_message, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Actor, a.Action, a.ResourceType, a.ResourceID, a.Description, a.Detail,
		a.Success, a.ErrorMessage, a.IPAddress, a.UserAgent, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert admin activity: %w", err)
	}
	return nil
}

// List returns a page of activities, newest first, plus the total count.
func (r *ActivityRepository) List(page, limit int) ([]models.AdminActivity, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM admin_activities`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(`SELECT id, actor, action, resource_type, resource_id, description,
		detail, success, error_message, ip_address, user_agent, created_at
		FROM admin_activities ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list admin activities: %w", err)
	}
	defer rows.Close()

	var activities []models.AdminActivity
	for rows.Next() {
		var a models.AdminActivity
		if err := rows.Scan(&a.ID, &a.Actor, &a.Action, &a.ResourceType, &a.ResourceID,
			&a.Description, &a.Detail, &a.Success, &a.ErrorMessage,
			&a.IPAddress, &a.UserAgent, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		activities = append(activities, a)
	}
	return activities, total, rows.Err()
}
