package data

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	ActivityRegister        = "register"
	ActivityLogin           = "login"
	ActivityLogout          = "logout"
	ActivityProfileUpdate   = "profile_update"
	ActivityPhotoUpload     = "photo_upload"
	ActivityPasswordChange  = "password_change"
	ActivityDocumentsUpload = "documents_upload"
	ActivityApprove         = "approve"
	ActivityReject          = "reject"
	ActivityDeleteRequest   = "delete_request"
	ActivityDeleteConfirm   = "delete_confirm"

	ActivityStatusOK     = "ok"
	ActivityStatusFailed = "failed"

	defaultActivityLimit = 20

	insertActivitySQL = `INSERT INTO activity (motorista_id, action, detail, status, created_at)
		VALUES (?, ?, ?, ?, ?)`

	selectActivitySQL = `SELECT id, motorista_id, action, detail, status, created_at
		FROM activity
		WHERE (? = '' OR motorista_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
)

// Activity is a mutating command run against the backend.
type Activity struct {
	ID          int64     `json:"id" yaml:"id"`
	MotoristaID string    `json:"motorista_id,omitempty" yaml:"motorista_id,omitempty"`
	Action      string    `json:"action" yaml:"action"`
	Detail      string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// SaveActivity appends a to the log and sets its ID.
func SaveActivity(db *sql.DB, a *Activity) error {
	if db == nil {
		return errDBNotInitialized
	}
	if a == nil || a.Action == "" {
		return errors.New("activity with action required")
	}
	if a.Status == "" {
		a.Status = ActivityStatusOK
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := db.Exec(insertActivitySQL, a.MotoristaID, a.Action, a.Detail, a.Status, a.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get activity id: %w", err)
	}
	return nil
}

// ListActivity returns the newest entries first. An empty motoristaID lists
// every driver.
func ListActivity(db *sql.DB, motoristaID string, limit int) ([]*Activity, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	rows, err := db.Query(selectActivitySQL, motoristaID, motoristaID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	list := make([]*Activity, 0)
	for rows.Next() {
		a := &Activity{}
		var ms int64
		if err := rows.Scan(&a.ID, &a.MotoristaID, &a.Action, &a.Detail, &a.Status, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		a.CreatedAt = time.UnixMilli(ms).UTC()
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity rows: %w", err)
	}
	return list, nil
}
