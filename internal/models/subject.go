package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MaxNotificationFolderIDs caps the per-flavor folder lists in subject
// properties; pushing beyond the cap drops the oldest entry.
const MaxNotificationFolderIDs = 20

// SubjectProperties is the JSON configuration bag attached to a subject.
type SubjectProperties struct {
	EnrollWebhookURL       string `json:"enroll_webhook_url,omitempty"`
	GroupURL               string `json:"group_url,omitempty"`
	CheckSpreadsheetID     string `json:"check_spreadsheet_id,omitempty"`
	DriveFolderID          string `json:"drive_folder_id,omitempty"`
	HomeworkFilenameRegexp string `json:"homework_filename_regexp,omitempty"`

	CheckRegularNotificationFolderIDs      []string `json:"check_regular_notification_folder_ids,omitempty"`
	CheckSubscriptionNotificationFolderIDs []string `json:"check_subscription_notification_folder_ids,omitempty"`
	CheckAdditionalNotificationFolderIDs   []string `json:"check_additional_notification_folder_ids,omitempty"`
}

// Value implements driver.Valuer for JSON storage.
func (p SubjectProperties) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSON storage.
func (p *SubjectProperties) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = SubjectProperties{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported subject properties type %T", src)
	}
}

// PushRegularNotificationFolder appends a folder id to the regular
// notification list, keeping at most MaxNotificationFolderIDs entries.
func (p *SubjectProperties) PushRegularNotificationFolder(folderID string) {
	ids := append(p.CheckRegularNotificationFolderIDs, folderID)
	if overflow := len(ids) - MaxNotificationFolderIDs; overflow > 0 {
		ids = ids[overflow:]
	}
	p.CheckRegularNotificationFolderIDs = ids
}

// Subject is an academic subject products belong to.
type Subject struct {
	ID         int64             `db:"id" json:"id"`
	Name       string            `db:"name" json:"name"`
	EngName    string            `db:"eng_name" json:"eng_name"`
	Properties SubjectProperties `db:"properties" json:"properties"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}
