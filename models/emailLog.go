package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/odouglasrocha/apiplano/config"
	"gorm.io/datatypes"
)

type EmailStatus string

const (
	EmailStatusSuccess EmailStatus = "success"
	EmailStatusError   EmailStatus = "error"
)

// EmailLog is the audit trail of report deliveries. Recipient lists are
// stored as ID arrays, never addresses; the log stays useful after a key
// rotation and leaks nothing.
type EmailLog struct {
	ID        int            `gorm:"primary_key" json:"id"`
	Status    EmailStatus    `gorm:"type:enum('success','error');not null" json:"status"`
	ToIds     datatypes.JSON `json:"to_ids"`
	CcIds     datatypes.JSON `json:"cc_ids"`
	BccIds    datatypes.JSON `json:"bcc_ids"`
	MessageId string         `gorm:"size:100" json:"message_id"`
	Error     string         `gorm:"type:text" json:"error"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// LogEmailDelivery writes one audit entry. Callers record the outcome
// before answering the HTTP request that triggered the send.
func LogEmailDelivery(ctx context.Context, status EmailStatus, toIds, ccIds, bccIds []int, messageId string, sendErr error) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("database not ready")
	}

	entry := EmailLog{
		Status:    status,
		ToIds:     idsToJSON(toIds),
		CcIds:     idsToJSON(ccIds),
		BccIds:    idsToJSON(bccIds),
		MessageId: messageId,
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}

	return db.WithContext(ctx).Create(&entry).Error
}

// GetEmailLogs returns recent delivery audit entries, newest first.
func GetEmailLogs(ctx context.Context, limit int) ([]*EmailLog, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []*EmailLog
	err := db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func idsToJSON(ids []int) datatypes.JSON {
	if ids == nil {
		ids = []int{}
	}
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}
