package models

import (
	"context"
	"errors"
	"time"

	"github.com/odouglasrocha/apiplano/config"
	"github.com/odouglasrocha/apiplano/utils"
)

// Recipient is a report e-mail recipient. The address is stored
// encrypted; API responses only ever carry the alias.
type Recipient struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Alias     string    `gorm:"size:100;not null" json:"alias"`
	EmailEnc  string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRecipient struct {
	Alias string `json:"alias" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// CreateRecipient encrypts and stores a recipient address.
func CreateRecipient(ctx context.Context, input *NewRecipient) (*Recipient, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}

	enc, err := utils.EncryptEmail(input.Email)
	if err != nil {
		return nil, err
	}

	recipient := Recipient{
		Alias:    input.Alias,
		EmailEnc: enc,
	}
	if err := db.WithContext(ctx).Create(&recipient).Error; err != nil {
		return nil, err
	}
	return &recipient, nil
}

// GetRecipients lists recipients ordered by alias.
func GetRecipients(ctx context.Context) ([]*Recipient, error) {
	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}

	var recipients []*Recipient
	err := db.WithContext(ctx).Order("alias").Find(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

// DecryptRecipientEmails resolves recipient IDs to clear addresses for
// one send. Unknown IDs are skipped; a decryption failure aborts, since
// it means the RECIPIENTS_SECRET no longer matches the stored rows.
func DecryptRecipientEmails(ctx context.Context, ids []int) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := config.GetDB()
	if db == nil {
		return nil, errors.New("database not ready")
	}

	var recipients []*Recipient
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&recipients).Error
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(recipients))
	for _, r := range recipients {
		email, err := utils.DecryptEmail(r.EmailEnc)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, nil
}
