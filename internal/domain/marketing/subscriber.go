package marketing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubscriberStatusSubscribed   = "subscribed"
	SubscriberStatusUnsubscribed = "unsubscribed"
)

type Subscriber struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Status         string     `gorm:"column:status;not null;default:subscribed;index" json:"status"`
	Source         string     `gorm:"column:source" json:"source,omitempty"`
	SubscribedAt   time.Time  `gorm:"column:subscribed_at;not null" json:"subscribed_at"`
	UnsubscribedAt *time.Time `gorm:"column:unsubscribed_at" json:"unsubscribed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (Subscriber) TableName() string { return "subscriber" }

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
