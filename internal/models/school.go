package models

import "time"

// Subscription tiers available to a school.
const (
	SubscriptionFree    = "FREE"
	SubscriptionBasic   = "BASIC"
	SubscriptionPremium = "PREMIUM"
)

// School represents a tenant. Every non-platform user belongs to exactly one
// school and data access for school admins is partitioned along this boundary.
type School struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	Name                  string     `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Slug                  string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Email                 string     `gorm:"size:255;not null" json:"email"`
	PhoneNumber           string     `gorm:"size:20" json:"phone_number"`
	Address               string     `gorm:"type:text" json:"address"`
	District              string     `gorm:"size:100" json:"district"`
	Region                string     `gorm:"size:100" json:"region"`
	RegistrationNumber    string     `gorm:"size:100;index" json:"registration_number"`
	IsActive              bool       `gorm:"not null;default:true" json:"is_active"`
	SubscriptionType      string     `gorm:"size:20;not null;default:FREE" json:"subscription_type"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Users                 []User     `json:"-"`
}

// TableName keeps the relational schema name stable.
func (School) TableName() string { return "schools" }

// ValidSubscriptionType reports whether the tier is one of the known values.
func ValidSubscriptionType(tier string) bool {
	switch tier {
	case SubscriptionFree, SubscriptionBasic, SubscriptionPremium:
		return true
	default:
		return false
	}
}
