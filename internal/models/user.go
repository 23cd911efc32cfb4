package models

import "time"

type User struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Subject   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Email     string    `gorm:"type:varchar(255);index" json:"email"`
	AvatarURL string    `gorm:"type:text" json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Memberships []WorkspaceMember `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
