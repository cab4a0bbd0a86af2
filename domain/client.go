package domain

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	PractitionerID uint           `gorm:"column:practitioner_id;index;not null" json:"practitioner_id"`
	FirstName      string         `gorm:"column:first_name;not null" json:"first_name"`
	LastName       string         `gorm:"column:last_name;not null" json:"last_name"`
	Email          string         `gorm:"column:email;index;not null" json:"email"`
	Phone          string         `gorm:"column:phone" json:"phone"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Client) TableName() string {
	return "clients"
}

// ClientSummary is the directory search result shape.
type ClientSummary struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (c ClientSummary) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Client) Summary() ClientSummary {
	return ClientSummary{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}
}

// ClientBinding is the single client identity a wizard session resolves to.
type ClientBinding struct {
	ClientID    uint64 `json:"client_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// ClientFilter narrows the directory list endpoint.
type ClientFilter struct {
	Name  string
	Email string
}

type ClientPage struct {
	Items    []ClientSummary `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
