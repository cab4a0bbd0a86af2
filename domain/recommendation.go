package domain

import "time"

const (
	StatusDraft     = "draft"
	StatusNew       = "new"
	StatusViewed    = "viewed"
	StatusPurchased = "purchased"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusNew, StatusViewed, StatusPurchased:
		return true
	}
	return false
}

// Recommendation is the persisted protocol a practitioner submits for one
// client. Prices and names are snapshots taken at submission time; the record
// is immutable afterwards except for its status stamps.
type Recommendation struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PractitionerID uint    `gorm:"column:practitioner_id;index;not null" json:"practitioner_id"`
	ClientID       uint64  `gorm:"column:client_id;index;not null" json:"client_id"`
	Name           string  `gorm:"column:name;not null" json:"name"`
	Description    string  `gorm:"column:description;type:text" json:"description"`
	TotalPrice     float64 `gorm:"column:total_price;type:numeric" json:"total_price"`
	// CommissionAmount is assigned server-side at creation and never
	// recomputed.
	CommissionAmount float64              `gorm:"column:commission_amount;type:numeric" json:"commission_amount"`
	Status           string               `gorm:"column:status;default:new" json:"status"`
	Items            []RecommendationItem `gorm:"foreignKey:RecommendationID;constraint:OnDelete:CASCADE" json:"items"`
	// ShareCode is derived from the id on the way out, not stored.
	ShareCode   string     `gorm:"-" json:"share_code,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ViewedAt    *time.Time `gorm:"column:viewed_at" json:"viewed_at,omitempty"`
	PurchasedAt *time.Time `gorm:"column:purchased_at" json:"purchased_at,omitempty"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

type RecommendationItem struct {
	ID               uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RecommendationID uint64  `gorm:"column:recommendation_id;index;not null" json:"recommendation_id"`
	ProductID        uint64  `gorm:"column:product_id;not null" json:"product_id"`
	VariantID        uint64  `gorm:"column:variant_id" json:"variant_id"`
	ProductName      string  `gorm:"column:product_name;type:text" json:"product_name"`
	ImageURL         string  `gorm:"column:image_url;type:text" json:"image_url"`
	Quantity         int     `gorm:"column:quantity;not null" json:"quantity"`
	DailyDosage      string  `gorm:"column:daily_dosage;type:text" json:"daily_dosage"`
	Notes            string  `gorm:"column:notes;type:text" json:"notes"`
	UnitPrice        float64 `gorm:"column:unit_price;type:numeric" json:"unit_price"`
}

func (RecommendationItem) TableName() string {
	return "recommendation_items"
}

// RecommendationSummary is the list-view row.
type RecommendationSummary struct {
	ID               uint64    `json:"id"`
	ClientID         uint64    `json:"client_id"`
	Name             string    `json:"name"`
	TotalPrice       float64   `json:"total_price"`
	CommissionAmount float64   `json:"commission_amount"`
	Status           string    `json:"status"`
	ItemCount        int       `json:"item_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type RecommendationPage struct {
	Items    []RecommendationSummary `json:"items"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}
