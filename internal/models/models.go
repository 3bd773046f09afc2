package models

import (
	"github.com/shopspring/decimal"
)

// Admin and User are disjoint identity spaces: an email must be unique
// within each table, not across both.
type Admin struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Name         string `gorm:"not null"                 json:"name"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Name         string `gorm:"not null"                 json:"name"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Title       string          `gorm:"not null"                    json:"title"`
	Description string          `gorm:"not null"                    json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric"                json:"price"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   int64           `gorm:"autoCreateTime"              json:"created_at"`
	Sizes       []ProductSize   `gorm:"constraint:OnDelete:CASCADE" json:"sizes"`
	Colors      []ProductColor  `gorm:"constraint:OnDelete:CASCADE" json:"colors"`
}

// HasSizes reports whether unit prices resolve through a size variant
// instead of the base price field.
func (p *Product) HasSizes() bool { return len(p.Sizes) > 0 }

type ProductSize struct {
	ID        uint            `gorm:"primaryKey"     json:"id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Size      string          `gorm:"not null"       json:"size"`
	Price     decimal.Decimal `gorm:"type:numeric"   json:"price"`
}

type ProductColor struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	Color     string `gorm:"not null"       json:"color"`
	ImageURL  string `json:"image_url"`
}

type Post struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"not null"                 json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	CreatedAt   int64  `gorm:"autoCreateTime"           json:"created_at"`
}

type Review struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Rating    int    `gorm:"not null"       json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
}

type Comment struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Text      string `gorm:"not null"       json:"text"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
}

// CartItem carries a denormalized snapshot of the product at add time, so the
// cart survives later catalog edits. Adds append rows and never merge.
type CartItem struct {
	ID        uint            `gorm:"primaryKey"                 json:"id"`
	UserID    uint            `gorm:"index;not null"             json:"user_id"`
	ProductID uint            `gorm:"not null"                   json:"product_id"`
	Title     string          `json:"title"`
	ImageURL  string          `json:"image_url"`
	UnitPrice decimal.Decimal `gorm:"type:numeric"               json:"unit_price"`
	Quantity  uint            `gorm:"default:1;check:quantity>0" json:"quantity"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	CreatedAt int64           `gorm:"autoCreateTime"             json:"created_at"`
	Product   *Product        `gorm:"foreignKey:ProductID"       json:"product,omitempty"`
}

type Order struct {
	ID        uint            `gorm:"primaryKey"                  json:"id"`
	UserID    uint            `gorm:"index;not null"              json:"user_id"`
	Protocol  string          `gorm:"uniqueIndex;not null"        json:"protocol"`
	Total     decimal.Decimal `gorm:"type:numeric"                json:"total"`
	Status    string          `gorm:"not null"                    json:"status"`
	CreatedAt int64           `gorm:"not null"                    json:"created_at"`
	Items     []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem rows are owned by their order and only ever written together
// with it, inside the checkout transaction.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey"                 json:"id"`
	OrderID   uint            `gorm:"index;not null"             json:"order_id"`
	ProductID uint            `gorm:"not null"                   json:"product_id"`
	Quantity  uint            `gorm:"default:1;check:quantity>0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric"               json:"unit_price"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	LineTotal decimal.Decimal `gorm:"type:numeric"               json:"line_total"`
	Product   *Product        `gorm:"foreignKey:ProductID"       json:"product,omitempty"`
}

// All is the migration set shared by config.InitDB and the test helpers.
func All() []any {
	return []any{
		&Admin{}, &User{},
		&Product{}, &ProductSize{}, &ProductColor{},
		&Post{}, &Review{}, &Comment{},
		&CartItem{}, &Order{}, &OrderItem{},
	}
}
