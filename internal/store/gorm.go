package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"backend/internal/orders"
)

// Gorm is the relational implementation of the engine store interfaces,
// mirroring the document-store one. Production deployments run it against
// PostgreSQL; tests open an in-memory SQLite database.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an existing connection and migrates the order, offer and
// product tables.
func NewGorm(db *gorm.DB) (*Gorm, error) {
	if err := db.AutoMigrate(&offerRow{}, &productRow{}, &orderRow{}, &orderItemRow{}); err != nil {
		return nil, err
	}
	return &Gorm{db: db}, nil
}

// OpenPostgres connects to a PostgreSQL database by URL.
func OpenPostgres(databaseURL string) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewGorm(db)
}

// OpenSQLite opens a SQLite database at path; ":memory:" gives a throwaway
// in-process database.
func OpenSQLite(path string) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewGorm(db)
}

type offerRow struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	Type      string `gorm:"not null"`
	Value     float64
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (offerRow) TableName() string { return "offers" }

type productRow struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Price     float64
	Stock     int `gorm:"not null"`
	Category  string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (productRow) TableName() string { return "products" }

type orderRow struct {
	ID              uint `gorm:"primaryKey"`
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Subtotal        float64
	Discount        float64
	Total           float64
	OfferCode       string
	Status          string         `gorm:"not null;default:'pending'"`
	Items           []orderItemRow `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time
}

func (orderRow) TableName() string { return "orders" }

type orderItemRow struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID string
	Name      string
	Price     float64
	Quantity  int
}

func (orderItemRow) TableName() string { return "order_items" }

// FindActive resolves a stored offer by exact code match, restricted to
// active offers.
func (s *Gorm) FindActive(ctx context.Context, code string) (*orders.Offer, error) {
	var row offerRow
	err := s.db.WithContext(ctx).Where("code = ? AND active = ?", code, true).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, orders.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &orders.Offer{Code: row.Code, Type: row.Type, Value: row.Value}, nil
}

// Insert persists a finalized order with its line items.
func (s *Gorm) Insert(ctx context.Context, order *orders.Order) (string, error) {
	row := orderRow{
		CustomerName:    order.Customer.Name,
		CustomerPhone:   order.Customer.Phone,
		CustomerAddress: order.Customer.Address,
		Subtotal:        order.Subtotal,
		Discount:        order.Discount,
		Total:           order.Total,
		OfferCode:       order.OfferCode,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		row.Items = append(row.Items, orderItemRow{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(row.ID), 10), nil
}

// DecrementStock runs a single UPDATE with a stock = stock - ? expression so
// the decrement is atomic at the row level. No floor is applied and a missing
// product id affects zero rows without error.
func (s *Gorm) DecrementStock(ctx context.Context, productID string, quantity int) error {
	id, err := strconv.ParseUint(productID, 10, 64)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).
		Model(&productRow{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity)).
		Error
}
