package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/indianleto/storefront-backend/internal/cart"
	"github.com/indianleto/storefront-backend/pkg/db"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type quotationRecord struct {
	QuoteID       string          `gorm:"column:quote_id;primaryKey"`
	CustomerName  string          `gorm:"column:customer_name"`
	CustomerPhone string          `gorm:"column:customer_phone"`
	CustomerEmail string          `gorm:"column:customer_email"`
	Cart          string          `gorm:"column:cart"`
	Notes         string          `gorm:"column:notes"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
}

func (quotationRecord) TableName() string {
	return "quotations"
}

// GormRepository stores quotations in the quotations table.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(conn *gorm.DB) (*GormRepository, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &GormRepository{db: conn}, nil
}

func (r *GormRepository) Create(ctx context.Context, q Quotation) error {
	record, err := toRecord(q)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return ErrDuplicateQuoteID
		}
		return fmt.Errorf("insert quotation: %w", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, quoteID string) (*Quotation, error) {
	var record quotationRecord
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quotation: %w", err)
	}
	q, err := fromRecord(record)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *GormRepository) List(ctx context.Context) ([]Quotation, error) {
	var records []quotationRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("quote_id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	out := make([]Quotation, 0, len(records))
	for _, record := range records {
		q, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func toRecord(q Quotation) (quotationRecord, error) {
	raw, err := cart.Encode(q.Cart)
	if err != nil {
		return quotationRecord{}, err
	}
	return quotationRecord{
		QuoteID:       q.QuoteID,
		CustomerName:  q.Customer.Name,
		CustomerPhone: q.Customer.Phone,
		CustomerEmail: q.Customer.Email,
		Cart:          raw,
		Notes:         q.Notes,
		TotalAmount:   q.TotalAmount,
		CreatedAt:     q.CreatedAt.UTC(),
	}, nil
}

func fromRecord(r quotationRecord) (Quotation, error) {
	items, err := cart.Decode(r.Cart)
	if err != nil {
		return Quotation{}, fmt.Errorf("quotation %s: %w", r.QuoteID, err)
	}
	return Quotation{
		QuoteID: r.QuoteID,
		Customer: Customer{
			Name:  r.CustomerName,
			Phone: r.CustomerPhone,
			Email: r.CustomerEmail,
		},
		Cart:        items,
		Notes:       r.Notes,
		TotalAmount: r.TotalAmount,
		CreatedAt:   r.CreatedAt.UTC(),
	}, nil
}
