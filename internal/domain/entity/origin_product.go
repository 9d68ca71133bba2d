package entity

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// RegistrationStatus tracks whether an OriginProduct has ever been
// materialized into a CanonicalProduct. It is stored as an integer and
// never regresses from Registered back to Unregistered on upsert (§4.1).
type RegistrationStatus int

const (
	RegistrationStatusUnregistered         RegistrationStatus = 1
	RegistrationStatusRegistered           RegistrationStatus = 2
	RegistrationStatusPreviouslyRegistered RegistrationStatus = 3
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationStatusUnregistered, RegistrationStatusRegistered, RegistrationStatusPreviouslyRegistered:
		return true
	default:
		return false
	}
}

func (s RegistrationStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *RegistrationStatus) Scan(value interface{}) error {
	if value == nil {
		*s = RegistrationStatusUnregistered
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = RegistrationStatus(v)
	case int32:
		*s = RegistrationStatus(v)
	case int:
		*s = RegistrationStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into RegistrationStatus", value)
	}
	return nil
}

// OriginProduct is a raw harvested Rakumart/1688 listing (table
// products_origin). product_id is the stable upstream identity and is
// never regenerated.
type OriginProduct struct {
	ProductID string `json:"product_id" db:"product_id"`

	TitleC string `json:"title_c" db:"title_c"`
	TitleT string `json:"title_t" db:"title_t"`

	MainCategory   string  `json:"main_category" db:"main_category"`
	MiddleCategory string  `json:"middle_category" db:"middle_category"`
	TypeTag        *string `json:"type_tag" db:"type_tag"`

	MonthlySales    *int64   `json:"monthly_sales" db:"monthly_sales"`
	WholesalePrice  *float64 `json:"wholesale_price" db:"wholesale_price"` // CNY
	Weight          *float64 `json:"weight" db:"weight"`                   // kg
	Length          *float64 `json:"length" db:"length"`
	Width           *float64 `json:"width" db:"width"`
	Height          *float64 `json:"height" db:"height"`
	Size            *int     `json:"size" db:"size"` // one of {30,60,80,100} or nil
	CreationDate    *time.Time `json:"creation_date" db:"creation_date"`
	RepurchaseRate  *float64 `json:"repurchase_rate" db:"repurchase_rate"`
	RatingScore     *float64 `json:"rating_score" db:"rating_score"`

	// DetailJSON is the filtered detail payload produced by
	// filterDetailJson (§4.2) — raw bytes, parsed lazily by the
	// materializer so the store itself stays schema-agnostic about it.
	DetailJSON []byte `json:"detail_json" db:"detail_json"`

	RegistrationStatus RegistrationStatus `json:"registration_status" db:"registration_status"`
	RCatID             JSONStringArray    `json:"r_cat_id" db:"r_cat_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate enforces the non-empty id / at-least-one-title invariant (§4.1).
func (p *OriginProduct) Validate() error {
	if p.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if p.TitleC == "" && p.TitleT == "" {
		return fmt.Errorf("at least one of title_c or title_t is required")
	}
	if !p.RegistrationStatus.Valid() {
		return fmt.Errorf("invalid registration_status: %d", p.RegistrationStatus)
	}
	return nil
}

// SizeKey maps the origin product's size bucket onto the pricing settings'
// domestic shipping cost key (§4.3 step 6), defaulting to "regular" for any
// size outside the known set, including nil.
func (p *OriginProduct) SizeKey() string {
	if p.Size == nil {
		return "regular"
	}
	switch *p.Size {
	case 30:
		return "regular"
	case 60:
		return "size60"
	case 80:
		return "size80"
	case 100:
		return "size100"
	default:
		return "regular"
	}
}
