package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Numeric is a decimal column without a fixed precision or scale. Postgres
// stores it as numeric; other dialects store the decimal string as text so
// no digits are lost to floating point affinity.
type Numeric struct {
	decimal.Decimal
}

func (Numeric) GormDataType() string {
	return "numeric"
}

func (Numeric) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return numericColumnType(db)
}

// NullNumeric is the nullable form of Numeric.
type NullNumeric struct {
	decimal.NullDecimal
}

func (NullNumeric) GormDataType() string {
	return "numeric"
}

func (NullNumeric) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return numericColumnType(db)
}

func numericColumnType(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "numeric"
	}
	return "text"
}
