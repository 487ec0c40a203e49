package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Attribute names shared by the JSON contract and every store backend.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldBrand     = "brand"
	FieldSize      = "size"
	FieldColor     = "color"
	FieldPrice     = "price"
	FieldWishlist  = "wishlist"
	FieldNotes     = "notes"
	FieldLink      = "link"
	FieldReference = "reference"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// UpdatableFields is the whitelist of client-writable fields. The order is
// the order in which update assignments are generated.
var UpdatableFields = []string{
	FieldName,
	FieldBrand,
	FieldSize,
	FieldColor,
	FieldPrice,
	FieldWishlist,
	FieldNotes,
	FieldLink,
	FieldReference,
}

// StringFields are the whitelisted fields that hold free text.
var StringFields = []string{
	FieldName,
	FieldBrand,
	FieldSize,
	FieldColor,
	FieldNotes,
	FieldLink,
	FieldReference,
}

var (
	ErrInvalidPrice    = errors.New("invalid price value")
	ErrInvalidWishlist = errors.New("wishlist must be a boolean")
	ErrInvalidString   = errors.New("must be a string")
)

// ClothingItem is one wishlist record as persisted by the repository.
// Optional attributes carry omitempty so that "not set" is never stored as "".
type ClothingItem struct {
	ID        string   `json:"id" dynamodbav:"id"`
	Name      string   `json:"name,omitempty" dynamodbav:"name,omitempty"`
	Brand     string   `json:"brand,omitempty" dynamodbav:"brand,omitempty"`
	Size      string   `json:"size,omitempty" dynamodbav:"size,omitempty"`
	Color     string   `json:"color,omitempty" dynamodbav:"color,omitempty"`
	Price     *float64 `json:"price,omitempty" dynamodbav:"price,omitempty"`
	Wishlist  bool     `json:"wishlist" dynamodbav:"wishlist"`
	Notes     string   `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	Link      string   `json:"link,omitempty" dynamodbav:"link,omitempty"`
	Reference string   `json:"reference,omitempty" dynamodbav:"reference,omitempty"`
	CreatedAt string   `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string   `json:"updatedAt" dynamodbav:"updatedAt"`
}

// NewClothingItem builds a fresh item from sanitized fields.
func NewClothingItem(id string, fields FieldSet, timestamp string) *ClothingItem {
	item := &ClothingItem{
		ID:        id,
		CreatedAt: timestamp,
		UpdatedAt: timestamp,
	}
	item.Apply(fields)
	return item
}

// Apply copies sanitized fields onto the item. It never touches id or the
// timestamps.
func (c *ClothingItem) Apply(fields FieldSet) {
	for field, value := range fields {
		switch field {
		case FieldName:
			c.Name = value.(string)
		case FieldBrand:
			c.Brand = value.(string)
		case FieldSize:
			c.Size = value.(string)
		case FieldColor:
			c.Color = value.(string)
		case FieldPrice:
			price := value.(float64)
			c.Price = &price
		case FieldWishlist:
			c.Wishlist = value.(bool)
		case FieldNotes:
			c.Notes = value.(string)
		case FieldLink:
			c.Link = value.(string)
		case FieldReference:
			c.Reference = value.(string)
		}
	}
}

// Payload is a decoded JSON object as received from a client. Values keep
// their JSON types (string, float64, bool, nil, ...).
type Payload map[string]interface{}

// Has reports whether the key is present, even with a null value.
func (p Payload) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// HasAny reports whether at least one of the fields is present.
func (p Payload) HasAny(fields []string) bool {
	for _, field := range fields {
		if p.Has(field) {
			return true
		}
	}
	return false
}

// Supplied returns the value when the field carries something other than
// null or the empty string.
func (p Payload) Supplied(field string) (interface{}, bool) {
	value, ok := p[field]
	if !ok || value == nil {
		return nil, false
	}
	if s, isString := value.(string); isString && s == "" {
		return nil, false
	}
	return value, true
}

// FieldSet holds whitelisted, coerced values keyed by field name.
// Strings are string, price is float64 and wishlist is bool.
type FieldSet map[string]interface{}

// Fields returns the keys in whitelist order.
func (f FieldSet) Fields() []string {
	fields := make([]string, 0, len(f))
	for _, field := range UpdatableFields {
		if _, ok := f[field]; ok {
			fields = append(fields, field)
		}
	}
	return fields
}

// Sanitize filters a payload to the whitelist, drops null and empty-string
// values and coerces price and wishlist. Non-whitelisted keys are ignored.
func Sanitize(p Payload) (FieldSet, error) {
	fields := FieldSet{}
	for _, field := range UpdatableFields {
		raw, ok := p.Supplied(field)
		if !ok {
			continue
		}

		switch field {
		case FieldPrice:
			price, ok := CoercePrice(raw)
			if !ok {
				return nil, ErrInvalidPrice
			}
			fields[field] = price
		case FieldWishlist:
			wishlist, ok := CoerceWishlist(raw)
			if !ok {
				return nil, ErrInvalidWishlist
			}
			fields[field] = wishlist
		default:
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s %w", field, ErrInvalidString)
			}
			fields[field] = s
		}
	}
	return fields, nil
}

// CoercePrice converts numbers and numeric strings to a finite, non-negative
// price.
func CoercePrice(value interface{}) (float64, bool) {
	var price float64
	switch v := value.(type) {
	case float64:
		price = v
	case float32:
		price = float64(v)
	case int:
		price = float64(v)
	case int64:
		price = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		price = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		price = f
	default:
		return 0, false
	}

	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, false
	}
	return price, true
}

// CoerceWishlist accepts booleans, "true"/"false", "1"/"0" and the numbers
// 1 and 0.
func CoerceWishlist(value interface{}) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	case float64:
		return numericFlag(v)
	case int:
		return numericFlag(float64(v))
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return numericFlag(f)
		}
	}
	return false, false
}

func numericFlag(f float64) (bool, bool) {
	switch f {
	case 1:
		return true, true
	case 0:
		return false, true
	}
	return false, false
}
