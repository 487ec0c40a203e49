package validators

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"clothing-api/domain/core/entities"
)

const (
	MessageInvalidPrice    = "Invalid price value"
	MessageInvalidWishlist = "wishlist must be a boolean"
)

// Result is the outcome of a payload check. Message is empty when Valid.
type Result struct {
	Valid   bool
	Message string
}

// createView and updateView are coerced projections of a payload and share
// one layout so either converts to the other. Field order matters: missing
// fields are reported in declaration order.
type createView struct {
	Name      interface{} `json:"name" validate:"required,text"`
	Brand     interface{} `json:"brand" validate:"required,text"`
	Size      interface{} `json:"size" validate:"required,text"`
	Color     interface{} `json:"color" validate:"required,text"`
	Price     *float64    `json:"price" validate:"required,gte=0"`
	Wishlist  interface{} `json:"wishlist" validate:"omitempty,flag"`
	Notes     interface{} `json:"notes" validate:"omitempty,text"`
	Link      interface{} `json:"link" validate:"omitempty,text"`
	Reference interface{} `json:"reference" validate:"omitempty,text"`
}

type updateView struct {
	Name      interface{} `json:"name" validate:"omitempty,text"`
	Brand     interface{} `json:"brand" validate:"omitempty,text"`
	Size      interface{} `json:"size" validate:"omitempty,text"`
	Color     interface{} `json:"color" validate:"omitempty,text"`
	Price     *float64    `json:"price" validate:"omitempty,gte=0"`
	Wishlist  interface{} `json:"wishlist" validate:"omitempty,flag"`
	Notes     interface{} `json:"notes" validate:"omitempty,text"`
	Link      interface{} `json:"link" validate:"omitempty,text"`
	Reference interface{} `json:"reference" validate:"omitempty,text"`
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("text", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.String
	})
	_ = v.RegisterValidation("flag", func(fl validator.FieldLevel) bool {
		_, ok := entities.CoerceWishlist(fl.Field().Interface())
		return ok
	})
	return v
}

// ValidatePayload checks a create (requireAll) or update payload. It never
// touches the store.
func ValidatePayload(p entities.Payload, requireAll bool) Result {
	view := project(p)

	var err error
	if requireAll {
		err = validate.Struct(createView(view))
	} else {
		err = validate.Struct(view)
	}
	if err == nil {
		return Result{Valid: true}
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Message: err.Error()}
	}
	return Result{Message: describe(fieldErrors)}
}

// project copies supplied payload values into a view. Null and empty-string
// values stay nil; price is coerced, with NaN standing in for garbage so
// the gte rule rejects it.
func project(p entities.Payload) updateView {
	supplied := func(field string) interface{} {
		value, _ := p.Supplied(field)
		return value
	}

	view := updateView{
		Name:      supplied(entities.FieldName),
		Brand:     supplied(entities.FieldBrand),
		Size:      supplied(entities.FieldSize),
		Color:     supplied(entities.FieldColor),
		Wishlist:  supplied(entities.FieldWishlist),
		Notes:     supplied(entities.FieldNotes),
		Link:      supplied(entities.FieldLink),
		Reference: supplied(entities.FieldReference),
	}

	if raw, ok := p.Supplied(entities.FieldPrice); ok {
		price, valid := entities.CoercePrice(raw)
		if !valid {
			price = math.NaN()
		}
		view.Price = &price
	}
	return view
}

// describe turns field errors into the single client message, checking
// missing fields first, then price, wishlist and string types.
func describe(fieldErrors validator.ValidationErrors) string {
	var missing []string
	byField := make(map[string]validator.FieldError, len(fieldErrors))
	for _, fe := range fieldErrors {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			continue
		}
		if _, seen := byField[fe.Field()]; !seen {
			byField[fe.Field()] = fe
		}
	}

	if len(missing) > 0 {
		return "Missing required fields: " + strings.Join(missing, ", ")
	}
	if _, ok := byField[entities.FieldPrice]; ok {
		return MessageInvalidPrice
	}
	if _, ok := byField[entities.FieldWishlist]; ok {
		return MessageInvalidWishlist
	}
	for _, field := range entities.StringFields {
		if _, ok := byField[field]; ok {
			return fmt.Sprintf("%s must be a string", field)
		}
	}
	return fieldErrors[0].Error()
}
