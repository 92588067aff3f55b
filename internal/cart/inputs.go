package cart

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	pkgerrors "github.com/bazaarhq/bazaar-backend/pkg/errors"
	"github.com/bazaarhq/bazaar-backend/pkg/types"
)

const (
	minQuantity = 1
	maxQuantity = 99
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// AddItemInput carries the payload for adding a product to a cart.
// Quantity defaults to 1 when zero.
type AddItemInput struct {
	ProductID uuid.UUID      `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"min=1,max=99"`
	Variant   *types.Variant `json:"variant,omitempty"`
}

// UpdateQuantityInput carries the payload for an absolute quantity set.
// Quantities at or below zero delegate to removal, so only the upper bound is
// validated here.
type UpdateQuantityInput struct {
	ProductID uuid.UUID      `json:"productId" validate:"required"`
	Quantity  int            `json:"quantity" validate:"max=99"`
	Variant   *types.Variant `json:"variant,omitempty"`
}

// LockItemInput carries the payload for creating or extending a price lock.
// DurationHours defaults to the configured lock duration when zero. StoreRef
// accepts a bare identifier or an expanded store record serialized upstream;
// it is normalized to an identifier before storage.
type LockItemInput struct {
	ProductID     uuid.UUID      `json:"productId" validate:"required"`
	Quantity      int            `json:"quantity" validate:"min=1,max=99"`
	Variant       *types.Variant `json:"variant,omitempty"`
	DurationHours int            `json:"durationHours" validate:"min=0"`
	StoreRef      string         `json:"storeRef,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

func validateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			details := map[string]string{}
			for _, fieldErr := range errs {
				details[fieldErr.Field()] = fieldErr.Tag()
			}
			return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	return nil
}
