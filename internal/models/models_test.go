package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestVariantDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		variant ProductVariant
		want    string
	}{
		{
			name: "two options",
			variant: ProductVariant{
				Option1Value: strPtr("XL"),
				Option2Value: strPtr("Black"),
			},
			want: "XL Black",
		},
		{
			name: "three options",
			variant: ProductVariant{
				Option1Value: strPtr("M"),
				Option2Value: strPtr("Red"),
				Option3Value: strPtr("Cotton"),
			},
			want: "M Red Cotton",
		},
		{
			name: "gap in slots",
			variant: ProductVariant{
				Option2Value: strPtr("Blue"),
			},
			want: "Blue",
		},
		{
			name: "empty strings skipped",
			variant: ProductVariant{
				Option1Value: strPtr(""),
				Option2Value: strPtr("Large"),
			},
			want: "Large",
		},
		{
			name:    "no options",
			variant: ProductVariant{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.variant.DisplayName())
		})
	}
}

func TestInsufficientStockError(t *testing.T) {
	err := &InsufficientStockError{VariantID: 3, Available: 1, Requested: 2}

	assert.Equal(t, "insufficient stock for variant 3: available=1, requested=2", err.Error())

	var target *InsufficientStockError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, int64(3), target.VariantID)
}

func TestVariantNotFoundError(t *testing.T) {
	err := &VariantNotFoundError{VariantID: 12}

	assert.Equal(t, "variant not found: 12", err.Error())

	wrapped := errors.New("outer: " + err.Error())
	var target *VariantNotFoundError
	assert.False(t, errors.As(wrapped, &target))
}
