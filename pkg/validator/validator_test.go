package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRef(t *testing.T) {
	assert.NoError(t, PaymentRef("123456789012"))

	for _, ref := range []string{"", "12345678901", "1234567890123", "12345678901a", "abc", " 23456789012"} {
		assert.ErrorIs(t, PaymentRef(ref), ErrPaymentRef, ref)
	}
}

func TestValidate_PayrefTag(t *testing.T) {
	type payload struct {
		Ref string `validate:"payref"`
	}

	require.NoError(t, Validate(context.Background(), payload{Ref: "123456789012"}))

	err := Validate(context.Background(), payload{Ref: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "12-digit")
}

func TestValidate_Required(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}

	require.NoError(t, Validate(context.Background(), payload{Name: "x"}))

	err := Validate(context.Background(), payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrFieldRequired)
}
