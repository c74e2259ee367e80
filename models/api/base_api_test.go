package apimodels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Email  string `json:"email" validate:"required,email"`
	Order  int    `json:"step_order" validate:"min=0"`
	Hidden string `json:"-" validate:"max=3"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Email: "ann@corp.local"}))
	require.EqualError(t, ValidateStruct(sample{}), "email is required")
	require.EqualError(t, ValidateStruct(sample{Email: "ann"}), "email is not a valid email")
	require.EqualError(t, ValidateStruct(sample{Email: "ann@corp.local", Order: -1}), "step_order is invalid (min)")
}

func TestPaginationGetPage(t *testing.T) {
	page, limit := Pagination{}.GetPage()
	require.Equal(t, 1, page)
	require.Equal(t, 10, limit)

	page, limit = Pagination{Page: 3, Limit: 500}.GetPage()
	require.Equal(t, 3, page)
	require.Equal(t, 100, limit)
}
