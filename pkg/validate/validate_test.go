package validate_test

import (
	"strings"
	"testing"

	"github.com/Astemirdum/catalogue-service/pkg/validate"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name   *string `json:"name" validate:"required,notblank"`
	Rating string  `form:"rating" validate:"required,number"`
	Kind   string  `json:"kind,omitempty" validate:"omitempty,oneof=a b"`
}

func ptr[T any](v T) *T {
	return &v
}

func TestCustomValidator_Validate(t *testing.T) {
	t.Parallel()
	v := validate.NewCustomValidator()
	x := ptr("x")

	tests := []struct {
		name    string
		in      payload
		field   string
		message string
	}{
		{name: "ok", in: payload{Name: x, Rating: "4.5"}},
		{name: "ok. negative", in: payload{Name: x, Rating: "-1", Kind: "b"}},
		{name: "ok. exponent", in: payload{Name: x, Rating: "1e2"}},
		{name: "missing name", in: payload{Rating: "1"}, field: "name", message: `"name" is required`},
		{name: "empty name", in: payload{Name: ptr(""), Rating: "1"}, field: "name", message: `"name" is not allowed to be empty`},
		{name: "blank name", in: payload{Name: ptr(" \t"), Rating: "1"}, field: "name", message: `"name" is not allowed to be empty`},
		{name: "first error wins", in: payload{}, field: "name", message: `"name" is required`},
		{name: "missing rating", in: payload{Name: x}, field: "rating", message: `"rating" is required`},
		{name: "text rating", in: payload{Name: x, Rating: "4 stars"}, field: "rating", message: `"rating" must be a number`},
		{name: "overflowing rating", in: payload{Name: x, Rating: "1" + strings.Repeat("0", 400)}, field: "rating", message: `"rating" must be a number`},
		{name: "nan rating", in: payload{Name: x, Rating: "NaN"}, field: "rating", message: `"rating" must be a number`},
		{name: "inf rating", in: payload{Name: x, Rating: "-Inf"}, field: "rating", message: `"rating" must be a number`},
		{name: "oneof", in: payload{Name: x, Rating: "1", Kind: "c"}, field: "kind", message: `"kind" must be one of [a b]`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(tt.in)
			if tt.message == "" {
				require.NoError(t, err)
				return
			}
			var fe *validate.FieldError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tt.field, fe.Field)
			require.Equal(t, tt.message, fe.Error())
		})
	}
}
