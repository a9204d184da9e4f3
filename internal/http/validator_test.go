package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGrau(t *testing.T) {
	tests := []struct {
		name  string
		grau  string
		valid bool
	}{
		{"canonical label", "Aprendiz", true},
		{"lowercase", "companheiro", true},
		{"uppercase", "MESTRE", true},
		{"padded", "  mestre  ", true},
		{"unknown degree", "arquiteto", false},
		{"empty via required", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := uploadReq{
				Titulo:     "t",
				Autor:      "a",
				Genero:     "g",
				Descricao:  "d",
				GrauMinimo: tt.grau,
			}
			errs := ValidateStruct(req)
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				require.NotEmpty(t, errs)
				assert.Equal(t, "grauMinimo", errs[0].Field)
			}
		})
	}
}

func TestValidateStructMessages(t *testing.T) {
	errs := ValidateStruct(loginReq{})
	require.Len(t, errs, 2)
	assert.Equal(t, "username", errs[0].Field)
	assert.Equal(t, "Username is required", errs[0].Message)
	assert.Equal(t, "password", errs[1].Field)
}
