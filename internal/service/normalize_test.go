package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(t *testing.T, raw string) interface{} {
	t.Helper()

	var p interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func TestNormalize_FlatAndNestedShapesEquivalent(t *testing.T) {
	flat, err := Normalize(payload(t, `{
		"contrato_nro": "C1",
		"tipo": "T",
		"productor_cuit": "X",
		"content_text": "hi"
	}`))
	require.NoError(t, err)

	nested, err := Normalize(payload(t, `{
		"tipo": "T",
		"referencias": {"contrato_nro": "C1", "productor_cuit": "X"},
		"content_text": "hi"
	}`))
	require.NoError(t, err)

	assert.Equal(t, flat.ContratoNro, nested.ContratoNro)
	assert.Equal(t, flat.Tipo, nested.Tipo)
	assert.Equal(t, flat.ProductorCUIT, nested.ProductorCUIT)
	require.NotNil(t, flat.ContentText)
	require.NotNil(t, nested.ContentText)
	assert.Equal(t, *flat.ContentText, *nested.ContentText)
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		missing []string
	}{
		{
			name:    "no contract number in either shape",
			raw:     `{"tipo": "T"}`,
			missing: []string{"contrato_nro"},
		},
		{
			name:    "no type",
			raw:     `{"contrato_nro": "C1"}`,
			missing: []string{"tipo"},
		},
		{
			name:    "empty object",
			raw:     `{}`,
			missing: []string{"contrato_nro", "tipo"},
		},
		{
			name:    "empty strings do not count",
			raw:     `{"contrato_nro": "", "tipo": ""}`,
			missing: []string{"contrato_nro", "tipo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(payload(t, tt.raw))

			var missingErr *MissingFieldsError
			require.ErrorAs(t, err, &missingErr)
			assert.Equal(t, tt.missing, missingErr.Fields)
		})
	}
}

func TestNormalize_RejectsNonObjectPayloads(t *testing.T) {
	for _, raw := range []string{`[1,2,3]`, `"text"`, `42`, `null`} {
		_, err := Normalize(payload(t, raw))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	}
}

func TestNormalize_TopLevelFieldsShadowNested(t *testing.T) {
	rec, err := Normalize(payload(t, `{
		"contrato_nro": "TOP",
		"tipo": "T",
		"productor_cuit": "TOP-CUIT",
		"hash_sha256": "tophash",
		"referencias": {"contrato_nro": "NESTED", "productor_cuit": "NESTED-CUIT"},
		"origen": {"hash_sha256": "nestedhash"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "TOP", rec.ContratoNro)
	assert.Equal(t, "TOP-CUIT", rec.ProductorCUIT)
	assert.Equal(t, "tophash", rec.HashSHA256)
}

func TestNormalize_HashFromOrigen(t *testing.T) {
	rec, err := Normalize(payload(t, `{
		"tipo": "T",
		"referencias": {"contrato_nro": "C1"},
		"origen": {"hash_sha256": "abc123"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "abc123", rec.HashSHA256)
}

func TestNormalize_MetadataSynthesis(t *testing.T) {
	t.Run("explicit metadata wins", func(t *testing.T) {
		rec, err := Normalize(payload(t, `{
			"contrato_nro": "C1",
			"tipo": "T",
			"metadata": {"k": "v"},
			"origen": {"sistema": "erp"}
		}`))
		require.NoError(t, err)

		assert.Equal(t, map[string]interface{}{"k": "v"}, rec.Metadata)
	})

	t.Run("synthesized from origen and datos", func(t *testing.T) {
		rec, err := Normalize(payload(t, `{
			"tipo": "T",
			"referencias": {"contrato_nro": "C1"},
			"origen": {"sistema": "erp"},
			"datos": {"campo": 1}
		}`))
		require.NoError(t, err)

		require.NotNil(t, rec.Metadata)
		assert.Equal(t, map[string]interface{}{"sistema": "erp"}, rec.Metadata["origen"])
		assert.Equal(t, map[string]interface{}{"campo": float64(1)}, rec.Metadata["datos"])
	})

	t.Run("absent when nothing to compose", func(t *testing.T) {
		rec, err := Normalize(payload(t, `{"contrato_nro": "C1", "tipo": "T"}`))
		require.NoError(t, err)

		assert.Nil(t, rec.Metadata)
	})
}

func TestNormalize_ReferenciasPassthrough(t *testing.T) {
	rec, err := Normalize(payload(t, `{
		"tipo": "T",
		"referencias": {"contrato_nro": "C1", "nota": "x"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"contrato_nro": "C1", "nota": "x"}, rec.Referencias)
}

func TestNormalize_WrongFieldTypes(t *testing.T) {
	for _, raw := range []string{
		`{"contrato_nro": "C1", "tipo": "T", "referencias": "oops"}`,
		`{"contrato_nro": "C1", "tipo": "T", "metadata": 5}`,
		`{"contrato_nro": "C1", "tipo": "T", "content_text": 7}`,
	} {
		_, err := Normalize(payload(t, raw))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	}
}
