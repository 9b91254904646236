package service

import (
	"fmt"
)

// IngestRecord is the canonical, shape-independent form of an ingestion
// request. Empty string fields mean absent; nil maps mean absent.
type IngestRecord struct {
	ContratoNro   string
	Tipo          string
	ProductorCUIT string
	HashSHA256    string
	Metadata      map[string]interface{}
	Referencias   map[string]interface{}
	ContentText   *string
}

// Normalize reconciles the two accepted payload shapes into one IngestRecord.
//
// Flat shape: contrato_nro, tipo, productor_cuit?, hash_sha256?, metadata?,
// referencias?, content_text? at the top level.
//
// Nested/ERP shape: tipo at the top level, contrato_nro and productor_cuit
// under referencias, hash_sha256 under origen, plus optional datos and
// content_text. When no top-level metadata is given, metadata is synthesized
// from origen and datos (absent when neither is present).
//
// Resolution is first-match-wins: top-level fields shadow nested ones.
func Normalize(raw interface{}) (*IngestRecord, error) {
	payload, ok := raw.(map[string]interface{})
	if !ok {
		return nil, ErrInvalidPayload
	}

	referencias, err := objectField(payload, "referencias")
	if err != nil {
		return nil, err
	}
	origen, err := objectField(payload, "origen")
	if err != nil {
		return nil, err
	}

	contrato := stringField(payload, "contrato_nro")
	if contrato == "" {
		contrato = stringField(referencias, "contrato_nro")
	}
	tipo := stringField(payload, "tipo")

	var missing []string
	if contrato == "" {
		missing = append(missing, "contrato_nro")
	}
	if tipo == "" {
		missing = append(missing, "tipo")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}

	cuit := stringField(payload, "productor_cuit")
	if cuit == "" {
		cuit = stringField(referencias, "productor_cuit")
	}

	hash := stringField(payload, "hash_sha256")
	if hash == "" {
		hash = stringField(origen, "hash_sha256")
	}

	metadata, err := objectField(payload, "metadata")
	if err != nil {
		return nil, err
	}
	if _, present := payload["metadata"]; !present || payload["metadata"] == nil {
		metadata = synthesizeMetadata(payload, origen)
	}

	rec := &IngestRecord{
		ContratoNro:   contrato,
		Tipo:          tipo,
		ProductorCUIT: cuit,
		HashSHA256:    hash,
		Metadata:      metadata,
		Referencias:   referencias,
	}

	if text, present := payload["content_text"]; present && text != nil {
		s, ok := text.(string)
		if !ok {
			return nil, fmt.Errorf("%w: content_text debe ser texto", ErrInvalidPayload)
		}
		rec.ContentText = &s
	}

	return rec, nil
}

// synthesizeMetadata builds the metadata blob for ERP payloads that carry no
// explicit metadata: origen and datos are folded in when present, and the
// result is nil (absent) when both are missing.
func synthesizeMetadata(payload, origen map[string]interface{}) map[string]interface{} {
	composed := make(map[string]interface{})
	if origen != nil {
		composed["origen"] = origen
	}
	if datos, present := payload["datos"]; present && datos != nil {
		composed["datos"] = datos
	}

	if len(composed) == 0 {
		return nil
	}

	return composed
}

// stringField returns the named field when it holds a non-empty string, ""
// otherwise.
func stringField(obj map[string]interface{}, key string) string {
	if obj == nil {
		return ""
	}

	if s, ok := obj[key].(string); ok {
		return s
	}

	return ""
}

// objectField returns the named field as an object, nil when absent or null,
// and an error when present with a non-object value.
func objectField(obj map[string]interface{}, key string) (map[string]interface{}, error) {
	value, present := obj[key]
	if !present || value == nil {
		return nil, nil
	}

	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s debe ser objeto", ErrInvalidPayload, key)
	}

	return m, nil
}
