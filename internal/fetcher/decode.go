package fetcher

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/everstacklabs/modelpick/internal/catalog"
	"github.com/everstacklabs/modelpick/internal/validate"
)

// /models response envelope. Records are kept raw so that a bad record can be
// reported by position.
type modelsResponse struct {
	Data *[]json.RawMessage `json:"data"`
}

// Decode parses a /models response body into a validated catalog. The first
// record that fails to map onto catalog.Model aborts decoding with a
// *catalog.SchemaError.
func (o *OpenRouter) Decode(body []byte) (catalog.Catalog, error) {
	records, err := splitRecords(body)
	if err != nil {
		return nil, err
	}

	models := make(catalog.Catalog, 0, len(records))
	for i, raw := range records {
		m, err := decodeRecord(i, raw)
		if err != nil {
			return nil, err
		}

		r := validate.ValidateModel(&m, i)
		if err := r.Err(); err != nil {
			return nil, err
		}
		for _, w := range r.Warnings() {
			o.log.Debug("catalog record warning", "model", m.ID, "field", w.Field, "issue", w.Message)
		}

		m.Pricing.ApplyDefaults()
		models = append(models, m)
	}

	if err := models.CheckUnique(); err != nil {
		return nil, err
	}
	return models, nil
}

func splitRecords(body []byte) ([]json.RawMessage, error) {
	var resp modelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &catalog.SchemaError{Index: -1, Msg: "parsing models response", Err: err}
	}
	if resp.Data == nil {
		return nil, &catalog.SchemaError{Index: -1, Field: "data", Msg: "required field is missing"}
	}
	return *resp.Data, nil
}

// decodeRecord unmarshals one record. On a type mismatch the returned model is
// still populated with every other field, as encoding/json does.
func decodeRecord(index int, raw json.RawMessage) (catalog.Model, error) {
	var m catalog.Model
	err := json.Unmarshal(raw, &m)
	if err == nil {
		return m, nil
	}

	se := &catalog.SchemaError{Index: index, ModelID: m.ID, Err: err}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		se.Field = typeErr.Field
		se.Msg = fmt.Sprintf("expected %s, got JSON %s", typeErr.Type, typeErr.Value)
	} else {
		se.Msg = err.Error()
	}
	return m, se
}

func asSchemaError(err error) (*catalog.SchemaError, bool) {
	var se *catalog.SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
