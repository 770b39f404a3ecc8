package catalog

import (
	"fmt"
	"strconv"
)

// ConfigError is returned when a component cannot be constructed from the
// configuration it was given, such as a missing API key.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Msg)
}

// TransportError is returned when the catalog endpoint cannot be reached or
// answers with a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int    // 0 when no response was received
	Body       string // truncated response body, if any
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("GET %s: transport failure", e.URL)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError is returned when a catalog record does not map onto Model.
// Index is the record's position in the response, or -1 when unknown.
type SchemaError struct {
	Index   int
	ModelID string
	Field   string
	Msg     string
	Err     error
}

func (e *SchemaError) Error() string {
	where := "record"
	switch {
	case e.ModelID != "":
		where = "model " + quote(e.ModelID)
	case e.Index >= 0:
		where = "record " + strconv.Itoa(e.Index)
	}
	if e.Field == "" {
		return fmt.Sprintf("schema: %s: %s", where, e.Msg)
	}
	return fmt.Sprintf("schema: %s: %s: %s", where, e.Field, e.Msg)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// ForModel returns a copy of e attributed to the given record.
func (e *SchemaError) ForModel(index int, id string) *SchemaError {
	c := *e
	c.Index = index
	c.ModelID = id
	return &c
}

func quote(s string) string { return strconv.Quote(s) }
