package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/use-agent/scrapeai/models"
)

// Record maps field name to extracted value. A field the model could not
// find holds "".
type Record map[string]string

// Container is the extracted listings, ordered as returned by the model.
type Container struct {
	Listings []Record

	// fields fixes the key order used when marshalling.
	fields []string
}

// NewContainer builds a container whose records marshal in fields order.
func NewContainer(fields []string, listings []Record) *Container {
	return &Container{Listings: listings, fields: fields}
}

// Fields returns the column order of the container.
func (c *Container) Fields() []string {
	return c.fields
}

// MarshalJSON writes {"listings":[...]} with record keys in field order.
// Keys outside the field list follow in lexical order.
func (c Container) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"` + ListingsKey + `":[`)
	for i, rec := range c.Listings {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := c.writeRecord(&buf, rec); err != nil {
			return nil, err
		}
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

func (c Container) writeRecord(buf *bytes.Buffer, rec Record) error {
	keys := make([]string, 0, len(rec))
	known := make(map[string]struct{}, len(c.fields))
	for _, f := range c.fields {
		known[f] = struct{}{}
		if _, ok := rec[f]; ok {
			keys = append(keys, f)
		}
	}
	var extra []string
	for k := range rec {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(rec[k])
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return nil
}

// Parse validates raw model output against the container. Every requested
// field is present in each record (absent or null become ""), non-string
// scalars are stringified and unknown keys are dropped. Anything that is not
// an object carrying a listings array of objects, a null listings included,
// is EXTRACTION_FAILED.
func (c *ContainerSchema) Parse(raw []byte) (*Container, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var top map[string]json.RawMessage
	if err := dec.Decode(&top); err != nil {
		return nil, malformed("model output is not a JSON object", err)
	}
	if top == nil {
		return nil, malformed("model output is null", nil)
	}

	rawListings, ok := top[ListingsKey]
	if !ok {
		return nil, malformed("model output has no "+ListingsKey+" property", nil)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawListings, &items); err != nil || items == nil {
		return nil, malformed(ListingsKey+" is not an array", err)
	}

	fields := c.Record.Fields()
	listings := make([]Record, 0, len(items))
	for i, item := range items {
		var obj map[string]any
		d := json.NewDecoder(bytes.NewReader(item))
		d.UseNumber()
		if err := d.Decode(&obj); err != nil || obj == nil {
			return nil, malformed(fmt.Sprintf("listing %d is not an object", i), err)
		}

		rec := make(Record, len(fields))
		for _, f := range fields {
			rec[f] = stringify(obj[f])
		}
		listings = append(listings, rec)
	}

	return NewContainer(fields, listings), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(string(b))
	}
}

func malformed(msg string, err error) error {
	return models.NewScrapeError(models.ErrCodeExtraction, msg, err)
}
