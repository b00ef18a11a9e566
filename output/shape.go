package output

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/use-agent/scrapeai/models"
)

// Object is a JSON object that remembers the order of its keys.
type Object struct {
	Keys   []string
	Values map[string]any
}

// TabularSource is the resolved row set of a result. It is one of
// SingleColumnWrapped, Plain or SingleRecord.
type TabularSource interface {
	Rows() []*Object
}

// SingleColumnWrapped is an object with one key whose value is the rows,
// e.g. {"listings": [...]}.
type SingleColumnWrapped struct {
	Key     string
	Records []*Object
}

func (s SingleColumnWrapped) Rows() []*Object { return s.Records }

// Plain is a top-level array of rows.
type Plain struct {
	Records []*Object
}

func (p Plain) Rows() []*Object { return p.Records }

// SingleRecord is an object flattened into one row.
type SingleRecord struct {
	Record *Object
}

func (s SingleRecord) Rows() []*Object { return []*Object{s.Record} }

// Resolve classifies a decoded value. Values that are neither an object nor
// an array of objects fail with SHAPE_INVALID.
func Resolve(value any) (TabularSource, error) {
	switch v := value.(type) {
	case *Object:
		if len(v.Keys) == 1 {
			if arr, ok := v.Values[v.Keys[0]].([]any); ok {
				rows, err := objects(arr)
				if err != nil {
					return nil, err
				}
				return SingleColumnWrapped{Key: v.Keys[0], Records: rows}, nil
			}
		}
		return SingleRecord{Record: v}, nil
	case []any:
		rows, err := objects(v)
		if err != nil {
			return nil, err
		}
		return Plain{Records: rows}, nil
	default:
		return nil, models.NewScrapeError(
			models.ErrCodeShape,
			fmt.Sprintf("expected an object or an array of objects, got %s", kindOf(value)),
			nil,
		)
	}
}

func objects(arr []any) ([]*Object, error) {
	rows := make([]*Object, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(*Object)
		if !ok {
			return nil, models.NewScrapeError(
				models.ErrCodeShape,
				fmt.Sprintf("row %d is %s, not an object", i, kindOf(item)),
				nil,
			)
		}
		rows = append(rows, obj)
	}
	return rows, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	case *Object:
		return "an object"
	}
	return fmt.Sprintf("%T", v)
}

// decodeOrdered parses one JSON value, keeping object key order.
// Numbers keep their source text as json.Number; a repeated key keeps its
// first position and last value.
func decodeOrdered(raw []byte) (any, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid JSON")
	}
	return convert(gjson.ParseBytes(raw)), nil
}

func convert(r gjson.Result) any {
	switch {
	case r.IsObject():
		obj := &Object{Values: make(map[string]any)}
		r.ForEach(func(key, value gjson.Result) bool {
			k := key.String()
			if _, dup := obj.Values[k]; !dup {
				obj.Keys = append(obj.Keys, k)
			}
			obj.Values[k] = convert(value)
			return true
		})
		return obj
	case r.IsArray():
		arr := []any{}
		r.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, convert(value))
			return true
		})
		return arr
	}

	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	}
	return nil
}
