package botapi

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
)

// Params holds the required fields of one API call.
type Params map[string]any

// Options holds optional, method-specific fields supplied by the caller. They
// are merged over Params; on a key collision the option wins.
type Options map[string]any

// merge returns a fresh map holding payload and then opts. Either may be nil.
func merge(payload Params, opts Options) map[string]any {
	out := make(map[string]any, len(payload)+len(opts))
	maps.Copy(out, payload)
	maps.Copy(out, opts)
	return out
}

// formatValue renders a field for a query string or multipart form. Scalars are
// formatted verbatim, everything else is JSON-encoded (reply_markup, results, ...).
func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case json.Number:
		return val.String(), nil
	case fmt.Stringer:
		return val.String(), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// queryValues encodes fields for a GET request.
func queryValues(fields map[string]any) (url.Values, error) {
	values := make(url.Values, len(fields))
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		s, err := formatValue(fields[key])
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", key, err)
		}
		values.Set(key, s)
	}
	return values, nil
}
