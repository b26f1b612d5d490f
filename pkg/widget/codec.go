package widget

import (
	"encoding/json"
	"fmt"
	"time"
)

// JSONCodec stores values as json.RawMessage. Plugins use it when the widget
// value is a structured type that should survive as plain data rather than a
// live reference.
func JSONCodec() *Codec {
	return &Codec{
		Encode: func(v any) (any, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("widget: json encode: %w", err)
			}
			return json.RawMessage(b), nil
		},
		Decode: func(v any) (any, error) {
			raw, ok := v.(json.RawMessage)
			if !ok {
				return nil, fmt.Errorf("widget: json decode: stored value is %T, not json.RawMessage", v)
			}
			var out any
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, fmt.Errorf("widget: json decode: %w", err)
			}
			return out, nil
		},
	}
}

// TimeCodec stores time.Time values as RFC 3339 strings.
func TimeCodec() *Codec {
	return &Codec{
		Encode: func(v any) (any, error) {
			ts, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("widget: time encode: value is %T, not time.Time", v)
			}
			return ts.Format(time.RFC3339Nano), nil
		},
		Decode: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("widget: time decode: stored value is %T, not string", v)
			}
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("widget: time decode: %w", err)
			}
			return ts, nil
		},
	}
}
