package domain

// Props is a string-keyed property bag. Values are whatever the client sent,
// decoded from JSON: float64, string, bool, []any or map[string]any.
type Props map[string]any

// Clone returns a shallow copy of the bag. Nested slices are shared, which is
// fine because edits always replace whole values.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge overwrites keys of p with the keys of other.
func (p Props) Merge(other Props) {
	for k, v := range other {
		p[k] = v
	}
}

// Merged returns a new bag holding p overlaid with override.
func (p Props) Merged(override Props) Props {
	out := p.Clone()
	out.Merge(override)
	return out
}

// Number returns the numeric value for key, or def when absent or not a number.
func (p Props) Number(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// String returns the string value for key, or def.
func (p Props) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

// Point returns a two component vector stored as a JSON array, or def.
func (p Props) Point(key string, def [2]float64) [2]float64 {
	pt, ok := ToPoint(p[key])
	if !ok {
		return def
	}
	return pt
}

// Points returns a list of two component vectors stored as a JSON array of arrays.
func (p Props) Points(key string) [][2]float64 {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([][2]float64, 0, len(raw))
	for _, item := range raw {
		pt, ok := ToPoint(item)
		if !ok {
			return nil
		}
		out = append(out, pt)
	}
	return out
}

// ToPoint converts a decoded JSON array ([x, y]) into a vector.
func ToPoint(v any) ([2]float64, bool) {
	var pt [2]float64
	switch arr := v.(type) {
	case []any:
		if len(arr) < 2 {
			return pt, false
		}
		for i := 0; i < 2; i++ {
			f, ok := arr[i].(float64)
			if !ok {
				return pt, false
			}
			pt[i] = f
		}
		return pt, true
	case []float64:
		if len(arr) < 2 {
			return pt, false
		}
		return [2]float64{arr[0], arr[1]}, true
	case [2]float64:
		return arr, true
	default:
		return pt, false
	}
}
