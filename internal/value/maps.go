package value

// StringMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-map roots return nil.
func StringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeDecoded(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeDecoded(vv)
		}
		return out
	default:
		return nil
	}
}

// Record converts one decoded metadata record: nested maps are normalized,
// scalars are made canonical, and nil values are dropped.
func Record(v any) map[string]any {
	m := StringMap(v)
	if m == nil {
		return nil
	}
	for k, vv := range m {
		if vv == nil {
			delete(m, k)
			continue
		}
		m[k] = Canonical(vv)
	}
	return m
}

func normalizeDecoded(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return StringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeDecoded(t[i])
		}
		return arr
	default:
		return Canonical(v)
	}
}
