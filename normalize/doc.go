// Package normalize provides reusable keyword normalization functions.
//
// A Func canonicalizes one keyword value. Functions are composed by spec
// strings such as "int", "str-list" or "date-list(YYYYMMDD)", optionally
// with an alias table:
//
//	dates := map[string]any{
//		"april": []any{"20210401", "20210402", "20210403"},
//		"june":  []any{"20210610", "20210611"},
//	}
//	f, err := normalize.Parse("date-list(YYYYMMDD)", normalize.WithAliases(dates))
//	f("2021-06-10") // ["20210610"]
//	f("june")       // ["20210610", "20210611"]
//
// Scalar normalizers return a scalar; "-list" variants always return []any.
package normalize
