package availability

import (
	"fmt"
	"sort"

	"github.com/Spritan/climetlab"
	"github.com/Spritan/climetlab/internal/value"
)

// Check validates a keyword request. Each value may be a scalar or a list;
// lists expand to every combination. It returns climetlab.Issues when a key is
// unknown, a value was never observed for its key, or a combination matches no
// record.
func (a *Availability) Check(kwargs map[string]any) error {
	a.logger.Debug("checking availability", "request", kwargs)

	keys := make([]string, 0, len(kwargs))
	for k := range kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var iss climetlab.Issues
	request := make([][]any, len(keys))
	for i, k := range keys {
		set, ok := a.seen[k]
		if !ok {
			iss = climetlab.AppendIssues(iss, climetlab.IssueKV(k, climetlab.CodeUnknownKey, "key", k))
			continue
		}
		if value.StringMap(kwargs[k]) != nil {
			iss = climetlab.AppendIssues(iss, climetlab.IssueKV(k, climetlab.CodeInvalidType, "type", fmt.Sprintf("%T", kwargs[k])))
			continue
		}
		vals, isList := value.AsList(kwargs[k])
		if !isList {
			vals = []any{kwargs[k]}
		}
		for _, v := range vals {
			if _, ok := set[value.Key(v)]; ok {
				continue
			}
			it := climetlab.IssueKV(k, climetlab.CodeInvalidValue, "value", value.Format(v))
			it.Hint = "available: " + value.Format(a.unique[k])
			iss = climetlab.AppendIssues(iss, it)
		}
		request[i] = vals
	}
	if len(iss) > 0 {
		return iss
	}

	forEachCombination(request, func(combo []any) bool {
		if a.matches(keys, combo) {
			return true
		}
		params := make(map[string]any, len(keys))
		for i, k := range keys {
			params[k] = value.Format(combo[i])
		}
		iss = climetlab.AppendIssues(iss, climetlab.IssueAt("", climetlab.CodeNoSuchCombination, params))
		return true
	})
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// matches reports whether some record carries every keys[i] = combo[i].
func (a *Availability) matches(keys []string, combo []any) bool {
	if len(keys) == 0 {
		return true
	}
	// Walk the shortest posting list and verify the remaining keys.
	best := -1
	var candidates []int
	for i, k := range keys {
		p := a.postings[k][value.Key(combo[i])]
		if best < 0 || len(p) < len(candidates) {
			best, candidates = i, p
		}
	}
	for _, idx := range candidates {
		rec := a.records[idx]
		ok := true
		for i, k := range keys {
			if i == best {
				continue
			}
			v, present := rec[k]
			if !present || !value.Equal(v, combo[i]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// forEachCombination calls fn for each element of the Cartesian product of
// lists, in row-major order, until fn returns false.
func forEachCombination(lists [][]any, fn func([]any) bool) {
	for _, l := range lists {
		if len(l) == 0 {
			return
		}
	}
	idx := make([]int, len(lists))
	combo := make([]any, len(lists))
	for {
		for i, l := range lists {
			combo[i] = l[idx[i]]
		}
		if !fn(combo) {
			return
		}
		i := len(lists) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(lists[i]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return
		}
	}
}
