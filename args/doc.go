// Package args holds the rule chain that prepares keyword arguments before a
// data-access call.
//
// Rules are registered independently (a normalizer per key, at most one
// availability check, keyword aliases) and the Manager enforces that every
// pair of rules is consistent at registration time. Calls then fold the
// keyword arguments through the rules in insertion order:
//
//	m := args.NewManager()
//	m.MustAppend(
//		args.Alias("levelist", "level"),
//		args.Normalizer("levelist", normalize.Int()),
//		args.AvailabilityCheck(avail),
//	)
//	call, err := m.Apply(args.Call{Kwargs: map[string]any{"level": "500"}})
//
// Registration is a setup-time, single-writer activity and is not guarded by
// a lock. Apply does not mutate rules and may run concurrently once setup is
// done.
package args
