package args

import (
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/Spritan/climetlab/internal/value"
)

type pair struct{ existing, candidate Kind }

// consistency maps (existing, candidate) kinds to their check. Pairs absent
// from the table are always consistent.
var consistency = map[pair]func(existing, candidate Rule) error{
	{KindNormalizer, KindNormalizer}: func(e, c Rule) error {
		return normalizerVsNormalizer(e.(*NormalizerRule), c.(*NormalizerRule))
	},
	{KindNormalizer, KindAvailability}: func(e, c Rule) error {
		return normalizerVsAvailability(e.(*NormalizerRule), c.(*AvailabilityRule))
	},
	{KindAvailability, KindNormalizer}: func(e, c Rule) error {
		return normalizerVsAvailability(c.(*NormalizerRule), e.(*AvailabilityRule))
	},
	{KindAvailability, KindAvailability}: func(Rule, Rule) error {
		return platformerrors.New(platformerrors.CodeNotImplemented, "multiple availabilities were provided")
	},
	{KindAlias, KindAlias}: func(e, c Rule) error {
		return aliasVsAlias(e.(*AliasRule), c.(*AliasRule))
	},
	{KindAlias, KindNormalizer}: func(e, c Rule) error {
		return aliasVsNormalizer(e.(*AliasRule), c.(*NormalizerRule))
	},
	{KindNormalizer, KindAlias}: func(e, c Rule) error {
		return aliasVsNormalizer(c.(*AliasRule), e.(*NormalizerRule))
	},
}

// Consistent reports whether candidate may join a chain already holding
// existing.
func Consistent(existing, candidate Rule) error {
	check, ok := consistency[pair{existing.Kind(), candidate.Kind()}]
	if !ok {
		return nil
	}
	return check(existing, candidate)
}

func normalizerVsNormalizer(a, b *NormalizerRule) error {
	if a.key != b.key {
		return nil
	}
	return platformerrors.WithContext(
		platformerrors.Newf(platformerrors.CodeNotImplemented, "multiple normalizers for key %s", a.key),
		"key", a.key)
}

// normalizerVsAvailability requires n to be idempotent over every value the
// availability lists for n's key: n(v) must be v or [v].
func normalizerVsAvailability(n *NormalizerRule, a *AvailabilityRule) error {
	for _, v := range a.checker.UniqueValues()[n.key] {
		got, err := n.fn(v)
		if err == nil && (value.Equal(got, v) || value.IsSingleton(got, v)) {
			continue
		}
		detail := fmt.Sprintf("%s != %s", value.Format(got), value.Format(v))
		if err != nil {
			detail = err.Error()
		}
		return platformerrors.WithContextMap(
			platformerrors.Newf(platformerrors.CodeInvalidConfig,
				"mismatch between availability and normalizer: %s", detail),
			map[string]interface{}{"key": n.key, "value": value.Format(v)})
	}
	return nil
}

func aliasVsAlias(a, b *AliasRule) error {
	for _, name := range b.names {
		if name == a.key {
			return aliasConflict(name, "%s is a canonical key and cannot be an alias of %s", name, b.key)
		}
		for _, other := range a.names {
			if name == other && a.key != b.key {
				return aliasConflict(name, "alias %s already maps to %s, not %s", name, a.key, b.key)
			}
		}
	}
	for _, other := range a.names {
		if other == b.key {
			return aliasConflict(other, "%s is an alias of %s and cannot be a canonical key", other, a.key)
		}
	}
	return nil
}

func aliasVsNormalizer(a *AliasRule, n *NormalizerRule) error {
	for _, name := range a.names {
		if name == n.key {
			return aliasConflict(name, "normalizer registered on alias %s of %s", name, a.key)
		}
	}
	return nil
}

func aliasConflict(name, format string, args ...any) error {
	return platformerrors.WithContext(
		platformerrors.Newf(platformerrors.CodeInvalidConfig, format, args...),
		"alias", name)
}

// IsConfigError reports whether err was raised while registering rules.
func IsConfigError(err error) bool {
	switch platformerrors.GetCode(err) {
	case platformerrors.CodeNotImplemented, platformerrors.CodeInvalidConfig:
		return true
	}
	return false
}
