package scheduledomain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NameNormalizer maps a source-season agegroup name onto the naming the
// current season would use for the same age level.
type NameNormalizer func(name string) string

// Naming strategies accepted by NormalizerFor.
const (
	NamingNone      = "none"
	NamingIncrement = "increment"
)

// IdentityNormalizer leaves names untouched.
func IdentityNormalizer(name string) string { return name }

var digitRun = regexp.MustCompile(`\d+`)

// YearIncrementNormalizer adds delta to every run of digits in the name, so
// "U12" becomes "U13" and "2014 Boys" becomes "2015 Boys" for delta 1.
// Zero padding is kept.
func YearIncrementNormalizer(delta int) NameNormalizer {
	return func(name string) string {
		return digitRun.ReplaceAllStringFunc(name, func(run string) string {
			n, err := strconv.Atoi(run)
			if err != nil {
				return run
			}
			return fmt.Sprintf("%0*d", len(run), n+delta)
		})
	}
}

// NormalizerFor resolves a configured naming strategy.
func NormalizerFor(strategy string, delta int) (NameNormalizer, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", NamingNone:
		return IdentityNormalizer, nil
	case NamingIncrement:
		if delta == 0 {
			delta = 1
		}
		return YearIncrementNormalizer(delta), nil
	default:
		return nil, fmt.Errorf("unknown agegroup naming strategy %q", strategy)
	}
}

// canonicalName lowercases and collapses whitespace.
func canonicalName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func divisionKey(agegroupName, divisionName string) string {
	return canonicalName(agegroupName) + "\x00" + canonicalName(divisionName)
}
