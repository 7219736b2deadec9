package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedPrecondition is returned for legacy codes with no
// equivalent in the condition language.
var ErrUnsupportedPrecondition = errors.New("condition: unsupported legacy precondition")

type legacyFunc func(args []string, scope string) (string, error)

// legacyCodes maps single-letter event precondition codes to translators.
var legacyCodes = map[string]legacyFunc{
	"A": exactly(1, func(a []string) string { return "conversation " + a[0] }),
	"F": fixed("!festival today"),
	"U": exactlyInt(1, func(n []int) string { return fmt.Sprintf("!festival within %d", n[0]) }),
	"d": atLeast(1, func(a []string) string { return "!weekday " + strings.Join(a, " ") }),
	"r": legacyRandom,
	"w": legacyWeather,
	"y": exactlyInt(1, func(n []int) string {
		if n[0] == 1 {
			return "year 1 1"
		}
		return fmt.Sprintf("year %d", n[0])
	}),
	"z": legacyNotSeason,
	"D": exactly(1, func(a []string) string { return "dating " + a[0] }),
	"J": fixed("joja complete"),
	"L": fixed("house >= 2"),
	"M": exactlyInt(1, func(n []int) string { return fmt.Sprintf("money >= %d", n[0]) }),
	"N": exactlyInt(1, func(n []int) string { return fmt.Sprintf("walnuts >= %d", n[0]) }),
	"O": exactly(1, func(a []string) string { return "married " + a[0] }),
	"S": exactlyInt(1, func(n []int) string { return fmt.Sprintf("secret_note %d", n[0]) }),
	"e": atLeast(1, func(a []string) string { return "event " + strings.Join(a, " ") }),
	"f": legacyFriendship,
	"g": legacyGender,
	"j": exactlyInt(1, func(n []int) string { return fmt.Sprintf("days_played >= %d", n[0]+1) }),
	"k": atLeast(1, func(a []string) string { return "!event " + strings.Join(a, " ") }),
	"l": exactly(1, func(a []string) string { return "!flag " + a[0] }),
	"m": exactlyInt(1, func(n []int) string { return fmt.Sprintf("earned >= %d", n[0]) }),
	"n": exactly(1, func(a []string) string { return "flag " + a[0] }),
	"o": exactly(1, func(a []string) string { return "!married " + a[0] }),
	"q": atLeast(1, func(a []string) string { return "answer " + strings.Join(a, " ") }),
	"s": legacyShipped,
	"t": exactlyInt(2, func(n []int) string { return fmt.Sprintf("time %d %d", n[0], n[1]) }),
	"u": legacyDays,
}

// TranslatePrecondition converts a slash separated list of legacy event
// preconditions into an equivalent condition string. scope keys the random
// draws so that separate stocks roll independently; an empty scope keys them
// by the expression text. Codes after the first add their position to the
// key. A leading "!" on a code negates it.
func TranslatePrecondition(pre, scope string) (string, error) {
	var out []string
	for i, part := range strings.Split(pre, "/") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		code, negate := fields[0], false
		if strings.HasPrefix(code, "!") {
			code, negate = code[1:], true
		}
		fn, ok := legacyCodes[code]
		if !ok {
			return "", fmt.Errorf("%w %q", ErrUnsupportedPrecondition, part)
		}
		key := scope
		if i > 0 {
			if key == "" {
				key = pre
			}
			key = fmt.Sprintf("%s@%d", key, i)
		}
		expr, err := fn(fields[1:], key)
		if err != nil {
			return "", fmt.Errorf("%w %q: %v", ErrUnsupportedPrecondition, part, err)
		}
		if negate {
			expr = "! " + Quote(expr)
		}
		out = append(out, expr)
	}
	return strings.Join(out, ", "), nil
}

func fixed(expr string) legacyFunc {
	return func([]string, string) (string, error) { return expr, nil }
}

func exactly(n int, build func([]string) string) legacyFunc {
	return func(args []string, _ string) (string, error) {
		if len(args) != n {
			return "", fmt.Errorf("expected %d arguments, got %d", n, len(args))
		}
		return build(args), nil
	}
}

func atLeast(n int, build func([]string) string) legacyFunc {
	return func(args []string, _ string) (string, error) {
		if len(args) < n {
			return "", fmt.Errorf("expected at least %d arguments, got %d", n, len(args))
		}
		return build(args), nil
	}
}

func exactlyInt(n int, build func([]int) string) legacyFunc {
	return func(args []string, _ string) (string, error) {
		if len(args) != n {
			return "", fmt.Errorf("expected %d arguments, got %d", n, len(args))
		}
		vals := make([]int, n)
		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil {
				return "", fmt.Errorf("%q is not a number", a)
			}
			vals[i] = v
		}
		return build(vals), nil
	}
}

func legacyRandom(args []string, key string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("expected one chance")
	}
	chance, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return "", fmt.Errorf("%q is not a number", args[0])
	}
	expr := "random " + strconv.FormatFloat(chance, 'f', -1, 64)
	if key != "" {
		expr += " " + Quote(key)
	}
	return expr, nil
}

func legacyWeather(args []string, _ string) (string, error) {
	if len(args) == 1 {
		switch args[0] {
		case "rainy", "sunny":
			return "weather " + args[0], nil
		}
	}
	return "", errors.New("expected rainy or sunny")
}

func legacyNotSeason(args []string, _ string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("expected one season")
	}
	if _, err := compileSeason(args, ""); err != nil {
		return "", err
	}
	return "!season " + strings.ToLower(args[0]), nil
}

// legacyFriendship accepts one or more <npc> <points> pairs, all required.
func legacyFriendship(args []string, _ string) (string, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return "", errors.New("expected <npc> <points> pairs")
	}
	var parts []string
	for i := 0; i < len(args); i += 2 {
		pts, err := strconv.Atoi(args[i+1])
		if err != nil {
			return "", fmt.Errorf("%q is not a number", args[i+1])
		}
		parts = append(parts, fmt.Sprintf("friendship %s >= %d", args[i], pts))
	}
	return strings.Join(parts, ", "), nil
}

func legacyGender(args []string, _ string) (string, error) {
	if len(args) == 1 {
		switch g := strings.ToLower(args[0]); g {
		case "male", "female":
			return "gender " + g, nil
		}
	}
	return "", errors.New("expected male or female")
}

func legacyShipped(args []string, _ string) (string, error) {
	if len(args) != 2 {
		return "", errors.New("expected <item> <count>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("%q is not a number", args[1])
	}
	return fmt.Sprintf("shipped %s >= %d", args[0], n), nil
}

func legacyDays(args []string, _ string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("expected at least one day")
	}
	for _, a := range args {
		if _, err := strconv.Atoi(a); err != nil {
			return "", fmt.Errorf("%q is not a number", a)
		}
	}
	return "day " + strings.Join(args, " "), nil
}
