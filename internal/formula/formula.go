// Package formula evaluates the cell formula language: plain arithmetic over
// cell references plus five aggregate functions. Every failure mode collapses
// into the "#ERROR!" marker; the evaluator never raises to its caller.
package formula

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/surprisetalk/gridsheet/internal/refs"
)

// ErrorValue is the displayed value for any malformed or failing formula.
const ErrorValue = "#ERROR!"

// Resolver reads the value a cell reference points at. The header row
// resolves to the column name; out-of-bounds and empty cells resolve to 0.
type Resolver interface {
	Resolve(refs.Position) any
}

var (
	// arithmeticRe is the first-line whitelist: uppercase refs, digits and
	// arithmetic operators only. Anything outside it is not arithmetic.
	arithmeticRe = regexp.MustCompile(`^[A-Z0-9+\-*/.\s]+$`)
	// substitutedRe validates the expression after reference substitution.
	// Together with the parser's own token set this closes the injection
	// class: nothing but digits and arithmetic ever reaches evaluation.
	substitutedRe = regexp.MustCompile(`^[0-9+\-*/.() ]+$`)
	cellRefRe     = regexp.MustCompile(`[A-Z]+\d+`)
	aggregateRe   = regexp.MustCompile(`^(SUM|AVERAGE|COUNT|MAX|MIN)\((.*)\)$`)
)

// Eval evaluates a formula with the sigil already stripped. The input is
// case-insensitive. The result is a float64, a string (bare reference to a
// text cell or the header row), or ErrorValue.
func Eval(src string, res Resolver) (out any) {
	defer func() {
		if recover() != nil {
			out = ErrorValue
		}
	}()

	expr := strings.ToUpper(strings.TrimSpace(src))
	if expr == "" {
		return ErrorValue
	}

	// A bare reference passes through untouched so text cells and header
	// names survive; it would otherwise be coerced to a number below.
	if pos, ok := refs.Parse(expr); ok {
		return res.Resolve(pos)
	}

	if arithmeticRe.MatchString(expr) && !strings.ContainsAny(expr, "()") {
		return evalArithmetic(expr, res)
	}

	if m := aggregateRe.FindStringSubmatch(expr); m != nil {
		return evalAggregate(m[1], m[2], res)
	}

	return ErrorValue
}

// evalArithmetic substitutes every reference with its numeric value and runs
// the whitelisted expression parser. Non-numeric references count as 0.
func evalArithmetic(expr string, res Resolver) any {
	substituted := cellRefRe.ReplaceAllStringFunc(expr, func(ref string) string {
		pos, ok := refs.Parse(ref)
		if !ok {
			return "0"
		}
		n, ok := toNumber(res.Resolve(pos))
		if !ok {
			return "0"
		}
		return formatNumber(n)
	})
	if !substitutedRe.MatchString(substituted) {
		return ErrorValue
	}
	v, ok := evalExpr(substituted)
	if !ok {
		return ErrorValue
	}
	return v
}

func evalAggregate(name, argList string, res Resolver) any {
	var nums []float64
	for _, arg := range strings.Split(argList, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		positions := refs.RangePositions(arg)
		if len(positions) == 0 {
			// malformed range: contributes nothing rather than erroring
			continue
		}
		for _, p := range positions {
			if n, ok := toNumber(res.Resolve(p)); ok {
				nums = append(nums, n)
			}
		}
	}

	switch name {
	case "SUM":
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return total
	case "AVERAGE":
		if len(nums) == 0 {
			return float64(0)
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return total / float64(len(nums))
	case "COUNT":
		return float64(len(nums))
	case "MAX":
		// 0 sentinel for an empty set; ±Inf never leaks to callers
		if len(nums) == 0 {
			return float64(0)
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n > m {
				m = n
			}
		}
		return m
	case "MIN":
		if len(nums) == 0 {
			return float64(0)
		}
		m := nums[0]
		for _, n := range nums[1:] {
			if n < m {
				m = n
			}
		}
		return m
	}
	return ErrorValue
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "0"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
