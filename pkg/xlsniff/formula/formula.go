// Package formula extracts reference and identifier tokens out of
// formula text. It is a deliberate heuristic layer over the efp
// tokenizer, not a grammar: detectors consume token lists and skip
// anything that fails to parse.
package formula

import (
	"regexp"
	"strings"

	"github.com/xuri/efp"
)

// Keywords is the built-in function name set filtered out of
// identifier extraction. A user-defined name that collides with one of
// these is dropped as well; that is a known limitation of the
// heuristic, kept on purpose.
var Keywords = map[string]bool{
	"SUM": true, "IF": true, "AVERAGE": true, "COUNT": true, "COUNTA": true,
	"MAX": true, "MIN": true, "VLOOKUP": true, "HLOOKUP": true, "INDEX": true,
	"MATCH": true, "LOOKUP": true, "XLOOKUP": true, "SUMIF": true, "SUMIFS": true,
	"COUNTIF": true, "COUNTIFS": true, "AVERAGEIF": true, "AVERAGEIFS": true,
	"AND": true, "OR": true, "NOT": true, "IFERROR": true, "IFNA": true,
	"ROUND": true, "ROUNDUP": true, "ROUNDDOWN": true, "ABS": true, "INT": true,
	"MOD": true, "CONCATENATE": true, "TEXT": true, "VALUE": true, "LEFT": true,
	"RIGHT": true, "MID": true, "LEN": true, "TRIM": true, "UPPER": true,
	"LOWER": true, "NOW": true, "TODAY": true, "DATE": true, "YEAR": true,
	"MONTH": true, "DAY": true, "RAND": true, "RANDBETWEEN": true,
	"OFFSET": true, "INDIRECT": true, "CELL": true, "INFO": true,
	"UNIQUE": true, "FILTER": true, "SORT": true, "SORTBY": true,
	"SEQUENCE": true, "TRANSPOSE": true, "TRUE": true, "FALSE": true,
}

// Volatile is the volatile function set: anything here recalculates on
// every workbook change.
var Volatile = map[string]bool{
	"NOW": true, "TODAY": true, "RAND": true, "RANDBETWEEN": true,
	"OFFSET": true, "INDIRECT": true, "CELL": true, "INFO": true,
}

// Aggregations raise the probability of circular named ranges: a cycle
// through an aggregate almost always means a modeling mistake.
var Aggregations = map[string]bool{
	"SUM": true, "AVERAGE": true, "COUNT": true, "COUNTA": true,
	"MAX": true, "MIN": true, "SUMIF": true, "SUMIFS": true,
}

// Lookups are the lookup-function names with anchoring-sensitive
// parameters.
var Lookups = map[string]bool{
	"VLOOKUP": true, "HLOOKUP": true, "INDEX": true, "MATCH": true,
	"LOOKUP": true, "XLOOKUP": true,
}

// ArrayFunctions are the dynamic array functions whose results spill.
var ArrayFunctions = map[string]bool{
	"UNIQUE": true, "FILTER": true, "SORT": true, "SORTBY": true,
	"SEQUENCE": true, "TRANSPOSE": true,
}

// Calculations are the range-aggregation functions checked for
// inconsistent range anchoring.
var Calculations = map[string]bool{
	"SUM": true, "AVERAGE": true, "COUNT": true, "COUNTA": true,
	"MAX": true, "MIN": true,
}

var cellShaped = regexp.MustCompile(`^\$?[A-Z]+\$?[0-9]+$`)

// References returns the cell and range reference tokens of a formula,
// with sheet qualifiers and $ anchors preserved, in source order.
// Malformed formulas yield whatever prefix tokenized cleanly.
func References(f string) []string {
	var out []string
	for _, tok := range operands(f) {
		if tok.TSubType == efp.TokenSubTypeRange {
			out = append(out, tok.TValue)
		}
	}
	return out
}

// Ranges returns only the X:Y range tokens of a formula.
func Ranges(f string) []string {
	var out []string
	for _, r := range References(f) {
		if strings.Contains(r, ":") {
			out = append(out, r)
		}
	}
	return out
}

// CellRefs returns only single-cell reference tokens (no ranges).
func CellRefs(f string) []string {
	var out []string
	for _, r := range References(f) {
		if !strings.Contains(r, ":") {
			out = append(out, r)
		}
	}
	return out
}

// Names returns identifier tokens that look like defined names:
// operand tokens that are neither function keywords nor
// cell-reference shaped. Duplicates are removed, order preserved.
func Names(f string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range operands(f) {
		v := tok.TValue
		if v == "" || strings.Contains(v, ":") || strings.Contains(v, "!") {
			continue
		}
		if tok.TSubType != efp.TokenSubTypeRange {
			continue
		}
		bare := strings.ReplaceAll(v, "$", "")
		if cellShaped.MatchString(v) || Keywords[strings.ToUpper(bare)] {
			continue
		}
		if !seen[bare] {
			seen[bare] = true
			out = append(out, bare)
		}
	}
	return out
}

// Functions returns the upper-cased function names invoked by a
// formula, in source order, duplicates included.
func Functions(f string) []string {
	var out []string
	ps := efp.ExcelParser()
	for _, tok := range ps.Parse(strip(f)) {
		if tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStart {
			out = append(out, strings.ToUpper(tok.TValue))
		}
	}
	return out
}

// HasFunction reports whether the formula calls any function from the
// given set.
func HasFunction(f string, set map[string]bool) bool {
	for _, fn := range Functions(f) {
		if set[fn] {
			return true
		}
	}
	return false
}

// Operators returns the arithmetic infix operators of a formula.
func Operators(f string) []string {
	var out []string
	ps := efp.ExcelParser()
	for _, tok := range ps.Parse(strip(f)) {
		if tok.TType == efp.TokenTypeOperatorInfix && tok.TSubType == efp.TokenSubTypeMath {
			out = append(out, tok.TValue)
		}
	}
	return out
}

// Complexity scores operator, function and reference density into
// [0, 1]. Used as a capped probability bonus, never on its own.
func Complexity(f string) float64 {
	n := len(Operators(f)) + len(Functions(f)) + len(References(f))
	score := float64(n) / 10.0
	if score > 1 {
		score = 1
	}
	return score
}

// Shape replaces every reference token with a placeholder so two
// formulas dragged down a column compare equal.
func Shape(f string) string {
	s := strip(f)
	var b strings.Builder
	ps := efp.ExcelParser()
	for _, tok := range ps.Parse(s) {
		switch {
		case tok.TType == efp.TokenTypeOperand && tok.TSubType == efp.TokenSubTypeRange:
			b.WriteString("REF")
		case tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStart:
			b.WriteString(strings.ToUpper(tok.TValue) + "(")
		case tok.TType == efp.TokenTypeFunction && tok.TSubType == efp.TokenSubTypeStop:
			b.WriteString(")")
		case tok.TType == efp.TokenTypeArgument:
			b.WriteString(",")
		default:
			b.WriteString(tok.TValue)
		}
	}
	return b.String()
}

// Similarity compares two formula shapes: 1.0 for identical shape,
// 0.0 for disjoint token streams.
func Similarity(a, b string) float64 {
	sa, sb := Shape(a), Shape(b)
	if sa == sb {
		return 1.0
	}
	ta, tb := strings.FieldsFunc(sa, sep), strings.FieldsFunc(sb, sep)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for _, t := range ta {
		counts[t]++
	}
	match := 0
	for _, t := range tb {
		if counts[t] > 0 {
			counts[t]--
			match++
		}
	}
	total := len(ta)
	if len(tb) > total {
		total = len(tb)
	}
	return float64(match) / float64(total)
}

func sep(r rune) bool {
	return r == '(' || r == ')' || r == ',' || r == '+' || r == '-' ||
		r == '*' || r == '/' || r == '^' || r == ' '
}

// IsArrayFormula reports whether the text is a legacy array formula
// ({=...}) or calls a dynamic array function.
func IsArrayFormula(f string) bool {
	t := strings.TrimSpace(f)
	if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
		return true
	}
	return HasFunction(f, ArrayFunctions)
}

func operands(f string) []efp.Token {
	var out []efp.Token
	ps := efp.ExcelParser()
	for _, tok := range ps.Parse(strip(f)) {
		if tok.TType == efp.TokenTypeOperand {
			out = append(out, tok)
		}
	}
	return out
}

// strip removes the leading "=" and legacy array braces so efp sees
// bare formula text.
func strip(f string) string {
	t := strings.TrimSpace(f)
	t = strings.TrimPrefix(t, "{")
	t = strings.TrimSuffix(t, "}")
	t = strings.TrimPrefix(t, "=")
	return t
}
