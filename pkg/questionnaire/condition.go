package questionnaire

import "strings"

// evalConditions reports whether every condition in the list holds. A
// question with no conditions is always visible; the combinator is a
// plain AND, there is no OR variant.
func evalConditions(conds []Condition, responses Responses) bool {
	for _, c := range conds {
		if !evalCondition(c, responses[c.DependsOn]) {
			return false
		}
	}
	return true
}

// evalCondition applies one condition to the answer it depends on.
// Operand type mismatches degrade to false. Unrecognized operators
// evaluate to true; Config.Validate rejects them at load time.
func evalCondition(c Condition, dep Value) bool {
	switch c.Operator {
	case OpEquals:
		return dep.Equal(c.Value)
	case OpNotEquals:
		return !dep.Equal(c.Value)
	case OpGreaterThan:
		a, aok := dep.AsNumber()
		b, bok := c.Value.AsNumber()
		return aok && bok && a > b
	case OpLessThan:
		a, aok := dep.AsNumber()
		b, bok := c.Value.AsNumber()
		return aok && bok && a < b
	case OpContains:
		a, aok := dep.AsString()
		b, bok := c.Value.AsString()
		return aok && bok && strings.Contains(strings.ToLower(a), strings.ToLower(b))
	case OpInArray:
		return evalInArray(dep, c.Value)
	default:
		return true
	}
}

// evalInArray covers the three in_array shapes: list against list means
// intersection, scalar against list means membership, anything else is
// false.
func evalInArray(dep, ruleValue Value) bool {
	ruleList, ok := ruleValue.AsList()
	if !ok {
		return false
	}
	if depList, isList := dep.AsList(); isList {
		for _, dv := range depList {
			for _, rv := range ruleList {
				if dv.Equal(rv) {
					return true
				}
			}
		}
		return false
	}
	for _, rv := range ruleList {
		if dep.Equal(rv) {
			return true
		}
	}
	return false
}
