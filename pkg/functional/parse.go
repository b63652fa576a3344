package functional

import (
	"strconv"
	"strings"
)

// ParseT resolves a T-functional token. Tokens are case-insensitive; a bare
// digit is a short form ("0" is Radon, "3" is T3) and "T0" is Radon.
func ParseT(token string) (T, error) {
	name := strings.ToUpper(strings.TrimSpace(token))
	if name == "RADON" {
		return T{kind: Radon}, nil
	}
	if isDigits(name) {
		name = "T" + name
	}
	switch name {
	case "T0":
		return T{kind: Radon}, nil
	case "T1":
		return T{kind: T1}, nil
	case "T2":
		return T{kind: T2}, nil
	case "T3":
		return T{kind: T3}, nil
	case "T4":
		return T{kind: T4}, nil
	case "T5":
		return T{kind: T5}, nil
	}
	return T{}, &SpecError{Family: "T", Token: token, Cause: ErrUnknownFunctional}
}

// ParseP resolves a P-functional token. Tokens are case-insensitive; a bare
// digit is a short form ("2" is P2). Tokens starting with H select the
// Hermite functional and must carry an unsigned order ("H3").
func ParseP(token string) (P, error) {
	name := strings.ToUpper(strings.TrimSpace(token))
	if isDigits(name) {
		name = "P" + name
	}
	switch {
	case name == "P1":
		return P{kind: P1}, nil
	case name == "P2":
		return P{kind: P2}, nil
	case name == "P3":
		return P{kind: P3}, nil
	case strings.HasPrefix(name, "H"):
		suffix := name[1:]
		if suffix == "" {
			return P{}, &SpecError{Family: "P", Token: token, Cause: ErrMissingOrder}
		}
		order, err := strconv.ParseUint(suffix, 10, 32)
		if err != nil {
			return P{}, &SpecError{Family: "P", Token: token, Cause: ErrUnparseableOrder}
		}
		return NewHermite(uint(order)), nil
	}
	return P{}, &SpecError{Family: "P", Token: token, Cause: ErrUnknownFunctional}
}

// ParseTList resolves every token, failing on the first invalid one.
// An empty selection is rejected.
func ParseTList(tokens []string) ([]T, error) {
	tokens = splitTokens(tokens)
	if len(tokens) == 0 {
		return nil, &SpecError{Family: "T", Cause: ErrNoTFunctionals}
	}
	out := make([]T, 0, len(tokens))
	for _, tok := range tokens {
		t, err := ParseT(tok)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ParsePList resolves every token and then checks the regime constraint,
// so a mixed selection fails before anything is computed.
func ParsePList(tokens []string) ([]P, Regime, error) {
	tokens = splitTokens(tokens)
	out := make([]P, 0, len(tokens))
	for _, tok := range tokens {
		p, err := ParseP(tok)
		if err != nil {
			return nil, Regular, err
		}
		out = append(out, p)
	}
	regime, err := ResolveRegime(out)
	if err != nil {
		return nil, Regular, err
	}
	return out, regime, nil
}

// splitTokens accepts both repeated values and comma separated lists
func splitTokens(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		for _, part := range strings.Split(tok, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
