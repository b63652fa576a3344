// Package functional is the registry of trace transform reduction algorithms.
//
// T-functionals reduce one projection line of an image to a sinogram sample;
// P-functionals (circus functions) reduce one sinogram column to a feature
// value. Both catalogs are fixed: a resolved T or P always holds one of the
// kinds declared here, so dispatch sites switch over them exhaustively.
package functional

import "fmt"

// TKind enumerates the T-functional catalog
type TKind int

const (
	Radon TKind = iota
	T1
	T2
	T3
	T4
	T5
)

var tNames = [...]string{
	Radon: "Radon",
	T1:    "T1",
	T2:    "T2",
	T3:    "T3",
	T4:    "T4",
	T5:    "T5",
}

// String returns the display name of the kind
func (k TKind) String() string {
	if k < Radon || k > T5 {
		return fmt.Sprintf("TKind(%d)", int(k))
	}
	return tNames[k]
}

// PKind enumerates the P-functional catalog
type PKind int

const (
	P1 PKind = iota
	P2
	P3
	Hermite
)

// String returns the name of the kind
func (k PKind) String() string {
	switch k {
	case P1:
		return "P1"
	case P2:
		return "P2"
	case P3:
		return "P3"
	case Hermite:
		return "Hermite"
	default:
		return fmt.Sprintf("PKind(%d)", int(k))
	}
}

// T is a resolved T-functional. The zero value is Radon.
type T struct {
	kind TKind
}

// NewT returns the T-functional of the given kind
func NewT(kind TKind) (T, error) {
	if kind < Radon || kind > T5 {
		return T{}, &SpecError{Family: "T", Token: kind.String(), Cause: ErrUnknownFunctional}
	}
	return T{kind: kind}, nil
}

// Kind returns the catalog entry
func (t T) Kind() TKind { return t.kind }

// Name is the stable display name, used as a feature column header component
func (t T) Name() string { return t.kind.String() }

func (t T) String() string { return t.Name() }

// P is a resolved P-functional with its parameters.
type P struct {
	kind  PKind
	order uint
}

// NewP returns a non-parameterized P-functional
func NewP(kind PKind) (P, error) {
	switch kind {
	case P1, P2, P3:
		return P{kind: kind}, nil
	case Hermite:
		return P{}, &SpecError{Family: "P", Token: "H", Cause: ErrMissingOrder}
	}
	return P{}, &SpecError{Family: "P", Token: kind.String(), Cause: ErrUnknownFunctional}
}

// NewHermite returns the Hermite P-functional of the given order
func NewHermite(order uint) P {
	return P{kind: Hermite, order: order}
}

// Kind returns the catalog entry
func (p P) Kind() PKind { return p.kind }

// Order is the Hermite order; zero for every other kind
func (p P) Order() uint { return p.order }

// Orthonormal reports whether the functional needs an orthonormalized sinogram
func (p P) Orthonormal() bool { return p.kind == Hermite }

// Name is the display name, e.g. "P2" or "H3"
func (p P) Name() string {
	if p.kind == Hermite {
		return fmt.Sprintf("H%d", p.order)
	}
	return p.kind.String()
}

func (p P) String() string { return p.Name() }

// Label is the feature column header for a (T, P) combination
func Label(t T, p P) string {
	return t.Name() + "-" + p.Name()
}

// TCatalog lists every T-functional in catalog order
func TCatalog() []T {
	out := make([]T, 0, len(tNames))
	for k := Radon; k <= T5; k++ {
		out = append(out, T{kind: k})
	}
	return out
}

// PCatalog lists the non-parameterized P-functionals followed by Hermite
// functionals of orders 0 through maxOrder.
func PCatalog(maxOrder uint) []P {
	out := []P{{kind: P1}, {kind: P2}, {kind: P3}}
	for n := uint(0); n <= maxOrder; n++ {
		out = append(out, NewHermite(n))
	}
	return out
}

// Regime is the P-functional class of a whole run
type Regime int

const (
	// Regular runs reduce the raw sinogram
	Regular Regime = iota
	// Orthonormal runs reduce the nearest orthonormal sinogram
	Orthonormal
)

func (r Regime) String() string {
	if r == Orthonormal {
		return "orthonormal"
	}
	return "regular"
}

// ResolveRegime checks that the selected P-functionals are either all
// orthonormal-class or none of them are. An empty selection is Regular.
func ResolveRegime(ps []P) (Regime, error) {
	orthonormal := 0
	for _, p := range ps {
		if p.Orthonormal() {
			orthonormal++
		}
	}
	switch orthonormal {
	case 0:
		return Regular, nil
	case len(ps):
		return Orthonormal, nil
	}
	return Regular, &SpecError{Family: "P", Cause: ErrMixedRegime}
}
