// Package field implements the prime field GF(p) used as the
// coefficient and payload-symbol domain for the RLNC coding layer.
//
// p = 2^64 - 2^32 + 1 (the "Goldilocks" prime) is strictly below 2^64,
// so every element — not just a freshly read 8-byte payload group, but
// also the output of Add/Sub/Mul/MulAdd — fits losslessly in a 64-bit
// wire symbol. Arithmetic is still carried out with
// github.com/holiman/uint256, the same fixed-width integer type used
// for modular field arithmetic in Ethereum tooling, because the
// partial product inside a modular multiply of two ~64-bit operands is
// up to ~128 bits before reduction and would overflow a native uint64.
package field

import (
	"math/big"

	"github.com/holiman/uint256"
)

// ElementSizeBytes is the width of a single field element as it
// appears packed in a chunk payload or in a coefficient vector.
const ElementSizeBytes = 8

// modulus is p = 2^64 - 2^32 + 1.
var modulus = func() *uint256.Int {
	p := new(big.Int).Add(
		new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), new(big.Int).Lsh(big.NewInt(1), 32)),
		big.NewInt(1),
	)
	m, overflow := uint256.FromBig(p)
	if overflow {
		panic("field: modulus does not fit in 256 bits")
	}
	return m
}()

// Elem is a single element of GF(p).
type Elem struct {
	v uint256.Int
}

// Zero is the additive identity.
var Zero = Elem{}

// One is the multiplicative identity.
var One = FromUint64(1)

// FromUint64 constructs a field element from a raw 64-bit value,
// reducing it mod p. p itself is only slightly below 2^64
// (p = 2^64 - 2^32 + 1), so almost every uint64 passes through
// unreduced; only values in [p, 2^64-1] wrap.
func FromUint64(v uint64) Elem {
	var e Elem
	e.v.SetUint64(v)
	if e.v.Cmp(modulus) >= 0 {
		e.v.Mod(&e.v, modulus)
	}
	return e
}

// Uint64 returns the element's value as a 64-bit integer. This is
// exact, never a truncation: every Elem is a canonical residue mod p,
// and p < 2^64, so the value is always representable in full in 64
// bits — including the output of Add, Sub, Mul and MulAdd, not only
// values freshly constructed by FromUint64.
func (e Elem) Uint64() uint64 {
	return e.v.Uint64()
}

// IsZero reports whether e is the additive identity.
func (e Elem) IsZero() bool {
	return e.v.IsZero()
}

// Add returns a+b mod p.
func Add(a, b Elem) Elem {
	var out Elem
	out.v.AddMod(&a.v, &b.v, modulus)
	return out
}

// Sub returns a-b mod p.
func Sub(a, b Elem) Elem {
	var negB uint256.Int
	negB.Sub(modulus, &b.v)
	var out Elem
	out.v.AddMod(&a.v, &negB, modulus)
	return out
}

// Mul returns a*b mod p.
func Mul(a, b Elem) Elem {
	var out Elem
	out.v.MulMod(&a.v, &b.v, modulus)
	return out
}

// MulAdd returns acc + a*b mod p, the inner-loop operation of RLNC
// linear combination.
func MulAdd(acc, a, b Elem) Elem {
	return Add(acc, Mul(a, b))
}

// Inverse returns the multiplicative inverse of a nonzero element,
// i.e. the field element b such that Mul(a, b) == One.
//
// uint256.Int intentionally has no extended-GCD/modular-inverse
// primitive (it targets EVM arithmetic, which never needs one), so
// this one operation is computed via math/big's ModInverse and
// narrowed back into a uint256.Int.
func Inverse(a Elem) (Elem, bool) {
	if a.IsZero() {
		return Elem{}, false
	}
	aBig := a.v.ToBig()
	pBig := modulus.ToBig()
	invBig := new(big.Int).ModInverse(aBig, pBig)
	if invBig == nil {
		return Elem{}, false
	}
	inv, overflow := uint256.FromBig(invBig)
	if overflow {
		return Elem{}, false
	}
	return Elem{v: *inv}, true
}

// Div returns a/b mod p. It reports false if b is zero.
func Div(a, b Elem) (Elem, bool) {
	inv, ok := Inverse(b)
	if !ok {
		return Elem{}, false
	}
	return Mul(a, inv), true
}

// Equal reports whether a and b represent the same field element.
func Equal(a, b Elem) bool {
	return a.v.Eq(&b.v)
}
