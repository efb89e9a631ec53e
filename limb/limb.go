// Package limb provides the fixed-width word arithmetic the p384 field
// and scalar engines are built on: carry-chain addition and subtraction,
// magnitude comparison, branchless selection, and a generic Montgomery
// multiplication parameterized by the modulus and its reduction constant.
package limb

import "math/bits"

// Word is one limb of a multi-word integer. All arithmetic in this
// package is specialized to 64-bit limbs.
type Word = uint64

// The carry chains and the Montgomery reduction assume Word is exactly
// the native 64-bit machine word; compilation fails on targets where it
// is not.
const _ = uint(bits.UintSize - 64)

// maxLimbs bounds the scratch space used by MulMont. 16 limbs covers
// moduli up to 1024 bits.
const maxLimbs = 16

// Add computes r = a + b and returns the carry out of the top limb.
// The slices must have equal length; r may alias a or b.
func Add(r, a, b []Word) (carry Word) {
	for i := range a {
		r[i], carry = bits.Add64(a[i], b[i], carry)
	}
	return carry
}

// Sub computes r = a - b and returns the borrow out of the top limb.
// The slices must have equal length; r may alias a or b.
func Sub(r, a, b []Word) (borrow Word) {
	for i := range a {
		r[i], borrow = bits.Sub64(a[i], b[i], borrow)
	}
	return borrow
}

// Cmp compares a and b as little-limb-endian magnitudes and returns
// -1, 0 or 1. Variable-time: callers that handle secrets must only use
// it where their own contract already permits a data-dependent branch.
func Cmp(a, b []Word) int {
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// Select returns a where mask is all ones and b where mask is all
// zeros, without branching on the mask.
func Select(mask, a, b Word) Word {
	return (a & mask) | (b &^ mask)
}

// Mask expands the low bit of v into an all-ones or all-zeros word.
func Mask(v Word) Word {
	return -(v & 1)
}

// triple is a three-word accumulator for the inner products of the
// Montgomery loop; two 64x64 products plus both carries never overflow
// it.
type triple struct {
	w0, w1, w2 Word
}

func (a *triple) add(b triple) {
	w0, c0 := bits.Add64(a.w0, b.w0, 0)
	w1, c1 := bits.Add64(a.w1, b.w1, c0)
	w2, _ := bits.Add64(a.w2, b.w2, c1)
	a.w0, a.w1, a.w2 = w0, w1, w2
}

func tripleMul(a, b Word) triple {
	hi, lo := bits.Mul64(a, b)
	return triple{w0: lo, w1: hi}
}

// MulMont computes r = a * b * R^-1 mod m with R = 2^(64*len(m)), using
// coarsely integrated operand scanning. m0inv is -m^-1 mod 2^64 and m
// must be odd. a and b must be reduced below m and the result is
// reduced below m. r may alias a or b but must not alias m. The final
// reduction is a trial subtraction resolved by masked selection, so the
// work done does not depend on the operand values.
func MulMont(r, a, b, m []Word, m0inv Word) {
	size := len(m)
	var scratch, diff [maxLimbs]Word
	t := scratch[:size]
	hi := Word(0)

	for i := 0; i < size; i++ {
		// f is chosen so that t + a[i]*b + f*m is divisible by 2^64;
		// the shifted write below performs that division.
		f := (t[0] + a[i]*b[0]) * m0inv
		var c triple
		for j := 0; j < size; j++ {
			z := triple{w0: t[j]}
			z.add(tripleMul(a[i], b[j]))
			z.add(tripleMul(f, m[j]))
			z.add(c)
			if j > 0 {
				t[j-1] = z.w0
			}
			c.w0, c.w1 = z.w1, z.w2
		}
		z := triple{w0: hi}
		z.add(c)
		t[size-1] = z.w0
		hi = z.w1
	}

	// The loop invariant keeps hi:t below 2m, so one subtraction of m
	// restores the range. Subtract unconditionally and keep the
	// difference when the intermediate overflowed a limb or was not
	// already below m.
	d := diff[:size]
	borrow := Sub(d, t, m)
	mask := Mask(hi | (borrow ^ 1))
	for i := 0; i < size; i++ {
		r[i] = Select(mask, d[i], t[i])
	}
}
