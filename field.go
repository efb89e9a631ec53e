// Package p384 implements the modular arithmetic underneath the NIST
// P-384 curve: field-element addition and Montgomery multiplication
// modulo the field prime Q, Montgomery multiplication and Fermat
// inversion modulo the group order N, and the constant-time selection
// helpers that point arithmetic above this layer depends on.
package p384

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"unsafe"

	"p384.mleku.dev/limb"
)

// Limbs is the number of 64-bit limbs in a field element or scalar:
// the smallest count whose total width covers 384 bits.
const Limbs = 6

// Size is the byte length of an encoded field element or scalar.
const Size = 48

// FieldElement represents an element of the P-384 prime field, stored
// as 6 uint64 limbs, least significant first, in Montgomery form
// (value * R mod Q, where R = 2^384). Every FieldElement is kept
// strictly below Q on entry to and exit from every operation.
type FieldElement struct {
	n [Limbs]uint64
}

// Field constants
const (
	// fieldQN0 is -Q^-1 mod 2^64, the Montgomery reduction constant
	// for the field prime. It pairs with fieldQ and nothing else.
	fieldQN0 = 0x0000000100000001
)

var (
	// fieldQ is the field prime Q = 2^384 - 2^128 - 2^96 + 2^32 - 1.
	fieldQ = [Limbs]uint64{
		0x00000000ffffffff, 0xffffffff00000000, 0xfffffffffffffffe,
		0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
	}

	// fieldRR is R^2 mod Q, the factor that carries a plain value into
	// Montgomery form.
	fieldRR = &FieldElement{n: [Limbs]uint64{
		0xfffffffe00000001, 0x0000000200000000, 0xfffffffe00000000,
		0x0000000200000000, 0x0000000000000001, 0x0000000000000000,
	}}

	// FieldElementZero is the zero element; its Montgomery and plain
	// forms coincide.
	FieldElementZero = FieldElement{}

	// FieldElementOne is the Montgomery form of 1, i.e. R mod Q.
	FieldElementOne = FieldElement{n: [Limbs]uint64{
		0xffffffff00000001, 0x00000000ffffffff, 0x0000000000000001,
		0x0000000000000000, 0x0000000000000000, 0x0000000000000000,
	}}
)

var (
	errFieldLength = errors.New("p384: field element encoding must be 48 bytes")
	errFieldRange  = errors.New("p384: encoded value not below the field modulus")
)

// Add computes r = a + b mod Q. Because a, b < Q the raw sum is below
// 2Q, so at most one subtraction of Q restores the range: if the
// addition carried past the top limb the sum exceeds Q, and otherwise
// it only needs reducing when it compares at or above Q. r may alias
// a or b. Not constant-time (the comparison branches).
func (r *FieldElement) Add(a, b *FieldElement) {
	carry := limb.Add(r.n[:], a.n[:], b.n[:])
	if carry == 0 && limb.Cmp(r.n[:], fieldQ[:]) < 0 {
		return
	}
	limb.Sub(r.n[:], r.n[:], fieldQ[:])
}

// Sub computes r = a - b mod Q in constant time: the borrow of the raw
// subtraction decides, via masked selection, whether Q is added back.
// r may alias a or b.
func (r *FieldElement) Sub(a, b *FieldElement) {
	borrow := limb.Sub(r.n[:], a.n[:], b.n[:])
	var t [Limbs]uint64
	limb.Add(t[:], r.n[:], fieldQ[:])
	mask := limb.Mask(borrow)
	for i := range r.n {
		r.n[i] = limb.Select(mask, t[i], r.n[i])
	}
}

// MulMont computes the Montgomery product r = a * b * R^-1 mod Q. The
// modulus and its reduction constant are fixed here, so field values
// can never be reduced with the scalar group's constants. r may alias
// a or b.
func (r *FieldElement) MulMont(a, b *FieldElement) {
	limb.MulMont(r.n[:], a.n[:], b.n[:], fieldQ[:], fieldQN0)
}

// Sqr computes r = a * a * R^-1 mod Q.
// TODO: dedicated squaring routine; MulMont recomputes the symmetric
// cross terms.
func (r *FieldElement) Sqr(a *FieldElement) {
	r.MulMont(a, a)
}

// ToMontgomery sets r to the Montgomery form of the plain value held
// in a, by multiplying with R^2 mod Q.
func (r *FieldElement) ToMontgomery(a *FieldElement) {
	r.MulMont(a, fieldRR)
}

// FromMontgomery sets r to the plain value of the Montgomery-form a,
// by multiplying with the plain value 1 to fold in the R^-1 factor.
func (r *FieldElement) FromMontgomery(a *FieldElement) {
	one := FieldElement{n: [Limbs]uint64{1}}
	r.MulMont(a, &one)
}

// SetBytes sets r from a 48-byte big-endian encoding. Values not
// strictly below Q are rejected, so the range invariant holds for
// every element that enters through this path.
func (r *FieldElement) SetBytes(b []byte) error {
	if len(b) != Size {
		return errFieldLength
	}
	var t [Limbs]uint64
	for i := 0; i < Limbs; i++ {
		t[i] = binary.BigEndian.Uint64(b[8*(Limbs-1-i):])
	}
	if limb.Cmp(t[:], fieldQ[:]) >= 0 {
		return errFieldRange
	}
	r.n = t
	return nil
}

// Bytes writes the 48-byte big-endian encoding of r into b.
func (r *FieldElement) Bytes(b []byte) {
	if len(b) != Size {
		panic("p384: field element buffer must be 48 bytes")
	}
	for i := 0; i < Limbs; i++ {
		binary.BigEndian.PutUint64(b[8*(Limbs-1-i):], r.n[i])
	}
}

// Equal reports whether r and a hold the same value, in constant time.
func (r *FieldElement) Equal(a *FieldElement) bool {
	return subtle.ConstantTimeCompare(
		(*[Limbs * 8]byte)(unsafe.Pointer(&r.n[0]))[:],
		(*[Limbs * 8]byte)(unsafe.Pointer(&a.n[0]))[:],
	) == 1
}

// IsZero reports whether r is the zero element, in constant time.
func (r *FieldElement) IsZero() bool {
	var acc uint64
	for i := range r.n {
		acc |= r.n[i]
	}
	return acc == 0
}

// CopyConditional overwrites r with a when mask is all ones and leaves
// it unchanged when mask is all zeros. Every limb of r is read and
// rewritten under both mask values, so the timing and memory trace do
// not depend on the mask. Point arithmetic uses this to pick among
// candidate values without revealing which one was chosen.
func (r *FieldElement) CopyConditional(a *FieldElement, mask uint64) {
	for i := range r.n {
		r.n[i] = limb.Select(mask, a.n[i], r.n[i])
	}
}

// Clear zeroes r so spent secrets do not linger.
func (r *FieldElement) Clear() {
	for i := range r.n {
		r.n[i] = 0
	}
}
