package p384

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"unsafe"

	"p384.mleku.dev/limb"
)

// Scalar is a group-order-reduced integer in plain (non-Montgomery)
// form, stored as 6 uint64 limbs, least significant first, always
// strictly below the group order N.
type Scalar struct {
	d [Limbs]uint64
}

// MontgomeryScalar is an element of the scalar field modulo N in
// Montgomery form (value * R mod N, R = 2^384), always strictly
// below N. It is a distinct type from FieldElement so the two moduli
// and their reduction constants can never be mixed.
type MontgomeryScalar struct {
	d [Limbs]uint64
}

// Scalar group constants
const (
	// scalarNN0 is -N^-1 mod 2^64, the Montgomery reduction constant
	// for the group order. It pairs with scalarN and nothing else.
	scalarNN0 = 0x6ed46089e88fdc45
)

var (
	// scalarN is the group order of P-384.
	scalarN = [Limbs]uint64{
		0xecec196accc52973, 0x581a0db248b0a77a, 0xc7634d81f4372ddf,
		0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
	}

	// scalarNMinusTwo is the public Fermat exponent N - 2.
	scalarNMinusTwo = [Limbs]uint64{
		0xecec196accc52971, 0x581a0db248b0a77a, 0xc7634d81f4372ddf,
		0xffffffffffffffff, 0xffffffffffffffff, 0xffffffffffffffff,
	}

	// scalarRR is R^2 mod N, the factor that carries a plain scalar
	// into Montgomery form.
	scalarRR = &MontgomeryScalar{d: [Limbs]uint64{
		0x2d319b2419b409a9, 0xff3d81e5df1aa419, 0xbc3e483afcb82947,
		0xd40d49174aab1cc5, 0x3fb05b7a28266895, 0x0c84ee012b39bf21,
	}}

	// MontgomeryScalarOne is the Montgomery form of 1, i.e. R mod N.
	MontgomeryScalarOne = MontgomeryScalar{d: [Limbs]uint64{
		0x1313e695333ad68d, 0xa7e5f24db74f5885, 0x389cb27e0bc8d220,
		0x0000000000000000, 0x0000000000000000, 0x0000000000000000,
	}}
)

var (
	errScalarLength = errors.New("p384: scalar encoding must be 48 bytes")
	errScalarRange  = errors.New("p384: encoded value not below the group order")
)

// MulMont computes the Montgomery product r = a * b * R^-1 mod N,
// reduced with the group order's own constant. r may alias a or b.
func (r *MontgomeryScalar) MulMont(a, b *MontgomeryScalar) {
	limb.MulMont(r.d[:], a.d[:], b.d[:], scalarN[:], scalarNN0)
}

// ToMont sets r to the Montgomery form of the plain scalar a, by
// multiplying with R^2 mod N.
func (r *MontgomeryScalar) ToMont(a *Scalar) {
	limb.MulMont(r.d[:], a.d[:], scalarRR.d[:], scalarN[:], scalarNN0)
}

// FromMont sets r to the plain value of the Montgomery-form a.
func (r *Scalar) FromMont(a *MontgomeryScalar) {
	one := [Limbs]uint64{1}
	limb.MulMont(r.d[:], a.d[:], one[:], scalarN[:], scalarNN0)
}

// InvToMont sets r to the Montgomery-form multiplicative inverse of
// the nonzero reduced scalar a, i.e. a^-1 * R mod N, so that
// multiplying it with the Montgomery form of a yields MontgomeryScalarOne.
//
// The inverse is a^(N-2) by Fermat's little theorem, computed with
// left-to-right fixed 4-bit windows in the Montgomery domain. The
// exponent N-2 is a public constant, so the table indexing and the
// skipped multiplies on zero windows depend only on public data; the
// secret base flows exclusively through MulMont.
//
// A zero input has no inverse and produces the zero scalar; callers
// must reject zero before inverting.
func (r *MontgomeryScalar) InvToMont(a *Scalar) {
	var base MontgomeryScalar
	base.ToMont(a)

	// base^1 .. base^15 for the window digits.
	var table [16]MontgomeryScalar
	table[1] = base
	for i := 2; i < 16; i++ {
		table[i].MulMont(&table[i-1], &base)
	}

	acc := MontgomeryScalarOne
	for i := Limbs - 1; i >= 0; i-- {
		for shift := 60; shift >= 0; shift -= 4 {
			for k := 0; k < 4; k++ {
				acc.MulMont(&acc, &acc)
			}
			if w := (scalarNMinusTwo[i] >> uint(shift)) & 0xf; w != 0 {
				acc.MulMont(&acc, &table[w])
			}
		}
	}
	*r = acc
}

// SetBytes sets r from a 48-byte big-endian encoding. Values not
// strictly below N are rejected.
func (r *Scalar) SetBytes(b []byte) error {
	if len(b) != Size {
		return errScalarLength
	}
	var t [Limbs]uint64
	for i := 0; i < Limbs; i++ {
		t[i] = binary.BigEndian.Uint64(b[8*(Limbs-1-i):])
	}
	if limb.Cmp(t[:], scalarN[:]) >= 0 {
		return errScalarRange
	}
	r.d = t
	return nil
}

// Bytes writes the 48-byte big-endian encoding of r into b.
func (r *Scalar) Bytes(b []byte) {
	if len(b) != Size {
		panic("p384: scalar buffer must be 48 bytes")
	}
	for i := 0; i < Limbs; i++ {
		binary.BigEndian.PutUint64(b[8*(Limbs-1-i):], r.d[i])
	}
}

// IsZero reports whether r is zero, in constant time.
func (r *Scalar) IsZero() bool {
	var acc uint64
	for i := range r.d {
		acc |= r.d[i]
	}
	return acc == 0
}

// Equal reports whether r and a hold the same value, in constant time.
func (r *Scalar) Equal(a *Scalar) bool {
	return subtle.ConstantTimeCompare(
		(*[Limbs * 8]byte)(unsafe.Pointer(&r.d[0]))[:],
		(*[Limbs * 8]byte)(unsafe.Pointer(&a.d[0]))[:],
	) == 1
}

// Equal reports whether r and a hold the same value, in constant time.
func (r *MontgomeryScalar) Equal(a *MontgomeryScalar) bool {
	return subtle.ConstantTimeCompare(
		(*[Limbs * 8]byte)(unsafe.Pointer(&r.d[0]))[:],
		(*[Limbs * 8]byte)(unsafe.Pointer(&a.d[0]))[:],
	) == 1
}

// Clear zeroes r so spent secrets do not linger.
func (r *Scalar) Clear() {
	for i := range r.d {
		r.d[i] = 0
	}
}

// Clear zeroes r so spent secrets do not linger.
func (r *MontgomeryScalar) Clear() {
	for i := range r.d {
		r.d[i] = 0
	}
}
