package p384

import (
	"math/big"
	"testing"

	"p384.mleku.dev/limb"
)

func benchField(b *testing.B, tag string) FieldElement {
	b.Helper()
	x := new(big.Int).SetBytes(derive48(tag, 0))
	x.Mod(x, bigQ)
	var buf [Size]byte
	x.FillBytes(buf[:])
	var fe FieldElement
	if err := fe.SetBytes(buf[:]); err != nil {
		b.Fatal(err)
	}
	return fe
}

func benchScalar(b *testing.B, tag string) Scalar {
	b.Helper()
	x := new(big.Int).SetBytes(derive48(tag, 0))
	x.Mod(x, bigN)
	var buf [Size]byte
	x.FillBytes(buf[:])
	var s Scalar
	if err := s.SetBytes(buf[:]); err != nil {
		b.Fatal(err)
	}
	return s
}

func BenchmarkFieldAdd(b *testing.B) {
	x := benchField(b, "bench/add/a")
	y := benchField(b, "bench/add/b")
	var r FieldElement
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Add(&x, &y)
	}
}

func BenchmarkFieldMulMont(b *testing.B) {
	x := benchField(b, "bench/mul/a")
	y := benchField(b, "bench/mul/b")
	var r FieldElement
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.MulMont(&x, &y)
	}
}

func BenchmarkFieldSqr(b *testing.B) {
	x := benchField(b, "bench/sqr")
	var r FieldElement
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Sqr(&x)
	}
}

func BenchmarkCopyConditional(b *testing.B) {
	x := benchField(b, "bench/cmov/a")
	y := benchField(b, "bench/cmov/b")
	mask := limb.Mask(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		y.CopyConditional(&x, mask)
	}
}

func BenchmarkScalarMulMont(b *testing.B) {
	s := benchScalar(b, "bench/smul/a")
	u := benchScalar(b, "bench/smul/b")
	var x, y, r MontgomeryScalar
	x.ToMont(&s)
	y.ToMont(&u)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.MulMont(&x, &y)
	}
}

func BenchmarkScalarInvToMont(b *testing.B) {
	s := benchScalar(b, "bench/inv")
	var r MontgomeryScalar
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.InvToMont(&s)
	}
}
