package field_test

import (
	"testing"

	"github.com/shardvault/pcc/pkg/field"
	"github.com/stretchr/testify/require"
)

func TestAddCommutative(t *testing.T) {
	a := field.FromUint64(123456789)
	b := field.FromUint64(987654321)
	require.True(t, field.Equal(field.Add(a, b), field.Add(b, a)))
}

func TestSubAddInverse(t *testing.T) {
	a := field.FromUint64(42)
	b := field.FromUint64(17)
	require.True(t, field.Equal(field.Add(field.Sub(a, b), b), a))
}

func TestMulOneIsIdentity(t *testing.T) {
	a := field.FromUint64(9999999)
	require.True(t, field.Equal(field.Mul(a, field.One), a))
}

func TestMulZero(t *testing.T) {
	a := field.FromUint64(9999999)
	require.True(t, field.Equal(field.Mul(a, field.Zero), field.Zero))
}

func TestInverse(t *testing.T) {
	for _, v := range []uint64{1, 2, 3, 12345, 1 << 63, 0xffffffffffffffff} {
		a := field.FromUint64(v)
		inv, ok := field.Inverse(a)
		require.True(t, ok)
		require.True(t, field.Equal(field.Mul(a, inv), field.One), "value %d", v)
	}
}

func TestInverseOfZeroFails(t *testing.T) {
	_, ok := field.Inverse(field.Zero)
	require.False(t, ok)
}

func TestDiv(t *testing.T) {
	a := field.FromUint64(100)
	b := field.FromUint64(5)
	q, ok := field.Div(a, b)
	require.True(t, ok)
	require.True(t, field.Equal(field.Mul(q, b), a))
}

func TestUint64RoundTrip(t *testing.T) {
	// Every value strictly below the modulus (p = 2^64 - 2^32 + 1) round-trips
	// losslessly through FromUint64/Uint64.
	for _, v := range []uint64{0, 1, 42, 1 << 40, 1 << 63, 0xfffffffeffffffff} {
		e := field.FromUint64(v)
		require.Equal(t, v, e.Uint64())
	}
}

func TestFromUint64ReducesValuesAtOrAboveModulus(t *testing.T) {
	// p = 0xFFFFFFFF00000001 itself must reduce to zero, p+1 to one, and
	// 2^64-1 to (2^64-1)-p.
	require.True(t, field.FromUint64(0xffffffff00000001).IsZero())
	require.Equal(t, uint64(1), field.FromUint64(0xffffffff00000002).Uint64())
	require.Equal(t, uint64(0xfffffffe), field.FromUint64(0xffffffffffffffff).Uint64())
}
