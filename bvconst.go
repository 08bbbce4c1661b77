package smtpipe

import (
	"fmt"
	"math/big"
	"strings"
)

var zero = big.NewInt(0)
var one = big.NewInt(1)

// BVConst is a fixed-width bitvector value. Operations mutate the receiver.
type BVConst struct {
	Size  uint
	mask  *big.Int
	value *big.Int
}

func makeMask(size uint) *big.Int {
	v := big.NewInt(1)
	v.Lsh(v, size)
	return v.Sub(v, one)
}

func MakeBVConst(value int64, size uint) *BVConst {
	return MakeBVConstFromBigint(big.NewInt(value), size)
}

// MakeBVConstFromBigint wraps value (two's complement when negative) into size bits.
func MakeBVConstFromBigint(value *big.Int, size uint) *BVConst {
	if size == 0 {
		return nil
	}

	mask := makeMask(size)
	v := new(big.Int).Set(value)
	if v.Sign() < 0 {
		modulus := new(big.Int).Add(mask, one)
		v.Mod(v, modulus)
	}
	v.And(v, mask)
	return &BVConst{Size: size, mask: mask, value: v}
}

// MakeBVConstFromString parses digits in the given base; it returns nil on malformed input.
func MakeBVConstFromString(s string, base int, size uint) *BVConst {
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil
	}
	return MakeBVConstFromBigint(v, size)
}

func (bv *BVConst) checkSize(o *BVConst) error {
	if bv.Size != o.Size {
		return fmt.Errorf("different sizes %d and %d", bv.Size, o.Size)
	}
	return nil
}

func (bv *BVConst) IsNegative() bool {
	return bv.value.Bit(int(bv.Size)-1) == 1
}

func (bv *BVConst) IsZero() bool {
	return bv.value.Sign() == 0
}

func (bv *BVConst) IsOne() bool {
	return bv.value.Cmp(one) == 0
}

func (bv *BVConst) HasAllBitsSet() bool {
	return bv.value.Cmp(bv.mask) == 0
}

func (bv *BVConst) Copy() *BVConst {
	return &BVConst{
		Size:  bv.Size,
		mask:  new(big.Int).Set(bv.mask),
		value: new(big.Int).Set(bv.value),
	}
}

func (bv *BVConst) String() string {
	return fmt.Sprintf("<BV%d 0x%x>", bv.Size, bv.value)
}

// Unsigned returns a copy of the value read as an unsigned integer.
func (bv *BVConst) Unsigned() *big.Int {
	return new(big.Int).Set(bv.value)
}

// Signed returns a copy of the value read as a two's complement integer.
func (bv *BVConst) Signed() *big.Int {
	v := new(big.Int).Set(bv.value)
	if bv.IsNegative() {
		modulus := new(big.Int).Add(bv.mask, one)
		v.Sub(v, modulus)
	}
	return v
}

func (bv *BVConst) FitInLong() bool {
	return bv.value.BitLen() <= 64
}

func (bv *BVConst) AsULong() uint64 {
	// if it does not `FitInLong`, result is undefined
	return bv.value.Uint64()
}

func (bv *BVConst) AsLong() int64 {
	return bv.Signed().Int64()
}

// BinaryString returns the SMT-LIB #b digits, zero padded to Size.
func (bv *BVConst) BinaryString() string {
	s := bv.value.Text(2)
	return strings.Repeat("0", int(bv.Size)-len(s)) + s
}

// HexString returns the SMT-LIB #x digits, zero padded to Size/4; Size must be a multiple of 4.
func (bv *BVConst) HexString() string {
	s := bv.value.Text(16)
	return strings.Repeat("0", int(bv.Size/4)-len(s)) + s
}

func (bv *BVConst) Not() {
	bv.value.Xor(bv.value, bv.mask)
}

func (bv *BVConst) Neg() {
	bv.value.Neg(bv.value)
	modulus := new(big.Int).Add(bv.mask, one)
	bv.value.Mod(bv.value, modulus)
}

func (bv *BVConst) Add(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	bv.value.Add(bv.value, o.value)
	bv.value.And(bv.value, bv.mask)
	return nil
}

func (bv *BVConst) Sub(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	modulus := new(big.Int).Add(bv.mask, one)
	bv.value.Sub(bv.value, o.value)
	bv.value.Mod(bv.value, modulus)
	return nil
}

func (bv *BVConst) Mul(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	bv.value.Mul(bv.value, o.value)
	bv.value.And(bv.value, bv.mask)
	return nil
}

// UDiv follows SMT-LIB: division by zero yields all ones.
func (bv *BVConst) UDiv(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	if o.IsZero() {
		bv.value.Set(bv.mask)
		return nil
	}
	bv.value.Quo(bv.value, o.value)
	return nil
}

// URem follows SMT-LIB: remainder by zero yields the dividend.
func (bv *BVConst) URem(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	if o.IsZero() {
		return nil
	}
	bv.value.Rem(bv.value, o.value)
	return nil
}

func (bv *BVConst) SDiv(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}

	sNeg, tNeg := bv.IsNegative(), o.IsNegative()
	t := o.Copy()
	if sNeg {
		bv.Neg()
	}
	if tNeg {
		t.Neg()
	}
	bv.UDiv(t)
	if sNeg != tNeg {
		bv.Neg()
	}
	return nil
}

func (bv *BVConst) SRem(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}

	sNeg := bv.IsNegative()
	t := o.Copy()
	if sNeg {
		bv.Neg()
	}
	if t.IsNegative() {
		t.Neg()
	}
	bv.URem(t)
	if sNeg {
		bv.Neg()
	}
	return nil
}

func (bv *BVConst) And(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	bv.value.And(bv.value, o.value)
	return nil
}

func (bv *BVConst) Or(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	bv.value.Or(bv.value, o.value)
	return nil
}

func (bv *BVConst) Xor(o *BVConst) error {
	if err := bv.checkSize(o); err != nil {
		return err
	}
	bv.value.Xor(bv.value, o.value)
	return nil
}

// shiftAmount reads o as an unsigned shift distance, saturated at bv.Size.
func (bv *BVConst) shiftAmount(o *BVConst) uint {
	if !o.FitInLong() || o.AsULong() >= uint64(bv.Size) {
		return bv.Size
	}
	return uint(o.AsULong())
}

func (bv *BVConst) Shl(n uint) {
	if n >= bv.Size {
		bv.value.SetInt64(0)
		return
	}
	bv.value.Lsh(bv.value, n)
	bv.value.And(bv.value, bv.mask)
}

func (bv *BVConst) LShr(n uint) {
	if n >= bv.Size {
		bv.value.SetInt64(0)
		return
	}
	bv.value.Rsh(bv.value, n)
}

func (bv *BVConst) AShr(n uint) {
	isNeg := bv.IsNegative()
	if n >= bv.Size {
		if isNeg {
			bv.value.Set(bv.mask)
		} else {
			bv.value.SetInt64(0)
		}
		return
	}
	if n == 0 {
		return
	}

	bv.value.Rsh(bv.value, n)
	if isNeg {
		fill := makeMask(n)
		fill.Lsh(fill, bv.Size-n)
		bv.value.Or(bv.value, fill)
	}
}

// Concat appends o as the low-order bits.
func (bv *BVConst) Concat(o *BVConst) {
	bv.Size += o.Size
	bv.mask = makeMask(bv.Size)
	bv.value.Lsh(bv.value, o.Size)
	bv.value.Or(bv.value, o.value)
}

func (bv *BVConst) Slice(high uint, low uint) *BVConst {
	if high < low || high >= bv.Size {
		return nil
	}

	res := MakeBVConst(0, high-low+1)
	res.value.Rsh(bv.value, low)
	res.value.And(res.value, res.mask)
	return res
}

func (bv *BVConst) ZExt(bits uint) {
	bv.Size += bits
	bv.mask = makeMask(bv.Size)
}

func (bv *BVConst) SExt(bits uint) {
	if !bv.IsNegative() {
		bv.ZExt(bits)
		return
	}

	newBits := makeMask(bits)
	newBits.Lsh(newBits, bv.Size)
	bv.value.Or(bv.value, newBits)

	bv.Size += bits
	bv.mask = makeMask(bv.Size)
}

func (bv *BVConst) Eq(o *BVConst) (bool, error) {
	if err := bv.checkSize(o); err != nil {
		return false, err
	}
	return bv.value.Cmp(o.value) == 0, nil
}

func (bv *BVConst) ULt(o *BVConst) (bool, error) {
	if err := bv.checkSize(o); err != nil {
		return false, err
	}
	return bv.value.Cmp(o.value) < 0, nil
}

func (bv *BVConst) ULe(o *BVConst) (bool, error) {
	if err := bv.checkSize(o); err != nil {
		return false, err
	}
	return bv.value.Cmp(o.value) <= 0, nil
}

func (bv *BVConst) SLt(o *BVConst) (bool, error) {
	if err := bv.checkSize(o); err != nil {
		return false, err
	}
	return bv.Signed().Cmp(o.Signed()) < 0, nil
}

func (bv *BVConst) SLe(o *BVConst) (bool, error) {
	if err := bv.checkSize(o); err != nil {
		return false, err
	}
	return bv.Signed().Cmp(o.Signed()) <= 0, nil
}
