/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vectors

import (
	"context"
	"io"
	"strings"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/hyperledger/fabric-bignum/common/flogging"
	"github.com/hyperledger/fabric-bignum/common/metrics/disabled"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("bn.vectors")

// ErrMismatch is returned when a computed value differs from the vector.
var ErrMismatch = errors.New("vectors: mismatch")

// ErrUnknownType is returned for a block whose first key names no known test.
var ErrUnknownType = errors.New("vectors: unknown test type")

type checkFunc func(t *Test) error

type testType struct {
	keys     []string
	optional []string
	check    checkFunc
}

var testTypes = map[string]testType{
	"Sum":          {keys: []string{"Sum", "A", "B"}, check: checkSum},
	"LShift1":      {keys: []string{"LShift1", "A"}, check: checkLShift1},
	"LShift":       {keys: []string{"LShift", "A", "N"}, check: checkLShift},
	"RShift":       {keys: []string{"RShift", "A", "N"}, check: checkRShift},
	"Square":       {keys: []string{"Square", "A"}, check: checkSquare},
	"Product":      {keys: []string{"Product", "A", "B"}, check: checkProduct},
	"Quotient":     {keys: []string{"Quotient", "Remainder", "A", "B"}, check: checkQuotient},
	"ModMul":       {keys: []string{"ModMul", "A", "B", "M"}, check: checkModMul},
	"ModSquare":    {keys: []string{"ModSquare", "A", "M"}, check: checkModSquare},
	"ModExp":       {keys: []string{"ModExp", "A", "E", "M"}, check: checkModExp},
	"Exp":          {keys: []string{"Exp", "A", "E"}, check: checkExp},
	"ModSqrt":      {keys: []string{"ModSqrt", "A", "P"}, check: checkModSqrt},
	"NotModSquare": {keys: []string{"NotModSquare", "P"}, check: checkNotModSquare},
	"ModInv":       {keys: []string{"ModInv", "A", "M"}, check: checkModInv},
	"GCD":          {keys: []string{"GCD", "A", "B"}, optional: []string{"LCM"}, check: checkGCD},
}

// Checker evaluates vector Tests against the bn package.
type Checker struct {
	Metrics *Metrics
}

// NewChecker returns a Checker that records to metrics, which may be nil.
func NewChecker(m *Metrics) *Checker {
	if m == nil {
		m = NewMetrics(&disabled.Provider{})
	}
	return &Checker{Metrics: m}
}

// Check evaluates a single Test.
func (c *Checker) Check(t *Test) error {
	err := check(t)
	c.Metrics.Checked.With("type", t.Type).Add(1)
	if err != nil {
		c.Metrics.Failed.With("type", t.Type).Add(1)
	}
	return err
}

func check(t *Test) error {
	tt, ok := testTypes[t.Type]
	if !ok {
		return errors.WithMessagef(ErrUnknownType, "line %d: %s", t.Line, t.Type)
	}
	if err := checkKeys(t, tt); err != nil {
		return err
	}
	return tt.check(t)
}

func checkKeys(t *Test, tt testType) error {
	allowed := map[string]bool{}
	for _, k := range tt.keys {
		if _, ok := t.Values[k]; !ok {
			return errors.Errorf("line %d: %s test is missing %s", t.Line, t.Type, k)
		}
		allowed[k] = true
	}
	for _, k := range tt.optional {
		allowed[k] = true
	}
	var extra []string
	for _, k := range t.Keys() {
		if !allowed[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		return errors.Errorf("line %d: %s test has unexpected keys %s", t.Line, t.Type, strings.Join(extra, ", "))
	}
	return nil
}

// Result summarizes a run over a vector file.
type Result struct {
	Checked  int
	Failures []error
}

// Run checks every Test read from r. Failing Tests are collected in the
// Result; a malformed file or a cancelled context stops the run with an
// error.
func (c *Checker) Run(ctx context.Context, name string, r io.Reader) (Result, error) {
	var res Result
	s := NewScanner(r)
	for s.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++
		if err := c.Check(s.Test()); err != nil {
			logger.Debugf("%s: %s", name, err)
			res.Failures = append(res.Failures, errors.WithMessage(err, name))
		}
	}
	if err := s.Err(); err != nil {
		return res, errors.WithMessage(err, name)
	}
	logger.Infof("%s: checked %d vectors, %d failed", name, res.Checked, len(res.Failures))
	return res, nil
}

func mismatch(t *Test, what string, got, want *bn.Int) error {
	return errors.WithMessagef(ErrMismatch, "line %d: %s: got %s, want %s", t.Line, what, got, want)
}

func expect(t *Test, what string, got, want *bn.Int) error {
	if got.Cmp(want) != 0 {
		return mismatch(t, what, got, want)
	}
	return nil
}

// shiftAmount reads N as a shift count.
func shiftAmount(t *Test) (uint, error) {
	n := t.Values["N"]
	w, ok := n.Word()
	if !ok || n.IsNegative() || w > 1<<20 {
		return 0, errors.Errorf("line %d: invalid shift %s", t.Line, n)
	}
	return uint(w), nil
}

func checkSum(t *Test) error {
	a, b, sum := t.Values["A"], t.Values["B"], t.Values["Sum"]
	r := new(bn.Int)
	if err := expect(t, "A + B", r.Add(a, b), sum); err != nil {
		return err
	}
	if err := expect(t, "Sum - A", r.Sub(sum, a), b); err != nil {
		return err
	}
	if err := expect(t, "Sum - B", r.Sub(sum, b), a); err != nil {
		return err
	}
	if w, ok := b.Word(); ok && !a.IsNegative() && !b.IsNegative() {
		r.Set(a).AddWord(w)
		if err := expect(t, "A + B (word)", r, sum); err != nil {
			return err
		}
		r.Set(sum).SubWord(w)
		if err := expect(t, "Sum - B (word)", r, a); err != nil {
			return err
		}
	}
	if !a.IsNegative() && !b.IsNegative() {
		if err := expect(t, "|A| + |B|", r.UAdd(a, b), sum); err != nil {
			return err
		}
		if err := r.USub(sum, a); err != nil {
			return errors.WithMessagef(err, "line %d: |Sum| - |A|", t.Line)
		}
		if err := expect(t, "|Sum| - |A|", r, b); err != nil {
			return err
		}
	}
	return nil
}

func checkLShift1(t *Test) error {
	a, want := t.Values["A"], t.Values["LShift1"]
	r := new(bn.Int)
	if err := expect(t, "A << 1", r.Lsh1(a), want); err != nil {
		return err
	}
	if err := expect(t, "A + A", r.Add(a, a), want); err != nil {
		return err
	}
	if err := expect(t, "LShift1 >> 1", r.Rsh1(want), a); err != nil {
		return err
	}
	if err := r.Lsh(a, 1); err != nil {
		return err
	}
	return expect(t, "A << N(1)", r, want)
}

func checkLShift(t *Test) error {
	a, want := t.Values["A"], t.Values["LShift"]
	n, err := shiftAmount(t)
	if err != nil {
		return err
	}
	r := new(bn.Int)
	if err := r.Lsh(a, n); err != nil {
		return err
	}
	if err := expect(t, "A << N", r, want); err != nil {
		return err
	}
	return expect(t, "LShift >> N", r.Rsh(want, n), a)
}

func checkRShift(t *Test) error {
	a, want := t.Values["A"], t.Values["RShift"]
	n, err := shiftAmount(t)
	if err != nil {
		return err
	}
	r := new(bn.Int)
	if err := expect(t, "A >> N", r.Rsh(a, n), want); err != nil {
		return err
	}
	if !a.IsNegative() {
		return expect(t, "A >> N (secret shift)", r.RshSecretShift(a, n), want)
	}
	return nil
}

func checkSquare(t *Test) error {
	a, want := t.Values["A"], t.Values["Square"]
	r := new(bn.Int)
	if err := expect(t, "A^2", r.Sqr(a), want); err != nil {
		return err
	}
	if err := expect(t, "A * A", r.Mul(a, a), want); err != nil {
		return err
	}
	if err := bn.Sqrt(r, want); err != nil {
		return errors.WithMessagef(err, "line %d: sqrt(Square)", t.Line)
	}
	return expect(t, "sqrt(Square)", r, new(bn.Int).Abs(a))
}

func checkProduct(t *Test) error {
	a, b, want := t.Values["A"], t.Values["B"], t.Values["Product"]
	r := new(bn.Int)
	if err := expect(t, "A * B", r.Mul(a, b), want); err != nil {
		return err
	}
	if err := expect(t, "B * A", r.Mul(b, a), want); err != nil {
		return err
	}
	if a.IsZero() {
		return nil
	}
	q, rem := new(bn.Int), new(bn.Int)
	if err := bn.Div(q, rem, want, a); err != nil {
		return err
	}
	if err := expect(t, "Product / A", q, b); err != nil {
		return err
	}
	return expect(t, "Product % A", rem, new(bn.Int))
}

func checkQuotient(t *Test) error {
	a, b := t.Values["A"], t.Values["B"]
	wantQ, wantR := t.Values["Quotient"], t.Values["Remainder"]
	q, r := new(bn.Int), new(bn.Int)
	if err := bn.Div(q, r, a, b); err != nil {
		return errors.WithMessagef(err, "line %d: A / B", t.Line)
	}
	if err := expect(t, "A / B", q, wantQ); err != nil {
		return err
	}
	if err := expect(t, "A % B", r, wantR); err != nil {
		return err
	}
	// Quotient * B + Remainder = A.
	back := new(bn.Int).Mul(wantQ, b)
	if err := expect(t, "Quotient * B + Remainder", back.Add(back, wantR), a); err != nil {
		return err
	}
	if a.IsNegative() || b.IsNegative() {
		return nil
	}
	if err := bn.DivConstTime(q, r, a, b, b.BitLen()); err != nil {
		return errors.WithMessagef(err, "line %d: A / B (constant time)", t.Line)
	}
	if err := expect(t, "A / B (constant time)", q, wantQ); err != nil {
		return err
	}
	if err := expect(t, "A % B (constant time)", r, wantR); err != nil {
		return err
	}
	if w, ok := b.Word(); ok && w != 0 {
		rem, err := a.ModWord(w)
		if err != nil {
			return err
		}
		if err := expect(t, "A % B (word)", bn.NewWord(rem), wantR); err != nil {
			return err
		}
	}
	return nil
}

func checkModMul(t *Test) error {
	a, b, m, want := t.Values["A"], t.Values["B"], t.Values["M"], t.Values["ModMul"]
	r := new(bn.Int)
	if err := bn.ModMul(r, a, b, m); err != nil {
		return errors.WithMessagef(err, "line %d: A * B mod M", t.Line)
	}
	if err := expect(t, "A * B mod M", r, want); err != nil {
		return err
	}
	if !m.IsOdd() || m.IsNegative() {
		return nil
	}
	mont, err := bn.NewMontCtx(m)
	if err != nil {
		return err
	}
	am, bm := new(bn.Int), new(bn.Int)
	if err := bn.ToMontgomery(am, a, mont); err != nil {
		return err
	}
	if err := bn.ToMontgomery(bm, b, mont); err != nil {
		return err
	}
	if err := bn.ModMulMontgomery(r, am, bm, mont); err != nil {
		return err
	}
	if err := bn.FromMontgomery(r, r, mont); err != nil {
		return err
	}
	return expect(t, "A * B mod M (Montgomery)", r, want)
}

func checkModSquare(t *Test) error {
	a, m, want := t.Values["A"], t.Values["M"], t.Values["ModSquare"]
	r := new(bn.Int)
	if err := bn.ModSqr(r, a, m); err != nil {
		return errors.WithMessagef(err, "line %d: A^2 mod M", t.Line)
	}
	if err := expect(t, "A^2 mod M", r, want); err != nil {
		return err
	}
	if err := bn.ModMul(r, a, a, m); err != nil {
		return err
	}
	return expect(t, "A * A mod M", r, want)
}

func checkModExp(t *Test) error {
	a, e, m, want := t.Values["A"], t.Values["E"], t.Values["M"], t.Values["ModExp"]
	r := new(bn.Int)
	if err := bn.ModExp(r, a, e, m); err != nil {
		return errors.WithMessagef(err, "line %d: A ^ E mod M", t.Line)
	}
	if err := expect(t, "A ^ E mod M", r, want); err != nil {
		return err
	}
	if !m.IsOdd() || m.IsNegative() || a.IsNegative() || a.Cmp(m) >= 0 {
		return nil
	}
	if err := bn.ModExpMontConstTime(r, a, e, m, nil); err != nil {
		return errors.WithMessagef(err, "line %d: A ^ E mod M (constant time)", t.Line)
	}
	if err := expect(t, "A ^ E mod M (constant time)", r, want); err != nil {
		return err
	}
	if w, ok := a.Word(); ok {
		if err := bn.ModExpMontWord(r, w, e, m, nil); err != nil {
			return err
		}
		return expect(t, "A ^ E mod M (word)", r, want)
	}
	return nil
}

func checkExp(t *Test) error {
	a, e, want := t.Values["A"], t.Values["E"], t.Values["Exp"]
	r := new(bn.Int)
	if err := r.Exp(a, e); err != nil {
		return errors.WithMessagef(err, "line %d: A ^ E", t.Line)
	}
	return expect(t, "A ^ E", r, want)
}

func checkModSqrt(t *Test) error {
	a, p, want := t.Values["A"], t.Values["P"], t.Values["ModSqrt"]
	r := new(bn.Int)
	if err := bn.ModSqrt(r, a, p); err != nil {
		return errors.WithMessagef(err, "line %d: sqrt(A) mod P", t.Line)
	}
	// Either root is acceptable.
	if r.Cmp(want) != 0 {
		other := new(bn.Int).Sub(p, r)
		if other.Cmp(p) == 0 {
			other.Zero()
		}
		if other.Cmp(want) != 0 {
			return mismatch(t, "sqrt(A) mod P", r, want)
		}
	}
	sq := new(bn.Int)
	if err := bn.ModSqr(sq, r, p); err != nil {
		return err
	}
	reduced := new(bn.Int)
	if err := bn.NNMod(reduced, a, p); err != nil {
		return err
	}
	return expect(t, "sqrt(A)^2 mod P", sq, reduced)
}

func checkNotModSquare(t *Test) error {
	a, p := t.Values["NotModSquare"], t.Values["P"]
	err := bn.ModSqrt(new(bn.Int), a, p)
	if !errors.Is(err, bn.ErrNotASquare) {
		return errors.WithMessagef(ErrMismatch, "line %d: sqrt(NotModSquare) mod P: got %v, want %v", t.Line, err, bn.ErrNotASquare)
	}
	return nil
}

func checkModInv(t *Test) error {
	a, m, want := t.Values["A"], t.Values["M"], t.Values["ModInv"]
	r := new(bn.Int)
	if err := bn.ModInverse(r, a, m); err != nil {
		return errors.WithMessagef(err, "line %d: A^-1 mod M", t.Line)
	}
	if err := expect(t, "A^-1 mod M", r, want); err != nil {
		return err
	}
	if a.IsNegative() || a.Cmp(m) >= 0 {
		return nil
	}
	if _, err := bn.ModInverseConstTime(r, a, m); err != nil {
		return errors.WithMessagef(err, "line %d: A^-1 mod M (constant time)", t.Line)
	}
	return expect(t, "A^-1 mod M (constant time)", r, want)
}

func checkGCD(t *Test) error {
	a, b, want := t.Values["A"], t.Values["B"], t.Values["GCD"]
	r := new(bn.Int)
	bn.Gcd(r, a, b)
	if err := expect(t, "gcd(A, B)", r, want); err != nil {
		return err
	}
	if lcm, ok := t.Values["LCM"]; ok {
		bn.Lcm(r, a, b)
		if err := expect(t, "lcm(A, B)", r, lcm); err != nil {
			return err
		}
	}
	if want.IsOne() != bn.IsRelativelyPrime(a, b) {
		return errors.WithMessagef(ErrMismatch, "line %d: relatively prime(A, B) disagrees with GCD %s", t.Line, want)
	}
	return nil
}
