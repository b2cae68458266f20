/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vectors

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/pkg/errors"
)

// Test is one block of a vector file. Type is the first key of the block.
type Test struct {
	Type   string
	Line   int
	Values map[string]*bn.Int
}

// Get returns the value stored under key.
func (t *Test) Get(key string) (*bn.Int, error) {
	v, ok := t.Values[key]
	if !ok {
		return nil, errors.Errorf("line %d: %s test is missing %s", t.Line, t.Type, key)
	}
	return v, nil
}

// Keys returns the keys of the block in sorted order.
func (t *Test) Keys() []string {
	keys := make([]string, 0, len(t.Values))
	for k := range t.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Scanner reads Tests from a vector file. Blocks are runs of "Key = value"
// lines, with values in hexadecimal and an optional leading '-'. Blank lines
// end a block and lines starting with '#' are ignored.
type Scanner struct {
	lines *bufio.Scanner
	line  int
	test  *Test
	err   error
}

// NewScanner returns a Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &Scanner{lines: lines}
}

// Scan advances to the next Test, returning false at the end of the input or
// on error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	s.test = nil
	for s.lines.Scan() {
		s.line++
		text := strings.TrimSpace(s.lines.Text())
		if strings.HasPrefix(text, "#") {
			continue
		}
		if text == "" {
			if s.test != nil {
				return true
			}
			continue
		}
		if err := s.addLine(text); err != nil {
			s.err = err
			s.test = nil
			return false
		}
	}
	if err := s.lines.Err(); err != nil {
		s.err = errors.Wrapf(err, "reading line %d", s.line+1)
		s.test = nil
		return false
	}
	return s.test != nil
}

func (s *Scanner) addLine(text string) error {
	key, value, ok := strings.Cut(text, "=")
	if !ok {
		return errors.Errorf("line %d: expected 'Key = value', got %q", s.line, text)
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" {
		return errors.Errorf("line %d: empty key", s.line)
	}

	v := new(bn.Int)
	n, err := v.ParseHex(value)
	if err != nil {
		return errors.WithMessagef(err, "line %d: parsing %s", s.line, key)
	}
	if n != len(value) {
		return errors.Errorf("line %d: trailing data in %s value %q", s.line, key, value)
	}

	if s.test == nil {
		s.test = &Test{Type: key, Line: s.line, Values: map[string]*bn.Int{}}
	}
	if _, dup := s.test.Values[key]; dup {
		return errors.Errorf("line %d: duplicate key %s", s.line, key)
	}
	s.test.Values[key] = v
	return nil
}

// Test returns the Test read by the last successful call to Scan.
func (s *Scanner) Test() *Test {
	return s.test
}

// Err returns the first error encountered by the Scanner.
func (s *Scanner) Err() error {
	return s.err
}
