// MIT License
//
// Copyright (c) 2022-2026 Arsene Tochemey Gandote
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package supervisor

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/tochemey/warden/failure"
)

// Matcher selects the failures a rule applies to
type Matcher interface {
	// Match reports whether the rule applies to err of the given class
	Match(err error, class failure.Class) bool
	// String describes the matcher in logs
	String() string
}

type classMatcher struct {
	name    string
	classes []failure.Class
}

func (m classMatcher) Match(_ error, class failure.Class) bool {
	for _, c := range m.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (m classMatcher) String() string {
	return m.name
}

// AnyError matches every ordinary error
func AnyError() Matcher {
	return classMatcher{name: "AnyError", classes: []failure.Class{failure.ClassError}}
}

// AnyFault matches every fault, recovered panics included
func AnyFault() Matcher {
	return classMatcher{name: "AnyFault", classes: []failure.Class{failure.ClassFault}}
}

// AnyFailure matches every supervised failure
func AnyFailure() Matcher {
	return classMatcher{name: "AnyFailure", classes: []failure.Class{failure.ClassError, failure.ClassFault}}
}

type typeMatcher struct {
	rtype reflect.Type
}

// MatchType matches failures carrying an error of the same concrete type as
// err anywhere in their chain
func MatchType(err error) Matcher {
	return typeMatcher{rtype: reflect.TypeOf(err)}
}

func (m typeMatcher) Match(err error, _ failure.Class) bool {
	if m.rtype == nil {
		return false
	}
	return walk(err, func(e error) bool {
		return reflect.TypeOf(e) == m.rtype
	})
}

func (m typeMatcher) String() string {
	if m.rtype == nil {
		return "Type(nil)"
	}
	return fmt.Sprintf("Type(%s)", errorType(m.rtype))
}

type errorMatcher struct {
	target error
}

// MatchError matches failures for which errors.Is(err, target) holds
func MatchError(target error) Matcher {
	return errorMatcher{target: target}
}

func (m errorMatcher) Match(err error, _ failure.Class) bool {
	return m.target != nil && errors.Is(err, m.target)
}

func (m errorMatcher) String() string {
	return fmt.Sprintf("Error(%v)", m.target)
}

type funcMatcher struct {
	name string
	fn   func(err error, class failure.Class) bool
}

// MatchFunc matches failures accepted by fn. name is used in logs.
func MatchFunc(name string, fn func(err error, class failure.Class) bool) Matcher {
	return funcMatcher{name: name, fn: fn}
}

func (m funcMatcher) Match(err error, class failure.Class) bool {
	return m.fn != nil && m.fn(err, class)
}

func (m funcMatcher) String() string {
	return m.name
}

// walk visits err and every error it wraps, depth first, until visit returns true
func walk(err error, visit func(error) bool) bool {
	if err == nil {
		return false
	}
	if visit(err) {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		return walk(x.Unwrap(), visit)
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if walk(e, visit) {
				return true
			}
		}
	}
	return false
}

// errorType returns the type name without the pointer marker
func errorType(rtype reflect.Type) string {
	if rtype.Kind() == reflect.Pointer {
		rtype = rtype.Elem()
	}
	return rtype.String()
}
