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

// Package failure classifies the errors raised by actors.
package failure

import (
	stderrors "errors"
	"runtime"

	"github.com/tochemey/warden/errors"
)

// Class is the failure class of an error
type Class int

const (
	// ClassError is an ordinary, recoverable domain error
	ClassError Class = iota
	// ClassFault is a programming-error class signal
	ClassFault
	// ClassCrash is an irrecoverable runtime failure. It is never supervised.
	ClassCrash
)

// String returns the class name
func (c Class) String() string {
	switch c {
	case ClassError:
		return "error"
	case ClassFault:
		return "fault"
	case ClassCrash:
		return "crash"
	default:
		return "unknown"
	}
}

// Classify returns the class of err. A CrashError anywhere in the chain makes
// it a crash. A FaultError, a recovered panic or a runtime.Error makes it a
// fault. Everything else is an ordinary error.
func Classify(err error) Class {
	var (
		crash   *errors.CrashError
		fault   *errors.FaultError
		panicky *errors.PanicError
		rterr   runtime.Error
	)

	switch {
	case err == nil:
		return ClassError
	case stderrors.As(err, &crash):
		return ClassCrash
	case stderrors.As(err, &fault),
		stderrors.As(err, &panicky),
		stderrors.As(err, &rterr):
		return ClassFault
	default:
		return ClassError
	}
}

// IsSupervised reports whether failures of the class go through supervision
func IsSupervised(class Class) bool {
	return class != ClassCrash
}
