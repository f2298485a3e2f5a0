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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDead indicates that the actor is no longer alive or has been terminated.
	ErrDead = errors.New("actor is not alive")

	// ErrNameRequired is returned when an actor or actor system name is missing.
	ErrNameRequired = errors.New("name is required")

	// ErrActorSystemNotStarted is returned when the actor system is used before Start.
	ErrActorSystemNotStarted = errors.New("actor system has not started yet")

	// ErrActorSystemAlreadyStarted is returned when Start is called twice.
	ErrActorSystemAlreadyStarted = errors.New("actor system has already started")

	// ErrActorAlreadyExists is returned when spawning an actor on an address already in use.
	ErrActorAlreadyExists = errors.New("actor already exists")

	// ErrActorNotFound indicates that the specified actor could not be found in the system.
	ErrActorNotFound = errors.New("actor not found")

	// ErrNotResolvable is returned when an identity does not map to a live managed actor.
	ErrNotResolvable = errors.New("actor identity is not resolvable")

	// ErrSelfWatch is reported when an actor is asked to watch itself.
	ErrSelfWatch = errors.New("an actor cannot watch itself")

	// ErrOutsideContext is returned when a watch operation is attempted outside
	// the owning actor's message processing.
	ErrOutsideContext = errors.New("operation is only allowed while the actor is processing a message")

	// ErrInvalidSupervisor is returned when a supervisor decision table is malformed.
	ErrInvalidSupervisor = errors.New("invalid supervisor")

	// ErrInitFailure is returned when the actor's PreStart hook fails.
	ErrInitFailure = errors.New("preStart failed")

	// ErrPreRestartFailure is returned when the actor's PreRestart hook fails.
	ErrPreRestartFailure = errors.New("preRestart failed")

	// ErrPostStopFailure is returned when the actor's PostStop hook fails.
	ErrPostStopFailure = errors.New("postStop failed")

	// ErrTransportNotSet is returned when a remote actor is reached without a transport.
	ErrTransportNotSet = errors.New("transport is not set")

	// ErrRemoteSendFailure is returned when a remote delivery fails.
	ErrRemoteSendFailure = errors.New("remote send failed")

	// ErrInvalidNode is returned when a node identity is malformed.
	ErrInvalidNode = errors.New("invalid node")

	// ErrShutdownTimeout is returned when an actor did not stop in time.
	ErrShutdownTimeout = errors.New("shutdown timed out")

	// ErrMembershipAlreadyStarted is returned when the cluster membership is started twice.
	ErrMembershipAlreadyStarted = errors.New("cluster membership has already started")

	// ErrMembershipNotStarted is returned when the cluster membership is used before it started.
	ErrMembershipNotStarted = errors.New("cluster membership has not started yet")
)

// NewErrNotResolvable returns an ErrNotResolvable for the given identity.
func NewErrNotResolvable(identity string) error {
	return fmt.Errorf("%w: %s", ErrNotResolvable, identity)
}

// NewErrActorNotFound returns an ErrActorNotFound for the given identity.
func NewErrActorNotFound(identity string) error {
	return fmt.Errorf("%w: %s", ErrActorNotFound, identity)
}

// NewErrActorAlreadyExists returns an ErrActorAlreadyExists for the given identity.
func NewErrActorAlreadyExists(identity string) error {
	return fmt.Errorf("%w: %s", ErrActorAlreadyExists, identity)
}

// NewErrInitFailure wraps the PreStart failure.
func NewErrInitFailure(err error) error {
	return errors.Join(ErrInitFailure, err)
}

// NewErrPreRestartFailure wraps the PreRestart failure.
func NewErrPreRestartFailure(err error) error {
	return errors.Join(ErrPreRestartFailure, err)
}

// NewErrPostStopFailure wraps the PostStop failure.
func NewErrPostStopFailure(err error) error {
	return errors.Join(ErrPostStopFailure, err)
}

// NewErrRemoteSendFailure wraps a transport failure.
func NewErrRemoteSendFailure(err error) error {
	return errors.Join(ErrRemoteSendFailure, err)
}

// FaultError marks a programming-error class failure such as a violated
// invariant or an illegal arithmetic operation.
type FaultError struct {
	err error
}

// enforce compilation error
var _ error = (*FaultError)(nil)

// NewFaultError creates an instance of FaultError
func NewFaultError(err error) *FaultError {
	return &FaultError{err: err}
}

// Error implements the standard error interface
func (e *FaultError) Error() string {
	return fmt.Sprintf("fault: %v", e.err)
}

func (e *FaultError) Unwrap() error {
	return e.err
}

// CrashError marks an irrecoverable failure such as resource exhaustion.
// Actors failing with a CrashError are stopped without consulting supervision.
type CrashError struct {
	err error
}

// enforce compilation error
var _ error = (*CrashError)(nil)

// NewCrashError creates an instance of CrashError
func NewCrashError(err error) *CrashError {
	return &CrashError{err: err}
}

// Error implements the standard error interface
func (e *CrashError) Error() string {
	return fmt.Sprintf("crash: %v", e.err)
}

func (e *CrashError) Unwrap() error {
	return e.err
}

// PanicError wraps the value recovered from a panicking actor
type PanicError struct {
	err      error
	location string
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError. location is the
// file:line:function where the panic was raised and may be empty.
func NewPanicError(err error, location string) *PanicError {
	return &PanicError{err: err, location: location}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	if e.location == "" {
		return fmt.Sprintf("panic: %v", e.err)
	}
	return fmt.Sprintf("panic at %s: %v", e.location, e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// Location returns where the panic was raised
func (e *PanicError) Location() string {
	return e.location
}

// ConfigurationError is a local validation failure surfaced to the caller
type ConfigurationError struct {
	err error
}

// enforce compilation error
var _ error = (*ConfigurationError)(nil)

// NewConfigurationError creates an instance of ConfigurationError
func NewConfigurationError(err error) *ConfigurationError {
	return &ConfigurationError{err: err}
}

// Error implements the standard error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.err
}
