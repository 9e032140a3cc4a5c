// Package status defines the integer result codes returned across the
// public API and a small ring of recently returned codes.
package status

import (
	"errors"
	"fmt"
)

// Code is a result code. Negative values are library failures, zero is
// success and positive values are usage errors. Code implements error so
// internal packages can return it directly.
type Code int

const (
	InvalidErrorNum Code = -4
	NotImplemented  Code = -3
	IsRelease       Code = -2
	GenericFail     Code = -1
	Success         Code = 0
)

const (
	BufferTooSmall Code = iota + 1
	DeviceNotFound
	NotInitialized
	AlreadyInitialized
	NotRunning
	AlreadyRunning
	CantBeInitialized
	ThreadRunning
	ThreadNotRunning
	AlreadyStopped
	ObjectNotFound
	FailSetTexture
	FailAllocateTexture
	SamplingTooSmall
	InvalidParams
	InvalidParamsSumNotSix
	InvalidParamsGreaterThanThree
	InvalidParamsSameValue
	EnableWhenPaused
	DisableWhenPaused
	ExportFailed
	NotAMesh
	NotRecording
	AlreadyRecording
	NegativeCycles
	OvershootTooLow
	NoHookExisting
)

var messages = map[Code]string{
	InvalidErrorNum:               "Fail: the requested error code does not exist",
	NotImplemented:                "This function is not implemented",
	IsRelease:                     "Compiled as release, not as debug",
	GenericFail:                   "Fail: unknown error",
	Success:                       "Success",
	BufferTooSmall:                "Fail: the provided buffer is too small",
	DeviceNotFound:                "Fail: no haptic device found at the requested index",
	NotInitialized:                "Fail: you must initialize the haptic device",
	AlreadyInitialized:            "Fail: the haptic device has already been initialized",
	NotRunning:                    "Fail: the haptic loop is not running (call start first)",
	AlreadyRunning:                "Fail: the haptic loop is already running (call stop first)",
	CantBeInitialized:             "Fail: this call is only allowed while the device is not initialized",
	ThreadRunning:                 "Fail: the haptic loop is still running, retry",
	ThreadNotRunning:              "Fail: the haptic loop did not start, retry",
	AlreadyStopped:                "Fail: the haptic loop was already stopped",
	ObjectNotFound:                "Fail: invalid object id",
	FailSetTexture:                "Fail: could not set texture",
	FailAllocateTexture:           "Fail: could not allocate texture",
	SamplingTooSmall:              "Fail: sampling rate too low (minimum is 1)",
	InvalidParams:                 "Fail: invalid parameters",
	InvalidParamsSumNotSix:        "Fail: invalid parameters (absolute values must sum to 6)",
	InvalidParamsGreaterThanThree: "Fail: invalid parameters (each absolute value must be at most 3)",
	InvalidParamsSameValue:        "Fail: invalid parameters (two axes share the same value)",
	EnableWhenPaused:              "Fail: this feature can only be enabled while the haptic loop is stopped",
	DisableWhenPaused:             "Fail: this feature can only be disabled while the haptic loop is stopped",
	ExportFailed:                  "Fail: could not export to the requested file",
	NotAMesh:                      "Fail: this call requires a mesh object",
	NotRecording:                  "Fail: not recording, nothing to stop",
	AlreadyRecording:              "Fail: already recording, stop the current recording first",
	NegativeCycles:                "Fail: the interpolation period cannot be negative",
	OvershootTooLow:               "Fail: the overshoot factor must be greater than zero",
	NoHookExisting:                "Fail: no force hook is set",
}

// Known reports whether c is a defined code.
func (c Code) Known() bool {
	_, ok := messages[c]
	return ok
}

// Message returns the human readable text for c.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return fmt.Sprintf("unknown status code %d", int(c))
}

func (c Code) Error() string {
	return c.Message()
}

// Of maps an error to its Code. nil is Success and errors that do not wrap
// a Code are GenericFail.
func Of(err error) Code {
	if err == nil {
		return Success
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return GenericFail
}

// MessageFor returns the message of code when it fits into a buffer of
// bufferSize bytes including a terminating zero byte. The returned Code is
// the outcome of the lookup itself.
func MessageFor(code, bufferSize int) (string, Code) {
	c := Code(code)
	if !c.Known() {
		return "", InvalidErrorNum
	}
	msg := c.Message()
	if len(msg)+1 > bufferSize {
		return "", BufferTooSmall
	}
	return msg, Success
}
