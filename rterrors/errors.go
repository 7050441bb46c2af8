package rterrors

import (
	"errors"
	"strings"
)

// Encoding (E) Errors
var (
	ErrUnsupported       = errors.New("E1|Unsupported: Operation has no encoder for the active target.")
	ErrOperandKind       = errors.New("E2|OperandKind: Operand kind is not accepted in this position.")
	ErrRegisterRange     = errors.New("E3|RegisterRange: Register index is outside the usable register file.")
	ErrDisplacementRange = errors.New("E4|DisplacementRange: Displacement does not fit its constructor class.")
	ErrImmediateRange    = errors.New("E5|ImmediateRange: Immediate does not fit its constructor class.")
	ErrBranchRange       = errors.New("E6|BranchRange: Branch target is out of reach of the branch encoding.")
	ErrElement           = errors.New("E7|Element: Element type is not valid for this operation.")
)

// Configuration (C) Errors
var (
	ErrTargetConfig = errors.New("C1|TargetConfig: Inconsistent target configuration.")
	ErrScratch      = errors.New("C2|Scratch: Fallback path needs a valid scratch region.")
	ErrProfile      = errors.New("C3|Profile: Unknown target profile.")
)

// Program (P) Errors
var (
	ErrLabel    = errors.New("P1|Label: Label is unbound or bound twice.")
	ErrMnemonic = errors.New("P2|Mnemonic: Unknown portable instruction.")
	ErrArity    = errors.New("P3|Arity: Wrong number of operands.")
	ErrSyntax   = errors.New("P4|Syntax: Malformed operand text.")
)

// Execution (X) Errors
var (
	ErrExecUnavailable = errors.New("X1|ExecUnavailable: Code execution is not available on this host.")
	ErrMemoryBounds    = errors.New("X2|MemoryBounds: Memory access outside the data region.")
	ErrStepLimit       = errors.New("X3|StepLimit: Program exceeded the step limit.")
)

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	if len(parts) < 2 {
		return errStr
	}
	// Split on ':' to separate the error name from its description.
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}
