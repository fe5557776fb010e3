package syclbench

import (
	"testing"

	"github.com/pkg/errors"
)

func TestStructuredErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType ErrorType
		wantOp   string
		wantMsg  string
		checkFn  func(error) bool
	}{
		{
			name:     "Double Free",
			err:      ErrDoubleFree,
			wantType: ErrTypeMemory,
			wantOp:   "Release",
			wantMsg:  "double free detected",
			checkFn:  func(err error) bool { return errors.Is(err, ErrDoubleFree) },
		},
		{
			name:     "Invalid Size",
			err:      ErrInvalidSize,
			wantType: ErrTypeInvalidArg,
			wantOp:   "Malloc",
			wantMsg:  "size must not be negative",
			checkFn:  IsInvalidArgError,
		},
		{
			name:     "No Device Error",
			err:      ErrNoDevice,
			wantType: ErrTypeDevice,
			wantOp:   "SelectDevice",
			wantMsg:  "no compute device of the requested type",
			checkFn:  IsDeviceError,
		},
		{
			name:     "Queue Closed",
			err:      ErrQueueClosed,
			wantType: ErrTypeExecution,
			wantOp:   "Submit",
			wantMsg:  "queue is closed",
			checkFn:  IsExecutionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := tt.err.(*Error)
			if !ok {
				t.Fatalf("Expected *Error, got %T", tt.err)
			}
			if e.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", e.Type, tt.wantType)
			}
			if e.Op != tt.wantOp {
				t.Errorf("Op = %v, want %v", e.Op, tt.wantOp)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", e.Message, tt.wantMsg)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("Type check function returned false")
			}
			if tt.err.Error() == "" {
				t.Error("Error string is empty")
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	baseErr := errors.New("base error")
	wrappedErr := NewExecutionError("Test", "wrapped error", baseErr)

	e, ok := wrappedErr.(*Error)
	if !ok {
		t.Fatal("Expected *Error")
	}
	if e.Unwrap() != baseErr {
		t.Errorf("Unwrap() = %v, want %v", e.Unwrap(), baseErr)
	}
	if !errors.Is(wrappedErr, baseErr) {
		t.Error("errors.Is() should return true for wrapped error")
	}

	// Predicates see through additional wrapping.
	outer := errors.Wrap(wrappedErr, "benchmark run")
	if !IsExecutionError(outer) {
		t.Errorf("IsExecutionError(%v) = false", outer)
	}
	if IsDeviceError(outer) {
		t.Errorf("IsDeviceError(%v) = true", outer)
	}
}

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    string
	}{
		{ErrTypeMemory, "Memory"},
		{ErrTypeInvalidArg, "InvalidArgument"},
		{ErrTypeExecution, "Execution"},
		{ErrTypeDevice, "Device"},
		{ErrorType(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.errType.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectDevice(t *testing.T) {
	for _, kind := range []string{"", "default", "cpu", "CPU", "host"} {
		dev, err := SelectDevice(kind)
		if err != nil {
			t.Fatalf("SelectDevice(%q) failed: %v", kind, err)
		}
		if dev.ComputeUnits < 1 || dev.MaxLocalSize != MaxLocalSize {
			t.Errorf("SelectDevice(%q) = %+v", kind, dev)
		}
	}
	if _, err := SelectDevice("gpu"); !IsDeviceError(err) {
		t.Errorf("SelectDevice(gpu) error = %v, want device error", err)
	}
	if _, err := SelectDevice("fpga-cluster"); !IsInvalidArgError(err) {
		t.Errorf("SelectDevice(fpga-cluster) error = %v, want invalid argument", err)
	}
}
