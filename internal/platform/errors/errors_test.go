package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorChainBehavior(t *testing.T) {
	cause := stderrors.New("row missing")
	err := Wrap(CodeNotFound, "record not found", cause)

	if err.Error() != "record not found" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if !stderrors.Is(err, New(CodeNotFound, "other message")) {
		t.Fatal("expected code-based matching")
	}
	if stderrors.Is(err, New(CodeUnknown, "record not found")) {
		t.Fatal("different codes must not match")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "domain error", err: New(CodeRecordIDEmpty, "id required"), want: CodeRecordIDEmpty},
		{name: "wrapped domain error", err: fmt.Errorf("outer: %w", New(CodeNotFound, "missing")), want: CodeNotFound},
		{name: "plain error", err: stderrors.New("boom"), want: CodeUnknown},
		{name: "nil", err: nil, want: CodeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetCode(tc.err); got != tc.want {
				t.Fatalf("GetCode() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{code: CodeRecordIDEmpty, want: codes.InvalidArgument},
		{code: CodeUpdateDataEmpty, want: codes.InvalidArgument},
		{code: CodeRecordMalformed, want: codes.InvalidArgument},
		{code: CodeNotFound, want: codes.NotFound},
		{code: CodeUnknown, want: codes.Internal},
		{code: Code("SOMETHING_ELSE"), want: codes.Internal},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			if got := tc.code.GRPCCode(); got != tc.want {
				t.Fatalf("GRPCCode() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestToGRPCStatusCarriesDetails(t *testing.T) {
	err := WithMetadata(CodeUpdateDataEmpty, "update data is required", map[string]string{"list": "records"})

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected a grpc status error")
	}
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %s", st.Code())
	}

	var info *errdetails.ErrorInfo
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.ErrorInfo); ok {
			info = d
		}
	}
	if info == nil {
		t.Fatal("expected ErrorInfo detail")
	}
	if info.Reason != string(CodeUpdateDataEmpty) {
		t.Fatalf("expected reason %s, got %s", CodeUpdateDataEmpty, info.Reason)
	}
	if info.Domain != Domain {
		t.Fatalf("expected domain %s, got %s", Domain, info.Domain)
	}
	if info.Metadata["list"] != "records" {
		t.Fatalf("expected metadata carried, got %+v", info.Metadata)
	}
}
