// Package errors provides structured error handling for the mirror daemon.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Mutation precondition errors
	CodeRecordIDEmpty   Code = "RECORD_ID_EMPTY"
	CodeUpdateDataEmpty Code = "UPDATE_DATA_EMPTY"
	CodeRecordMalformed Code = "RECORD_MALFORMED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeRecordIDEmpty,
		CodeUpdateDataEmpty,
		CodeRecordMalformed:
		return codes.InvalidArgument

	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
