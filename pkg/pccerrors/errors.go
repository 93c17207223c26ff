// Package pccerrors maps this module's error taxonomy onto
// google.golang.org/grpc/status errors, used here as a
// general-purpose structured error type even outside of an RPC
// context.
package pccerrors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EmptyInput is returned when a construction is attempted with no
// leaves, or zero-length source data, where that is disallowed.
func EmptyInput(format string, args ...interface{}) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// IndexOutOfBounds is returned when a proof or chunkset is accessed
// past its extent.
func IndexOutOfBounds(format string, args ...interface{}) error {
	return status.Errorf(codes.OutOfRange, format, args...)
}

// InvalidProof is returned when a Merkle inclusion proof does not
// validate against the expected root.
func InvalidProof(format string, args ...interface{}) error {
	return status.Errorf(codes.FailedPrecondition, format, args...)
}

// InvalidChunkMetadata is returned when a chunk's index, payload
// length or coefficient length is malformed.
func InvalidChunkMetadata(format string, args ...interface{}) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// MalformedChunk is returned when a PCC fails to deserialize.
func MalformedChunk(format string, args ...interface{}) error {
	return status.Errorf(codes.DataLoss, format, args...)
}

// InvalidChunksetSize is returned when a chunkset build is attempted
// with input that is not exactly CHUNKSET_SIZE bytes.
func InvalidChunksetSize(format string, args ...interface{}) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// NotReady is returned when repair is attempted before a chunkset has
// accumulated rank 10.
func NotReady(format string, args ...interface{}) error {
	return status.Errorf(codes.FailedPrecondition, format, args...)
}

// AlreadyReady is returned when a chunk is submitted to a chunkset
// that has already reached readiness.
func AlreadyReady(format string, args ...interface{}) error {
	return status.Errorf(codes.FailedPrecondition, format, args...)
}

// Is reports whether err carries the given gRPC code, unwrapping
// status errors as needed.
func Is(err error, code codes.Code) bool {
	return status.Code(err) == code
}
