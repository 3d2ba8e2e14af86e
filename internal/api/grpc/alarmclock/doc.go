// Package alarmclock implements the gRPC transport of the alarm daemon.
//
// The service is described by hand (ServiceDesc) instead of generated code.
// Its messages are protobuf well-known types: requests and responses are
// structpb.Struct documents with the fields listed next to each converter,
// and argument-less calls take emptypb.Empty. The package adapts domain types
// to those documents and maps domain errors to gRPC status codes.
package alarmclock
