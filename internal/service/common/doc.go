// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client for the alarm-clock daemon that speaks
// in domain types and converts status errors back into domain errors.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
