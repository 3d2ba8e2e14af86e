// Package wakes persists the pending entries of the exact-wake registry.
//
// The FileRepository stores them as protobuf JSON (protojson) in a single
// file and implements wakeup.Store.
package wakes
