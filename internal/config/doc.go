// Package config defines the settings shared by alarm-daemon and alarm-clock
// and provides helpers to load, validate and save them in YAML format.
package config
