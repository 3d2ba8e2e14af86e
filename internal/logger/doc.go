// Package logger wraps zap to give every service of the alarm clock:
//   - a global sugared logger with a compact console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing,
//   - printf and key-value shortcuts (Infof, ErrorKV, etc.).
//
// Services never hold a logger field; they pull it out of the context they
// were called with, so names and fields attached upstream follow the call.
package logger
