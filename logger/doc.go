// Package logger provides structured logging on top of zerolog, with
// component tagging and a small Fields helper for call-site key-value
// pairs.
package logger
