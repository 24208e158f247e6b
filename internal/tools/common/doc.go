// Package common provides shared utilities for MCP tool implementations:
// instrumentation of tool handlers and argument parsing helpers.
package common
