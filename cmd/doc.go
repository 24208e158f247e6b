// Package cmd implements the command-line interface for meetpilot.
//
// This package provides the following commands:
//   - auth: Authorize meetpilot against a Google account
//   - suggest: Propose slots that fit every attendee's routine without booking
//   - schedule: Negotiate, verify, book and send invitations
//   - serve: Start the MCP server to provide the meeting tools to AI assistants
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
