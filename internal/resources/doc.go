// Package resources provides MCP resources describing how meetings are booked.
// Resources are read-only data sources that MCP clients can fetch, such as
// the organizer identity and the scheduling settings in effect.
package resources
