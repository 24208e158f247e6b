// Package google provides OAuth2 authentication and token management for the
// Google Calendar, Gmail and userinfo APIs.
//
// Tokens are cached per account in the user cache directory. The TokenProvider
// interface lets other token sources be plugged in, which the adapter tests use
// to avoid touching disk.
package google
