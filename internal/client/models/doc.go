// Package models holds the client-side projections of server-owned records:
// users, files, folders, listings and public-share metadata. Nothing here is
// persisted; every value is rebuilt from the latest API response.
package models
