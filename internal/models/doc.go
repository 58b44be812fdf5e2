// Package models defines domain entities and persistence interfaces for the Jammming playlist builder.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing provider data
//   - [Track] : Song metadata returned by catalog search
//   - [Playlist] : Playlist metadata held on the provider
//
// 2. Persistent Entities: Database-backed state
//   - [Draft] : A locally assembled playlist, optionally linked to a saved Spotify playlist
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
