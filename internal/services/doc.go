// Package services defines the catalog consumer contract and its Spotify
// implementation.
//
// The [Service] interface covers everything the playlist builder needs
// from a music provider: track search, the current user's profile, and
// playlist creation/update. [SpotifyService] implements it on top of the
// authenticated request client (internal/client), which handles token
// selection and auth-failure recovery, so this package never sees tokens.
//
// Response payloads are modeled with typed structs matching the Spotify
// Web API reference; only the fields the builder consumes are declared.
package services
