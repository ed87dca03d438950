// Package portfolio provides the content model and service for a portfolio
// site: projects with embedded screens, images, skills, contact messages and
// admin users, backed by pluggable repositories and blob stores.
//
// A single Service orchestrates the stores. Implementations of repositories
// (memory, Postgres, SQLite, MongoDB) and blob stores (memory, filesystem, S3)
// live in subpackages and are interchangeable behind the interfaces declared
// here.
//
// Image References
//
// Images are addressed publicly by slug. Projects hold an ImageRef (id and
// slug) for the thumbnail and for every screen, next to a display URL of the
// form /images/{slug}. The URL is derived from the reference on every write
// and is never accepted as input, so the two cannot diverge. References are
// advisory: deleting an image leaves dangling references that resolve to
// ErrImageNotFound when fetched.
//
// Screens
//
// Screens are an ordered array owned by their project. Every screen mutation
// reads the project, changes the array in memory and writes the whole array
// back while holding the project's Locker key, so concurrent admin sessions
// cannot drop each other's edits.
package portfolio
