// Package password hashes and verifies account passwords with bcrypt.
//
// Digests are standard modular-crypt strings ($2a$/$2b$) with the salt and
// cost embedded, so a digest produced under one cost still verifies after the
// configured cost changes.
//
// Hashing is deliberately slow. Every Hash/Verify call takes a slot from a
// bounded pool before doing CPU work; callers queue on the pool and give up
// when their context ends.
package password
