// Package auth implements a self-contained bearer-token issuance and
// revocation core: registration, credential verification, access/refresh
// token pairs, refresh rotation, access-token blacklisting, and role-based
// authorization guards.
//
// The package is organized around explicitly constructed, dependency-injected
// components; there are no package-level singletons:
//
//   - [TokenCodec] signs and verifies access and refresh tokens with
//     distinct secrets.
//   - [SessionRegistry] tracks live refresh tokens and revoked access tokens
//     in Redis, with TTLs mirroring token lifetimes.
//   - [Users] persists user records through bun.
//   - [Service] orchestrates the authentication flows on top of the three.
//   - [Guard] is the per-request middleware that validates bearer tokens and
//     enforces role checks.
//
// HTTP controllers in the same package expose the flows as a JSON API;
// cmd/authd wires a runnable server.
package auth
