// Package routeconf owns the bbs engine's JSON configuration document:
// proxies, chains, routing tables, listening servers and static hosts.
//
// The Store is the only writer. Each mutating method is one complete
// validate → apply → persist step; persistence is atomic (temp file in the
// target directory, fsync, rename), so the on-disk document is always the
// result of some successful save. Loading a missing or undecodable file
// degrades to an empty document, which is what lets the first invocation
// create the configuration.
//
// Referential rules mirror what the reference tooling enforces: chains are
// checked against proxies when written, route targets are resolved when a
// block or default is written, and deleting a routing table is refused
// while servers still select it. Deleting a chain does NOT sweep route
// targets that mention it; that gap is intentional (the engine reports the
// dangling target at evaluation time) and Check surfaces it as an advisory
// issue instead.
package routeconf
