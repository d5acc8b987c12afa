// Package storage persists the fleet control plane's entities in an
// embedded BoltDB file, one bucket per entity type, JSON-marshaled
// values keyed by the entity's natural ID. AccessTokens are not
// persisted here — they live only in pkg/security's in-memory map.
package storage
