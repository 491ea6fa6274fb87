// Package namestore remembers which candidates were already produced for a
// base name, so repeated generation requests inside a cooldown window do not
// reprocess the same strings.
//
// Entries age out individually after a TTL. A session can also be marked
// complete, after which the whole session is purged once a grace period has
// passed. Expired state is collected by a periodic background sweep holding
// the lock only briefly; foreground filtering is never blocked for long.
package namestore
