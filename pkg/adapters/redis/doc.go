// Package redis stores documents in Redis and provides a Redis-backed
// ports.DistributedLocker for the per-document guard.
package redis
