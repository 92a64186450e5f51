/*
Package guard serializes work on a single document.

Every executor call that may write views runs inside Manager.WithLock for the
document key. Locks are reference counted so the map does not grow with the number of
documents ever seen, and an optional DistributedLocker extends the guarantee across
replicas that share a document store.
*/
package guard
