/*
Package observability turns executor lifecycle events into logs and metrics.

LogHooks writes one structured record per event, Metrics records Prometheus counters and
histograms, and Combine fans a single event out to several hook sets.
*/
package observability
