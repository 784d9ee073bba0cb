// Package status provides the shared, observable status store for valvedash.
//
// The store holds the small set of cross-cutting status fields shown in the
// dashboard chrome: the current network label and the aggregate system
// [Health]. Producers (the valve fleet, a network [Watcher]) write through
// setter methods; consumers register zero-argument listeners and read the
// fields back synchronously when notified.
//
// The main components are:
//
//   - [Store]: Observable container with subscribe/notify semantics
//   - [Health]: Aggregate health enum (good, medium, bad)
//   - [Watcher]: Periodic network label refresher fed by a [NetworkSource]
//
// A single [Store] is created once at application start with [New] and passed
// by reference to everything that needs it. There is no package-level
// instance.
package status
