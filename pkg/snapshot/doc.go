/*
Package snapshot implements layout snapshot persistence orchestration.

It serializes access to each named layout across goroutines and, optionally,
across replicas through a DistributedLocker. The Autosaver turns layout-changed
notifications into coalesced background writes so slow storage never blocks a drop.
*/
package snapshot
