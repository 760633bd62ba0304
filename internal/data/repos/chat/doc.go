// Package chat holds the persistence layer for the thread engine: threads,
// messages, typing flags, and read markers. Repos accept a dbctx.Context so
// callers can compose them inside a single transaction.
package chat
