// Package catalog holds the shop and product aggregates the order lifecycle reads from.
// Product carries the inventory counter: Reserve is the only operation that changes it.
package catalog
