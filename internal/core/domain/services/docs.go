// Package services contains domain services that coordinate several aggregates.
//
// The package includes:
//   - CartAggregator: turns a customer's cart into one order per shop and reserves stock
//   - Dispatcher: hands a ready order to a delivery agent
//
// Services mutate the aggregates they are given and never persist anything. Callers
// run them inside one unit of work and store every aggregate they touched, or none.
package services
