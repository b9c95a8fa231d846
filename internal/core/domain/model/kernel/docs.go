// Package kernel provides the shared value objects of the marketplace domain.
//
// The package includes:
//   - UUID: identifier for every aggregate and entity
//   - Money: non-negative decimal amount with two-digit scale
//   - GeoPoint: latitude/longitude pair supplied by the location collaborator
//   - Role and Actor: the authenticated caller every authorization decision is made for
//
// All values are immutable. The zero value of UUID, Money and GeoPoint is invalid and
// fails Validate, so aggregates can detect values that bypassed the constructors.
package kernel
