// Package services holds the warehouse rules that span several aggregates.
//
// The package includes:
//   - TransitionPolicy: maps cell types to unit statuses and decides which
//     moves between cell types are legal
//   - OrderMatcher: resolves scanned or imported order barcodes to units that
//     are free to be picked
//   - StaleTaskPolicy: decides which old tasks the administrative sweep may close
//
// All services are pure: they never touch storage and hold no mutable state.
package services
