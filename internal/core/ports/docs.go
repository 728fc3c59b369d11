// Package ports defines the contracts between the warehouse core and its
// infrastructure: repositories, the unit of work, the inventory lock source
// and the event publisher.
package ports
