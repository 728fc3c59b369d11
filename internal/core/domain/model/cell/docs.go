// Package cell models named storage locations inside a warehouse.
//
// A Cell has a Type that constrains what may be stored in it and which moves
// into or out of it are legal. Besides construction, only the active and
// blocked flags of a cell ever change.
package cell
