// Package task models picking tasks: work orders that direct workers to move
// one or more units into a designated picking cell.
//
// Lifecycle:
//
//	open -> in_progress -> done
//	open | in_progress -> canceled
//	open | in_progress -> done (administrative force-close)
//
// in_progress is only reached as a side effect of the first completion attempt,
// and a failed attempt may revert it back to open. done and canceled are terminal.
//
// Each task unit keeps a snapshot of the cell the unit was in when the task was
// created. Cancellation returns units to that snapshot, never to a later location.
package task
