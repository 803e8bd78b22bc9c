// Package form holds the state of the food list form: the ordered rows,
// their display numbering, validation, query serialization, the submission
// lifecycle and the transient status area.
//
// Nothing here renders or performs I/O. The TUI and the calc command drive
// a Controller and decide how to show it.
package form
