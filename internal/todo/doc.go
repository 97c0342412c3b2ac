// Package todo holds the task collection and the operations that change it.
//
// A Store owns the authoritative ordered list of tasks. Every mutation
// replaces the list and hands a snapshot to the Repository, which persists it
// in the background:
//
//	store := todo.NewStore(repo, todo.WithLogger(logger))
//	_ = store.Load(ctx)          // empty collection on missing or corrupt data
//	task, _ := store.Add("Buy milk")
//	store.ToggleCompletion(task.ID)
//	view := store.View()         // filtered, order-preserving
//	_ = store.Close(ctx)         // waits for pending saves
//
// # Stored Format
//
// The collection is stored as a JSON array of records with exactly three
// fields, in collection order:
//
//	[
//	  {"id": "0c5c4f0e-...", "title": "Buy milk", "completed": false}
//	]
//
// # Filters
//
//   - "all": every task
//   - "completed": tasks with completed == true
//   - "incompleted": tasks with completed == false
//
// The filter is transient. It shapes View and is never persisted.
//
// # Editing
//
// At most one task is in edit mode. StartEdit opens a session holding a
// working title, CommitEdit applies it, and any other mutation drops it.
package todo
