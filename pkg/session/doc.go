// Package session implements the record editing controller: the session's
// record state, the signals that drive it, and the save and delete actions
// issued against the remote record resource.
//
// A Controller owns its state. Callers talk to it through signals broadcast on
// the controller's own Bus (Initialization and Action) or through the Save,
// Delete and UpdateModel helpers, and observe the outcome through State.
//
// Lifecycle:
//
//	Uninitialized -> Loading (schema and form fetched concurrently)
//	Loading -> Ready (only after both fetches succeed)
//	Ready -> Acting -> Ready (every action, success or failure)
//
// A failed schema or form fetch leaves the session Loading for good; the
// error is kept in State().FetchErr. Overlapping actions are not cancelled:
// each completion writes the shared UI state, so the last one to resolve
// wins.
package session
