// Package persist wires a storage backend around a store's update path.
//
// Responsibilities:
//   - Backend only gets/sets/removes one serialized record per name.
//   - Persistor[S] owns the hydration lifecycle (uninitialized -> hydrating ->
//     hydrated), writes the partialized projection after every commit, and
//     exposes the persist extension surface: Rehydrate, Status, Clear.
//   - The core store package remains persistence-agnostic; all storage logic
//     stays behind Backend implementations supplied by consumers.
//
// Data flow:
//
//	commit -> partialize(state) -> Record{Name, Version, SnapshotID, State} -> Backend.Set
//	Backend.Get -> Record -> (migrate) -> hydrate.Decoder.Merge(defaults, state) -> store
//
// Failure policy:
//
//	Hydration failures are recovered locally: the in-memory defaults are kept
//	and the failure surfaces through the OnHydrate and OnError hooks. Write
//	failures surface through OnError and never roll back the commit. Records
//	whose version differs from the running version are discarded unless a
//	migration is configured.
//
// Deferred hydration:
//
//	WithSkipHydration leaves the store on its in-memory defaults until
//	Rehydrate is called, for environments with no storage backend at
//	construction time (server-rendered pages).
package persist
