// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the multi-session chat store and the streaming
// generation controller built on top of it.
//
// # Key Types
//
//   - Store: owner of all chat sessions, with copy-on-write snapshots,
//     observer notifications, and write-through persistence
//   - Controller: the generation state machine; enforces a single
//     in-flight generation for the whole process
//   - Persister: the storage interface the Store writes through
//
// # Snapshots
//
// Every mutation replaces the affected Session with a fresh copy, so a
// snapshot handed out earlier is never mutated and observers can detect
// change by pointer identity. Mutations aimed at a session or message
// that no longer exists are silent no-ops; a generation whose target was
// deleted mid-stream simply streams into the void.
//
// # Generation Lifecycle
//
// Controller.Start drives one turn: append the user message, append a
// streaming assistant placeholder, stream records from the model server,
// split reasoning from visible text on every delta, and finalize the
// placeholder on done, end of stream, or transport error. Start returns
// ErrBusy while a turn is in flight; there is no queueing and no retry.
package session
