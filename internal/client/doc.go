// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package client implements the interactive client application runtime.
//
// It wires the local library store, the record service transport, the sync
// engine and the terminal UI into a single process lifecycle.
package client
