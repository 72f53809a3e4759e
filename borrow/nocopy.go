// Copyright 2026 The borrowcheck Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package borrow

// noCopy makes `go vet -copylocks` flag value copies of handle types.
//
// A plain struct copy of a handle would create a second accessor whose
// Release double-decrements the counter. The legal ways to duplicate are
// Shared.Clone (which registers the new borrow) and Owner.Move (which
// transfers ownership under the sentinel). Copies of Unique are never
// legal. vet is the compile-time half of that contract; the counter
// checks are the runtime half.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
