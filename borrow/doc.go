// Package borrow enforces Rust-style ownership discipline at run time.
//
// Go's type system cannot reject aliasing bugs at compile time, so this
// package enforces the borrow contract at execution time instead: at any
// instant a value has either zero or one exclusive (mutable) accessor,
// or any number of concurrent shared (read-only) accessors, never both.
// Violations are programmer errors, detected and made fatal — they are
// never returned as error values.
//
// # Quick Start
//
//	owner := borrow.New(&Config{Workers: 4})
//
//	s := owner.BorrowShared()   // any number of these may coexist
//	fmt.Println(s.Value().Workers)
//	s.Release()
//
//	u := owner.BorrowUnique()   // at most one, excludes all shared borrows
//	u.Ptr().Workers = 8
//	u.Release()
//
//	fmt.Println(owner.Access().Workers) // owner regains direct access
//
// # The Borrow-State Counter
//
// One signed atomic counter per [Owner] encodes the entire aliasing
// state:
//
//	 0  — free: no borrows, the owner may access/replace/drop the value
//	>0  — that many [Shared] borrows outstanding
//	-1  — exactly one [Unique] borrow outstanding
//	-2  — transient ownership-transfer sentinel (see [Owner.Move])
//
// Every acquire and release is a single atomic read-modify-write
// followed by a precondition check on the observed value. No operation
// blocks, queues, or retries: the counter's atomic update is the sole
// synchronization point, which makes the package safe to use from any
// number of goroutines while keeping the fast path lock-free.
//
// # Violations
//
// Any operation attempted while the counter forbids it — a second
// unique borrow, a shared borrow under an exclusive hold, a release
// without a matching acquire, dropping a borrowed value — trips the
// verifier. The default (production) backend prints a diagnostic
// identifying the failed contract, dumps the call stack of the
// offending operation, and terminates the process with exit code 66.
//
// Builds tagged "borrowfault" select the analysis backend instead: the
// verifier performs a deliberate nil-pointer dereference at the check
// site. That backend exists to validate external static-analysis tools
// against the known-good/known-bad scenario corpus under examples/
// (driven by the borrowcheck CLI); it is not meant for production use.
//
// # What This Package Is Not
//
// It is not a synchronization primitive: it detects conflicting access,
// it does not prevent it by blocking. It is not a smart pointer or a GC
// replacement: the Go runtime still owns the memory; the package only
// does lifetime and aliasing bookkeeping for a single in-process value.
// Handles must not outlive their Owner — that precondition is assumed,
// not enforced.
//
// # Links
//
// Project repository:
// https://github.com/kolkov/borrowcheck
package borrow
