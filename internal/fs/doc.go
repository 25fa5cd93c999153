// Package fs abstracts the filesystem operations used to write checkpoints.
//
// [LocalFS] forwards to the os package. [FaultyFS] wraps another FileSystem
// and injects write, sync, close or rename failures so tests can verify that
// an interrupted checkpoint never replaces the previous one:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailAfterBytes: 16})
package fs
