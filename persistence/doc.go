// Package persistence reads and writes search checkpoints.
//
// A checkpoint is a small binary header followed by a compressed, codec
// encoded document:
//
//	magic "NFCP" | version u16 | kind u8 | compression u8 |
//	codec-name-len u8 | codec name | run-id [16]byte |
//	body-len u64 | crc32(body) u32 | body
//
// All integers are little-endian. The document holds the coordinate system,
// the acceptance parameters, every minimization result and, for state
// checkpoints, the contents of both work queues.
//
// Files are replaced atomically: the checkpoint is written to a temporary
// file in the target directory, synced and renamed over the target, so a
// reader only ever observes the previous or the new checkpoint.
package persistence
