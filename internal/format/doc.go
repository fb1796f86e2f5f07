// Package format implements the two on-disk layouts used by pocketvec.
//
// # Growable format
//
// The growable format is a length-prefixed record stream written by the heap
// store. All integers are little-endian.
//
//	[4] magic "MVS1" (plain) or "MVE1" (followed by an encrypted MVS1 stream)
//	[1] flags, bit 0 set when records are quantized
//	[4] dim u32
//	[8] count u64
//	count x {
//	    [4] id_len u32, id bytes
//	    [8] f32 scale, i32 zero point   (quantized only)
//	    dim x i8 | dim x f32
//	}
//
// # Flat format
//
// The flat format is a sectioned file designed to be memory-mapped and read
// in place. It starts with a 64-byte header:
//
//	[0:4)   magic "MFVS"
//	[4:8)   version u32 (1)
//	[8:12)  dim u32
//	[12:16) flags u32, bit 0 quantized
//	[16:24) count u64
//	[24:32) vector section offset u64
//	[32:40) params section offset u64 (0 when not quantized)
//	[40:48) id section offset u64
//	[48:64) reserved
//
// The vector section holds count rows of dim elements. In quantized mode it is
// zero-padded to a multiple of 4 bytes and followed by count 8-byte parameter
// pairs. The id section is a table of count u64 offsets, relative to the start
// of the section, followed by NUL-terminated id strings. Records are written in
// ascending id order, so the row index is the rank of the id.
//
// A writer may store a CRC32C of everything after the header in reserved bytes
// [48:52) and mark it with "CK" at [52:54). Readers that do not check it still
// accept the file.
package format
