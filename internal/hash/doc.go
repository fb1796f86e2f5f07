// Package hash provides the CRC32-Castagnoli checksum used by flat store files.
//
// A flat file written with checksums enabled stores the CRC32C of every byte
// after the 64-byte header. Writers stream the body through [NewCRC32C];
// readers verify a mapped file in one shot with [CRC32C].
//
//	h := hash.NewCRC32C()
//	w := io.MultiWriter(bw, h)
//	// ... write body through w ...
//	sum := h.Sum32()
//
// Go's crc32 package uses SSE4.2 on amd64 and the CRC extension on arm64.
package hash
