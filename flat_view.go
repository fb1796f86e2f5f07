package pocketvec

import (
	"encoding/binary"
	"unsafe"
)

var littleEndianHost = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// canViewFloats reports whether little-endian float32 data starting at b can
// be reinterpreted as []float32 on this host.
func canViewFloats(b []byte) bool {
	if !littleEndianHost || len(b) == 0 {
		return false
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))%unsafe.Alignof(float32(0)) == 0
}

// float32View reinterprets b as float32s without copying.
// len(b) must be a multiple of 4 and canViewFloats(b) must hold.
func float32View(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/4)
}

// int8View reinterprets b as int8 codes without copying.
func int8View(b []byte) []int8 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*int8)(unsafe.Pointer(unsafe.SliceData(b))), len(b))
}
