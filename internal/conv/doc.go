// Package conv converts and combines header integers without silent overflow.
//
// Flat and growable headers carry u32/u64 counts and offsets read from disk.
// Every conversion to int and every offset + length or count * width sum goes
// through this package, so a hostile header yields ErrOverflow instead of a
// wrapped value that passes a bounds check:
//
//	end, err := conv.MulUint64(count, rowSize)
//	if err == nil {
//	    end, err = conv.AddUint64(vecOffset, end)
//	}
//
// Loop indices and values bounded by an already validated length use plain
// casts.
package conv
