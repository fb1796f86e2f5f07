//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

var unixAdvice = map[AccessPattern]int{
	AccessDefault:    unix.MADV_NORMAL,
	AccessSequential: unix.MADV_SEQUENTIAL,
	AccessRandom:     unix.MADV_RANDOM,
	AccessWillNeed:   unix.MADV_WILLNEED,
	AccessDontNeed:   unix.MADV_DONTNEED,
}

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	// Private read-only pages: writes by other processes may or may not be
	// observed, but nothing we do can reach the file.
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	if len(data) == 0 {
		return nil
	}
	advice, ok := unixAdvice[pattern]
	if !ok {
		advice = unix.MADV_NORMAL
	}
	// data must start on a page; Mapping and Region guarantee it.
	return unix.Madvise(data, advice)
}
