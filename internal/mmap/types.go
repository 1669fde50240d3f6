package mmap

import "errors"

// AccessPattern is a hint describing how mapped bytes will be read.
type AccessPattern int

const (
	// AccessDefault gives no advice.
	AccessDefault AccessPattern = iota
	// AccessSequential announces a front-to-back scan, as done by the dataset decoders.
	AccessSequential
	// AccessRandom announces scattered ReadAt calls.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch the mapping.
	AccessWillNeed
)

var (
	// ErrClosed is returned when a closed mapping is accessed.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned by ReadAt for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

func (p AccessPattern) String() string {
	switch p {
	case AccessSequential:
		return "sequential"
	case AccessRandom:
		return "random"
	case AccessWillNeed:
		return "willneed"
	default:
		return "default"
	}
}
