// Package mmap maps dataset files read-only into memory.
//
// A Mapping is shared by every reader of a LocalStore blob. Readers either
// copy through ReadAt or borrow the mapped bytes directly:
//
//	m, err := mmap.Open("sift_base.fvecs")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2). Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// Bytes must not be touched after Close returns.
package mmap
