// Package fileid identifies directories physically, so a walk can visit
// each one once even when bind mounts or hard-linked directories make the
// same tree reachable under several paths.
package fileid

import "sync"

// ID is the physical identity of a filesystem object.
type ID struct {
	Dev uint64
	Ino uint64
}

// Set records visited directories. It is safe for concurrent use by the
// fastwalk workers.
type Set struct {
	mu   sync.Mutex
	seen map[ID]struct{}
	// paths is used where the platform has no inode numbers.
	paths map[string]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		seen:  make(map[ID]struct{}),
		paths: make(map[string]struct{}),
	}
}

// Visit marks path as visited and reports whether it was new. A path whose
// identity cannot be read is treated as new; the walk itself reports the
// error when it tries to read the directory.
func (s *Set) Visit(path string) bool {
	id, err := Of(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if _, ok := s.paths[path]; ok {
			return false
		}
		s.paths[path] = struct{}{}
		return true
	}

	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Len returns the number of distinct directories visited.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen) + len(s.paths)
}
