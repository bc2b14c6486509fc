// Package shm places a queue.Queue in memory shared across process
// boundaries: a POSIX shared-memory object, arbitrated so that exactly one
// of any number of racing processes creates and initializes it while the
// rest attach to what the winner built.
//
// This is the external-collaborator boundary the queue package itself
// stays agnostic to: internal/queue never opens a file descriptor or calls
// mmap, it only ever operates on a []byte. shm supplies that []byte.
package shm
