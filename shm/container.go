package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"

	"github.com/kolkov/ringqueue/internal/diag"
	"github.com/kolkov/ringqueue/internal/queue"
)

// DefaultDir is where Options.Dir defaults to when left empty, matching
// the conventional POSIX shared-memory mount point on Linux.
const DefaultDir = "/dev/shm"

// confirmRetryBudget bounds how long Open will retry ConfirmHeader against
// a region whose creator has reserved the backing file but not yet
// finished writing its header, mirroring the original implementation's
// two-second bounded wait.
const confirmRetryBudget = 2 * time.Second

// confirmRetryInterval is how long Open sleeps between ConfirmHeader
// attempts.
const confirmRetryInterval = 250 * time.Millisecond

// Options configures a shared-memory region.
type Options struct {
	// Dir is the directory the backing file lives in. Defaults to
	// DefaultDir.
	Dir string

	// Lock requests that the mapped pages be locked into physical memory
	// via MMap.Lock, avoiding page faults on the hot path at the cost of
	// consuming non-swappable RAM for the region's lifetime. The original
	// implementation made the equivalent of this opt-out-able through an
	// environment variable for operators without the right ulimits; here
	// it is opt-in instead, since most callers outside of latency-critical
	// production use do not need it and may not have the privilege.
	Lock bool
}

func (o Options) dir() string {
	if o.Dir == "" {
		return DefaultDir
	}
	return o.Dir
}

// Region is a shared-memory mapping together with the resources needed to
// keep it alive and eventually release it.
type Region struct {
	path string
	file *os.File
	lock *os.File
	mm   mmap.MMap
}

// Bytes returns the region's backing memory.
func (r *Region) Bytes() []byte {
	return r.mm
}

// Close unmaps the region and releases its file handles. It does not
// remove the backing file; removal is a separate, explicit decision since
// other processes may still be attached.
func (r *Region) Close() error {
	var errs []error
	if err := r.mm.Unmap(); err != nil {
		errs = append(errs, err)
	}
	if err := r.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.lock != nil {
		unix.Flock(int(r.lock.Fd()), unix.LOCK_UN)
		if err := r.lock.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove unlinks the backing file and its lock sidecar. Callers should
// call this only from whichever process considers itself responsible for
// the region's lifetime, typically the one that created it.
func Remove(name string, opts Options) error {
	dir := opts.dir()
	err1 := os.Remove(filepath.Join(dir, name))
	err2 := os.Remove(filepath.Join(dir, name+".lock"))
	if err1 != nil && !os.IsNotExist(err1) {
		return err1
	}
	if err2 != nil && !os.IsNotExist(err2) {
		return err2
	}
	return nil
}

// createOrAttach implements the create-vs-attach race: it tries to create
// the backing file exclusively, and if another process won that race,
// falls back to opening the file non-exclusively, reporting which
// happened so the caller knows whether it must initialize the header.
//
// An advisory flock on a ".lock" sidecar file serializes the brief window
// between a winner's O_CREAT|O_EXCL and its ftruncate plus header
// construction, so a loser that opens the file a moment later does not
// observe a zero-length or partially truncated file.
func createOrAttach(name string, size int64, opts Options) (file *os.File, lockFile *os.File, created bool, err error) {
	dir := opts.dir()
	path := filepath.Join(dir, name)
	lockPath := path + ".lock"

	lockFile, err = os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, nil, false, fmt.Errorf("shm: open lock file: %w", err)
	}
	if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX); err != nil {
		lockFile.Close()
		return nil, nil, false, fmt.Errorf("shm: lock %s: %w", lockPath, err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
	switch {
	case err == nil:
		if terr := f.Truncate(size); terr != nil {
			f.Close()
			unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
			lockFile.Close()
			return nil, nil, false, fmt.Errorf("shm: truncate %s: %w", path, terr)
		}
		return f, lockFile, true, nil

	case errors.Is(err, os.ErrExist):
		f, err = os.OpenFile(path, os.O_RDWR, 0o666)
		if err != nil {
			unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
			lockFile.Close()
			return nil, nil, false, fmt.Errorf("shm: open existing %s: %w", path, err)
		}
		return f, lockFile, false, nil

	default:
		unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
		lockFile.Close()
		return nil, nil, false, fmt.Errorf("shm: create %s: %w", path, err)
	}
}

// pretouch reads one byte per page of buf, forcing the kernel to resolve
// every page's mapping up front rather than on the first real access. This
// mirrors the original implementation's startup page-touch loop, whose
// purpose was to convert first-write page faults (which show up as latency
// spikes in the very first benchmark rounds) into a single upfront cost.
func pretouch(buf []byte) {
	const pageSize = 4096
	var sum byte
	for i := 0; i < len(buf); i += pageSize {
		sum += buf[i]
	}
	_ = sum
}

// Open maps (creating if necessary) a shared-memory region named name and
// returns a queue.Queue[P] of the given capacity over it, along with the
// Region handle needed to eventually Close it.
//
// If this call wins the create race, it initializes a fresh queue
// immediately and returns. If it loses, it attaches to the region the
// winner is creating and retries queue.ConfirmHeader for up to two seconds
// to tolerate the brief window in which the winner holds the file open but
// has not yet finished writing the header.
func Open[P any](name string, capacity uint32, opts Options) (*queue.Queue[P], *Region, error) {
	size := int64(queue.Size[P](capacity))

	file, lockFile, created, err := createOrAttach(name, size, opts)
	if err != nil {
		return nil, nil, err
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
		lockFile.Close()
		file.Close()
		return nil, nil, fmt.Errorf("shm: mmap %s: %w", name, err)
	}
	if opts.Lock {
		if err := mm.Lock(); err != nil {
			diag.Logger().Warn("ringqueue/shm: failed to lock pages into memory")
		}
	}

	region := &Region{path: name, file: file, lock: lockFile, mm: mm}
	pretouch(mm)

	qopts := queue.Options{Capacity: capacity}

	if created {
		q, err := queue.Create[P](mm, qopts)
		unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
		if err != nil {
			region.Close()
			return nil, nil, err
		}
		return q, region, nil
	}

	// We lost the create race. Release the sidecar lock immediately: we
	// are only attaching, and the winner already finished its header
	// construction before releasing the lock we now hold, so keeping it
	// would only delay other processes opening the same name.
	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)

	q, err := queue.Attach[P](mm, capacity)
	if err != nil {
		region.Close()
		return nil, nil, err
	}

	deadline := time.Now().Add(confirmRetryBudget)
	var confirmErr error
	for {
		confirmErr = q.ConfirmHeader(qopts)
		if confirmErr == nil {
			return q, region, nil
		}
		if !errors.Is(confirmErr, queue.ErrTypeMismatch) || time.Now().After(deadline) {
			break
		}
		diag.Logger().Debug("ringqueue/shm: header not ready yet, retrying")
		time.Sleep(confirmRetryInterval)
	}

	region.Close()
	return nil, nil, fmt.Errorf("shm: confirm header for %s: %w", name, confirmErr)
}
