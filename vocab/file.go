package vocab

import (
	"os"
	"path/filepath"
	"time"

	"github.com/edsrzf/mmap-go"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultFilePerm is the permission used for saved vocabulary files.
const DefaultFilePerm = os.FileMode(0644)

// Load reads a vocabulary file: one token per line, id = 0-based line number.
// The file is memory-mapped while parsing; large vocabularies are read
// without double-buffering.
func Load(path, unkToken string) (*Vocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open vocabulary file %q", path)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat vocabulary file %q", path)
	}
	if info.Size() == 0 {
		// mmap rejects empty files.
		return New(nil, unkToken)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to mmap vocabulary file %q", path)
	}
	defer func() {
		if err := data.Unmap(); err != nil {
			klog.Warningf("Failed to unmap vocabulary file %q: %v", path, err)
		}
	}()

	v, err := New(parseTokens(data), unkToken)
	if err != nil {
		return nil, errors.WithMessagef(err, "while loading vocabulary file %q", path)
	}
	klog.V(1).Infof("Loaded vocabulary of %d tokens from %q", v.Size(), path)
	return v, nil
}

// Save writes all tokens to path, one per line ordered by ascending id, so
// that Load(path) reconstructs the same vocabulary.
//
// The write goes to a uniquely named temporary file which is then atomically
// renamed into place. A path+".lock" file coordinates concurrent writers of
// the same file across processes.
func (v *Vocab) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for vocabulary file %q", path)
	}

	lockPath := path + ".lock"
	var mainErr error
	errLock := withFileLock(lockPath, func() {
		tmpPath := path + "." + uuid.NewString() + ".tmp"
		content := make([]byte, 0, 16*v.Size())
		for _, tok := range v.idToToken {
			content = append(content, tok...)
			content = append(content, '\n')
		}
		if err := os.WriteFile(tmpPath, content, DefaultFilePerm); err != nil {
			mainErr = errors.Wrapf(err, "failed to write temporary vocabulary file %q", tmpPath)
			return
		}
		if err := os.Rename(tmpPath, path); err != nil {
			_ = os.Remove(tmpPath)
			mainErr = errors.Wrapf(err, "failed to move vocabulary file %q to %q", tmpPath, path)
			return
		}
	})
	if mainErr != nil {
		return mainErr
	}
	if errLock != nil {
		return errors.WithMessagef(errLock, "while locking %q to save vocabulary", lockPath)
	}
	return nil
}

// withFileLock opens (or creates) lockPath, locks it, and executes fn. If the
// lock is held elsewhere it polls until acquired. The lock file is left in
// place for the next writer.
func withFileLock(lockPath string, fn func()) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return errors.Wrapf(err, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	defer func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil {
			if err == nil {
				err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
			} else {
				klog.Warningf("Error unlocking file %q: %v", lockPath, unlockErr)
			}
		}
	}()
	fn()
	return
}
