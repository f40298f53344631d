package submission

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	pkgerrors "autojudge/pkg/errors"
	"autojudge/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stagingPrefix marks in-flight copies. The judge only picks up names
// matching <int>[<user>][<task>]<ext>, so staging files are invisible to it.
const stagingPrefix = ".autojudge-"

// Placement is the outcome of a successful transfer.
type Placement struct {
	Destination string
	ResultPath  string
}

// Transfer copies the submission's source into inbox under its destination
// name. The destination either appears complete or not at all, and an
// existing file is never overwritten.
func Transfer(ctx context.Context, sub Submission, inbox string) (Placement, error) {
	name := sub.DestinationName()
	dest := filepath.Join(inbox, name)

	src, err := os.Open(sub.SourcePath)
	if err != nil {
		return Placement{}, pkgerrors.Wrapf(err, pkgerrors.SourceUnreadable, "open source file failed: %v", err).
			WithDetail("source", sub.SourcePath)
	}
	defer src.Close()
	if fi, err := src.Stat(); err != nil || fi.IsDir() {
		return Placement{}, pkgerrors.Newf(pkgerrors.SourceUnreadable, "source %s is not a regular file", sub.SourcePath).
			WithDetail("source", sub.SourcePath)
	}

	if _, err := os.Lstat(dest); err == nil {
		return Placement{}, destinationExists(dest)
	}

	staging, err := stageCopy(src, inbox)
	if err != nil {
		return Placement{}, err
	}
	defer os.Remove(staging)

	err = os.Link(staging, dest)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrExist):
		return Placement{}, destinationExists(dest)
	default:
		// Filesystems without hard links (FAT, some network shares).
		logger.Debug(ctx, "hard link unavailable, copying in place", zap.Error(err))
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return Placement{}, pkgerrors.Wrapf(err, pkgerrors.SourceUnreadable, "rewind source file failed: %v", err)
		}
		if err := exclusiveCopy(src, dest); err != nil {
			return Placement{}, err
		}
	}

	logger.Info(ctx, "submission placed", zap.String("destination", dest))
	return Placement{
		Destination: dest,
		ResultPath:  ResultPath(inbox, name),
	}, nil
}

func stageCopy(src io.Reader, inbox string) (string, error) {
	path := filepath.Join(inbox, stagingPrefix+uuid.NewString()+".part")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", inboxUnwritable(err)
	}
	if err := writeAndSync(f, src); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func exclusiveCopy(src io.Reader, dest string) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return destinationExists(dest)
		}
		return inboxUnwritable(err)
	}
	if err := writeAndSync(f, src); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return nil
}

func writeAndSync(f *os.File, src io.Reader) error {
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return inboxUnwritable(err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return inboxUnwritable(err)
	}
	if err := f.Close(); err != nil {
		return inboxUnwritable(err)
	}
	return nil
}

func destinationExists(dest string) error {
	return pkgerrors.Newf(pkgerrors.DestinationExists, "destination %s already exists", dest).
		WithDetail("destination", dest)
}

func inboxUnwritable(err error) error {
	return pkgerrors.Wrapf(err, pkgerrors.InboxUnwritable, "write to inbox failed: %v", err)
}
