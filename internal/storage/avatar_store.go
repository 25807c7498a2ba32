package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// MaxAvatarSize bounds uploaded avatar files.
const MaxAvatarSize = 5 << 20

// Avatar upload errors.
var (
	ErrUnsupportedAvatar = errors.New("unsupported avatar type")
	ErrAvatarTooLarge    = errors.New("avatar too large")
)

var avatarExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true, "webp": true,
}

// AvatarStore keeps uploaded profile pictures on the local filesystem and
// serves them under a public URL prefix.
type AvatarStore struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

// NewAvatarStore creates the avatar directory if needed.
func NewAvatarStore(dir, urlPrefix string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating avatar directory: %w", err)
	}
	return &AvatarStore{dir: dir, urlPrefix: urlPrefix, now: time.Now}, nil
}

// Dir returns the directory avatars are written to.
func (s *AvatarStore) Dir() string {
	return s.dir
}

// Save writes the upload as "<userID>-<unixMillis>.<ext>" and returns its
// public URL. The extension is taken from the original file name.
func (s *AvatarStore) Save(userID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !avatarExtensions[ext] {
		return "", fmt.Errorf("%w %q", ErrUnsupportedAvatar, ext)
	}

	name := fmt.Sprintf("%s-%d.%s", userID, s.now().UnixMilli(), ext)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating avatar file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, MaxAvatarSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxAvatarSize {
		err = fmt.Errorf("%w: more than %d bytes", ErrAvatarTooLarge, MaxAvatarSize)
	}
	if err != nil {
		os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("writing avatar: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}
