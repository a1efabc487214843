package storage

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Scheme identifies a storage backend
type Scheme string

const (
	SchemeFile Scheme = "file"
	SchemeS3   Scheme = "s3"
)

// Location is a parsed source or sink address
type Location struct {
	Scheme Scheme
	Bucket string // s3 only
	Key    string // s3 object key
	Path   string // local filesystem path
}

// ParseLocation accepts s3://bucket/key, file:///path and bare paths.
func ParseLocation(uri string) (Location, error) {
	if uri == "" {
		return Location{}, fmt.Errorf("empty location")
	}

	switch {
	case strings.HasPrefix(uri, "s3://"):
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("invalid s3 location %q: %w", uri, err)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("s3 location %q needs a bucket and a key", uri)
		}
		return Location{Scheme: SchemeS3, Bucket: u.Host, Key: key}, nil

	case strings.HasPrefix(uri, "file://"):
		u, err := url.Parse(uri)
		if err != nil {
			return Location{}, fmt.Errorf("invalid file location %q: %w", uri, err)
		}
		return Location{Scheme: SchemeFile, Path: filepath.FromSlash(u.Path)}, nil

	case strings.Contains(uri, "://"):
		return Location{}, fmt.Errorf("unsupported location scheme in %q", uri)
	}

	return Location{Scheme: SchemeFile, Path: uri}, nil
}

// Name returns the final path element, used as the original filename
func (l Location) Name() string {
	if l.Scheme == SchemeS3 {
		return path.Base(l.Key)
	}
	return filepath.Base(l.Path)
}

func (l Location) String() string {
	if l.Scheme == SchemeS3 {
		return "s3://" + l.Bucket + "/" + l.Key
	}
	return l.Path
}
