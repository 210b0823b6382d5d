package importer

import (
	"io"
	"os"
	"path/filepath"
)

// Artifact is the file an import reads. It is removed once the import commits.
type Artifact interface {
	Name() string
	Open() (io.ReadCloser, error)
	Remove() error
}

type FileArtifact struct {
	Path string
}

func NewFileArtifact(path string) *FileArtifact {
	return &FileArtifact{Path: path}
}

func (f *FileArtifact) Name() string {
	return filepath.Base(f.Path)
}

func (f *FileArtifact) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f *FileArtifact) Remove() error {
	return os.Remove(f.Path)
}

type retainedArtifact struct {
	Artifact
}

// Retain wraps a so that a successful import leaves the file in place.
func Retain(a Artifact) Artifact {
	return retainedArtifact{Artifact: a}
}

func (retainedArtifact) Remove() error {
	return nil
}
