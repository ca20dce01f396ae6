package storage

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/pkg/failure"
	"github.com/rohmanhakim/web-scrapper/pkg/hashutil"
)

/*
Responsibilities
- Persist processed page artifacts
- Ensure deterministic, content-addressed filenames

Output Characteristics
- Stable directory layout
- Idempotent writes
- Overwrite-safe reruns
*/

type Sink interface {
	Write(content []byte) (WriteResult, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
	outputDir    string
	hashAlgo     hashutil.HashAlgo
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
	outputDir string,
	hashAlgo hashutil.HashAlgo,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
		outputDir:    outputDir,
		hashAlgo:     hashAlgo,
	}
}

func (s *LocalSink) Write(content []byte) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(content)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"storage",
			"LocalSink.Write",
			metadata.CauseStorageFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactMarkdown,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrField, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

func (s *LocalSink) write(content []byte) (WriteResult, *StorageError) {
	contentHash, err := hashutil.HashBytes(content, s.hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseHashFailure,
		}
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCausePathError,
			Path:    s.outputDir,
		}
	}

	path := filepath.Join(s.outputDir, contentHash+".md")
	if err := os.WriteFile(path, content, 0644); err != nil {
		return WriteResult{}, &StorageError{
			Message: err.Error(),
			Cause:   ErrCauseWriteFailure,
			Path:    path,
		}
	}

	return WriteResult{
		path:        path,
		contentHash: contentHash,
	}, nil
}
