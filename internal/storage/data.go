package storage

type WriteResult struct {
	path        string
	contentHash string
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}
