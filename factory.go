package ebc

// NewEmbeddedFileFromPath returns an embedded file whose payload lives at path.
//
// It returns nil when fileType is not a modeled type; callers skip such
// entries rather than treating them as errors.
func NewEmbeddedFileFromPath(path string, fileType FileType) *EmbeddedFile {
	if !fileType.Known() {
		return nil
	}
	return &EmbeddedFile{path: path, fileType: fileType}
}

// NewEmbeddedFileFromBuffer returns an embedded file holding data in memory.
// The slice is retained; callers must not modify it afterwards.
//
// It returns nil when fileType is not a modeled type.
func NewEmbeddedFileFromBuffer(data []byte, fileType FileType) *EmbeddedFile {
	if !fileType.Known() {
		return nil
	}
	if data == nil {
		data = []byte{}
	}
	return &EmbeddedFile{data: data, inMemory: true, fileType: fileType}
}
