package utils

import (
	"io"
	"sync"
)

type errorFlusher interface {
	Flush() error
}

type plainFlusher interface {
	Flush()
}

// FlushingWriter serializes writes to a shared stream and flushes buffered streams after every write,
// so rendered audit output and prompts interleave in the order they were produced.
type FlushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewFlushingWriter wraps writer unless it is nil or already wrapped.
func NewFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return nil
	}
	if _, alreadyWrapped := writer.(*FlushingWriter); alreadyWrapped {
		return writer
	}
	return &FlushingWriter{writer: writer}
}

// Write delegates to the wrapped writer and flushes it when it buffers.
func (flushingWriter *FlushingWriter) Write(data []byte) (int, error) {
	if flushingWriter == nil || flushingWriter.writer == nil {
		return 0, nil
	}

	flushingWriter.mutex.Lock()
	defer flushingWriter.mutex.Unlock()

	bytesWritten, writeError := flushingWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	switch flusher := flushingWriter.writer.(type) {
	case errorFlusher:
		return bytesWritten, flusher.Flush()
	case plainFlusher:
		flusher.Flush()
	}
	return bytesWritten, nil
}

// Unwrap returns the wrapped writer.
func (flushingWriter *FlushingWriter) Unwrap() io.Writer {
	if flushingWriter == nil {
		return nil
	}
	return flushingWriter.writer
}
