package api

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	uploadChunkSize  = 4096
	boundaryPrefix   = "---------------------------"
	metadataPartType = "Content-Type: application/json; charset=UTF-8\r\n\r\n"
	filePartType     = "Content-Type: plain/text\r\n\r\n"
)

// NewBoundary returns a multipart boundary derived from the current time
func NewBoundary(now time.Time) string {
	return boundaryPrefix + strconv.FormatInt(now.UnixNano(), 16)
}

// MultipartContentType returns the Content-Type header for boundary
func MultipartContentType(boundary string) string {
	return "multipart/form-data; boundary=" + boundary
}

// UploadName is the asset file name sent in the metadata part: the base name up to its first dot
func UploadName(fileName string) string {
	if i := strings.Index(fileName, "."); i >= 0 {
		return fileName[:i]
	}
	return fileName
}

// MultipartWriter writes the two-part upload body expected by the file upload
// endpoint: a JSON metadata part and the raw file bytes. The framing is fixed
// byte for byte, so it is written by hand rather than with mime/multipart.
type MultipartWriter struct {
	w        io.Writer
	boundary string
}

// NewMultipartWriter creates a writer that frames parts with boundary
func NewMultipartWriter(w io.Writer, boundary string) *MultipartWriter {
	return &MultipartWriter{w: w, boundary: boundary}
}

func (m *MultipartWriter) writeBoundary() error {
	_, err := io.WriteString(m.w, "\r\n--"+m.boundary+"\r\n")
	return err
}

// WriteMetadata writes the leading boundary and the JSON metadata part
func (m *MultipartWriter) WriteMetadata(name string) error {
	if err := m.writeBoundary(); err != nil {
		return err
	}
	quoted, err := json.Marshal(name)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(m.w, "%s{\"name\": %s}", metadataPartType, quoted)
	return err
}

// WriteFile writes the file part header and copies r in fixed-size chunks
func (m *MultipartWriter) WriteFile(r io.Reader) (int64, error) {
	if err := m.writeBoundary(); err != nil {
		return 0, err
	}
	if _, err := io.WriteString(m.w, filePartType); err != nil {
		return 0, err
	}

	buf := make([]byte, uploadChunkSize)
	var written int64
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := m.w.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// Close writes the closing boundary
func (m *MultipartWriter) Close() error {
	_, err := io.WriteString(m.w, "\r\n--"+m.boundary+"--\r\n")
	return err
}

// streamFile returns a reader producing the complete multipart body for path.
// The file is read while the body is consumed and never held in memory.
func streamFile(path, fileName, boundary string) io.ReadCloser {
	pr, pw := io.Pipe()

	go func() {
		f, err := os.Open(path)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		defer f.Close()

		mw := NewMultipartWriter(pw, boundary)
		if err := mw.WriteMetadata(UploadName(fileName)); err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := mw.WriteFile(f); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr
}
