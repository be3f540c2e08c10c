package threemf

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
)

// Content types used by the archive parts.
const (
	ContentTypeRels  = "application/vnd.openxmlformats-package.relationships+xml"
	ContentTypeModel = "application/vnd.ms-package.3dmanufacturing-3dmodel+xml"
	ContentTypePNG   = "image/png"
	ContentTypeGCode = "text/x.gcode"
	ContentTypeXML   = "application/xml"
	ContentTypeJSON  = "application/json"
	ContentTypeText  = "text/plain"
)

// Part is one file inside the archive.
type Part struct {
	Path        string
	ContentType string
	Data        []byte
}

// Manifest accumulates archive parts in insertion order. Paths are
// archive-internal, forward-slash separated, without a leading slash.
type Manifest struct {
	parts []Part
	index map[string]int
}

// Add appends a part. Duplicate paths are a packaging error: every
// part in the archive must have a unique path.
func (m *Manifest) Add(path, contentType string, data []byte) error {
	if path == "" {
		return &PackagingError{Op: "add part", Err: errors.New("empty path")}
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, dup := m.index[path]; dup {
		return &PackagingError{Op: "add part", Path: path, Err: errors.New("duplicate path")}
	}
	m.index[path] = len(m.parts)
	m.parts = append(m.parts, Part{Path: path, ContentType: contentType, Data: data})
	return nil
}

// AddWithMD5 appends a part plus a "<path>.md5" sidecar holding the
// lowercase hex MD5 digest of the part's bytes.
func (m *Manifest) AddWithMD5(path, contentType string, data []byte) error {
	if err := m.Add(path, contentType, data); err != nil {
		return err
	}
	sum := md5.Sum(data)
	return m.Add(path+".md5", ContentTypeText, []byte(hex.EncodeToString(sum[:])))
}

// Part returns the part at the given path.
func (m *Manifest) Part(path string) (Part, bool) {
	i, ok := m.index[path]
	if !ok {
		return Part{}, false
	}
	return m.parts[i], true
}

// Parts returns all parts in insertion order.
func (m *Manifest) Parts() []Part { return m.parts }

// Len returns the number of parts.
func (m *Manifest) Len() int { return len(m.parts) }
