package catalog

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStatus reports whether the file behind a document can be sent.
type FileStatus struct {
	Document Document
	Path     string
	Err      error
}

// OK reports whether the file exists and is a regular file.
func (s FileStatus) OK() bool { return s.Err == nil }

// CheckFiles stats the file of every document under dir, in catalog order.
func (c *Catalog) CheckFiles(dir string) []FileStatus {
	out := make([]FileStatus, 0, c.Len())
	for _, d := range c.All() {
		st := FileStatus{Document: d, Path: filepath.Join(dir, d.Filename)}
		info, err := os.Stat(st.Path)
		switch {
		case err != nil:
			st.Err = err
		case !info.Mode().IsRegular():
			st.Err = fmt.Errorf("%s is not a regular file", st.Path)
		}
		out = append(out, st)
	}
	return out
}

// Missing counts the statuses that are not OK.
func Missing(statuses []FileStatus) int {
	n := 0
	for _, s := range statuses {
		if !s.OK() {
			n++
		}
	}
	return n
}
