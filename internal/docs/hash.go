package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// ComputeDocsHash returns a deterministic hash over a set of documents:
// their relative paths, ids and content fingerprints. It changes whenever a
// document is added, removed, renamed or edited.
func ComputeDocsHash(files []DocFile) string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		lines = append(lines, f.RelativePath+"|"+f.Descriptor.ID+"|"+f.Descriptor.Fingerprint)
	}
	slices.Sort(lines)

	h := sha256.New()
	if len(lines) == 0 {
		h.Write([]byte("empty-docs-set"))
	}
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte("\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
