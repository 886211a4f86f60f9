// Package ids generates the deterministic identifiers used across the
// pipeline. The same logical inputs always yield the same IDs, so
// re-ingesting a file overwrites its previous vectors instead of
// duplicating them.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// chunkHashPrefix is how many leading characters of chunk content feed
// the content hash. Enough to distinguish chunks, cheap to compute.
const chunkHashPrefix = 200

// FileHash returns the hex SHA-256 of raw file bytes.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SourceID derives the source identifier from filename, file hash and
// category. Structure selection is deliberately excluded so that
// re-uploading the same file with a different structure answer still
// maps to the same source.
func SourceID(filename, fileHash, category string) string {
	sum := sha256.Sum256([]byte(filename + "_" + fileHash + "_" + category))
	return "src_" + hex.EncodeToString(sum[:])[:16]
}

// ChunkID derives a chunk identifier from its source, position, content
// and language. The variant label, when present, is appended as a
// final suffix so restatements of the same record get distinct IDs.
func ChunkID(sourceID string, index int, content, language, variant string) string {
	prefix := content
	if runes := []rune(content); len(runes) > chunkHashPrefix {
		prefix = string(runes[:chunkHashPrefix])
	}
	sum := sha256.Sum256([]byte(prefix))
	id := fmt.Sprintf("%s_chunk%04d_%s_%s", sourceID, index, hex.EncodeToString(sum[:])[:12], language)
	if variant != "" {
		id += "_" + variant
	}
	return id
}

// JobID returns a new job identifier. Job IDs are intentionally not
// deterministic: every run is a distinct job.
func JobID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "job_" + now.Format("20060102150405") + "_" + suffix
}

// ToUUID deterministically converts a chunk ID into a UUID string for
// backends that only accept UUID point IDs.
func ToUUID(id string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(id)).String()
}
