package storage

import (
	"encoding/hex"

	"github.com/unitport/compiler/internal/ir"
	"golang.org/x/crypto/blake2b"
)

// Hash returns a content-addressed key for a mission: two missions that
// serialize to the same bytes share a cache entry, regardless of ID.
func Hash(mission *ir.WorkflowIR) (string, error) {
	data, err := mission.ToJSON()
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
