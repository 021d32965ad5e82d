package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"
)

// MissionRecord is a persisted compilation result: the mission IR, the
// diagnostics it was compiled with, and the hash it was cached under.
type MissionRecord struct {
	ID        uuid.UUID
	Hash      string
	Mission   *ir.WorkflowIR
	Diags     []diagnostics.Diagnostic
	CreatedAt time.Time
}

// CodegenEntry is a cached generator output for a mission hash, keyed by
// target language. The stores save and look it up; the compile path does
// not read it, so an unchanged mission is lowered and emitted again.
type CodegenEntry struct {
	Hash      string
	Target    string
	Source    string
	CreatedAt time.Time
}
