package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store persists compiled missions and their codegen cache. Both the
// in-memory and bun-backed implementations below satisfy it, following the
// teacher's pattern of keeping a drop-in memory store alongside the
// production bun store.
type Store interface {
	SaveMission(ctx context.Context, rec *MissionRecord) error
	GetMission(ctx context.Context, id uuid.UUID) (*MissionRecord, error)
	GetMissionByHash(ctx context.Context, hash string) (*MissionRecord, error)
	ListMissions(ctx context.Context) ([]*MissionRecord, error)

	SaveCodegenEntry(ctx context.Context, e *CodegenEntry) error
	GetCodegenEntry(ctx context.Context, hash, target string) (*CodegenEntry, error)
}

// MemoryStore is a map-backed Store for tests and single-process use.
type MemoryStore struct {
	mu       sync.RWMutex
	missions map[uuid.UUID]*MissionRecord
	byHash   map[string]uuid.UUID
	codegen  map[string]*CodegenEntry // hash+target -> entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		missions: make(map[uuid.UUID]*MissionRecord),
		byHash:   make(map[string]uuid.UUID),
		codegen:  make(map[string]*CodegenEntry),
	}
}

func (s *MemoryStore) SaveMission(ctx context.Context, rec *MissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missions[rec.ID] = rec
	s.byHash[rec.Hash] = rec.ID
	return nil
}

func (s *MemoryStore) GetMission(ctx context.Context, id uuid.UUID) (*MissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.missions[id]
	if !ok {
		return nil, fmt.Errorf("mission not found: %s", id)
	}
	return rec, nil
}

func (s *MemoryStore) GetMissionByHash(ctx context.Context, hash string) (*MissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	if !ok {
		return nil, fmt.Errorf("mission not found for hash: %s", hash)
	}
	return s.missions[id], nil
}

func (s *MemoryStore) ListMissions(ctx context.Context) ([]*MissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*MissionRecord, 0, len(s.missions))
	for _, rec := range s.missions {
		out = append(out, rec)
	}
	return out, nil
}

func codegenKey(hash, target string) string { return hash + ":" + target }

func (s *MemoryStore) SaveCodegenEntry(ctx context.Context, e *CodegenEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codegen[codegenKey(e.Hash, e.Target)] = e
	return nil
}

func (s *MemoryStore) GetCodegenEntry(ctx context.Context, hash, target string) (*CodegenEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.codegen[codegenKey(hash, target)]
	if !ok {
		return nil, fmt.Errorf("codegen entry not found for hash %s target %s", hash, target)
	}
	return e, nil
}
