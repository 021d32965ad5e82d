package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/unitport/compiler/internal/diagnostics"
	"github.com/unitport/compiler/internal/ir"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// BunStore is the production Store, backed by Postgres via bun.
type BunStore struct {
	db *bun.DB
}

func NewBunStore(dsn string) *BunStore {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	return &BunStore{db: db}
}

func (s *BunStore) InitSchema(ctx context.Context) error {
	models := []interface{}{
		(*missionModel)(nil),
		(*codegenModel)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

type missionModel struct {
	bun.BaseModel `bun:"table:mission_records,alias:m"`

	ID        uuid.UUID `bun:"id,pk"`
	Hash      string    `bun:"hash,unique"`
	Mission   []byte    `bun:"mission,type:jsonb"`
	Diags     []byte    `bun:"diagnostics,type:jsonb"`
	CreatedAt time.Time `bun:"created_at"`
}

func newMissionModel(rec *MissionRecord) (*missionModel, error) {
	missionJSON, err := rec.Mission.ToJSON()
	if err != nil {
		return nil, err
	}
	diagsJSON, err := diagnostics.MarshalList(rec.Diags)
	if err != nil {
		return nil, err
	}
	return &missionModel{
		ID:        rec.ID,
		Hash:      rec.Hash,
		Mission:   missionJSON,
		Diags:     diagsJSON,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (m *missionModel) toRecord() (*MissionRecord, error) {
	mission, err := ir.FromJSON(m.Mission)
	if err != nil {
		return nil, err
	}
	diags, err := diagnostics.UnmarshalList(m.Diags)
	if err != nil {
		return nil, err
	}
	return &MissionRecord{
		ID:        m.ID,
		Hash:      m.Hash,
		Mission:   mission,
		Diags:     diags,
		CreatedAt: m.CreatedAt,
	}, nil
}

func (s *BunStore) SaveMission(ctx context.Context, rec *MissionRecord) error {
	model, err := newMissionModel(rec)
	if err != nil {
		return err
	}
	_, err = s.db.NewInsert().Model(model).On("CONFLICT (id) DO UPDATE").Exec(ctx)
	return err
}

func (s *BunStore) GetMission(ctx context.Context, id uuid.UUID) (*MissionRecord, error) {
	model := new(missionModel)
	if err := s.db.NewSelect().Model(model).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	return model.toRecord()
}

func (s *BunStore) GetMissionByHash(ctx context.Context, hash string) (*MissionRecord, error) {
	model := new(missionModel)
	if err := s.db.NewSelect().Model(model).Where("hash = ?", hash).Scan(ctx); err != nil {
		return nil, fmt.Errorf("mission not found for hash %s: %w", hash, err)
	}
	return model.toRecord()
}

func (s *BunStore) ListMissions(ctx context.Context) ([]*MissionRecord, error) {
	var models []missionModel
	if err := s.db.NewSelect().Model(&models).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]*MissionRecord, 0, len(models))
	for i := range models {
		rec, err := models[i].toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

type codegenModel struct {
	bun.BaseModel `bun:"table:codegen_cache,alias:c"`

	Hash      string    `bun:"hash,pk"`
	Target    string    `bun:"target,pk"`
	Source    string    `bun:"source"`
	CreatedAt time.Time `bun:"created_at"`
}

func (s *BunStore) SaveCodegenEntry(ctx context.Context, e *CodegenEntry) error {
	model := &codegenModel{Hash: e.Hash, Target: e.Target, Source: e.Source, CreatedAt: e.CreatedAt}
	_, err := s.db.NewInsert().Model(model).On("CONFLICT (hash, target) DO UPDATE").Exec(ctx)
	return err
}

func (s *BunStore) GetCodegenEntry(ctx context.Context, hash, target string) (*CodegenEntry, error) {
	model := new(codegenModel)
	err := s.db.NewSelect().Model(model).Where("hash = ?", hash).Where("target = ?", target).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &CodegenEntry{Hash: model.Hash, Target: model.Target, Source: model.Source, CreatedAt: model.CreatedAt}, nil
}

func (s *BunStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *BunStore) Close() error                   { return s.db.Close() }
