package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"spamlens/config"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var (
	keySchemaVersion = []byte("schema_version")
	keyConfigHash    = []byte("config_hash")
)

// SchemaInfo stores schema version and configuration hash.
type SchemaInfo struct {
	Version    int    `json:"version"`
	ConfigHash string `json:"config_hash"`
}

// GetSchemaInfo retrieves the current schema info from the database.
func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}

		if versionData := b.Get(keySchemaVersion); versionData != nil {
			if err := json.Unmarshal(versionData, &info.Version); err != nil {
				info.Version = 1
			}
		}

		if hashData := b.Get(keyConfigHash); hashData != nil {
			info.ConfigHash = string(hashData)
		}

		return nil
	})
	return &info, err
}

// SetSchemaInfo stores the schema info in the database.
func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)

		versionData, err := json.Marshal(info.Version)
		if err != nil {
			return err
		}
		if err := b.Put(keySchemaVersion, versionData); err != nil {
			return err
		}

		return b.Put(keyConfigHash, []byte(info.ConfigHash))
	})
}

// ComputeConfigHash hashes the configuration that changes explanation
// output. A different hash means persisted explanations are stale.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		KernelWidth float64 `json:"kernel_width"`
		RidgeAlpha  float64 `json:"ridge_alpha"`
		MaskURLs    bool    `json:"mask_urls"`
		MaskPhones  bool    `json:"mask_phones"`
		MaskNumbers bool    `json:"mask_numbers"`
	}{
		KernelWidth: cfg.Explain.KernelWidth,
		RidgeAlpha:  cfg.Explain.RidgeAlpha,
		MaskURLs:    cfg.Normalize.MaskURLs,
		MaskPhones:  cfg.Normalize.MaskPhones,
		MaskNumbers: cfg.Normalize.MaskNumbers,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	// NeedsReset means cached explanations must be dropped.
	NeedsReset bool
	OldVersion int
	NewVersion int
	Reason     string
}

// CheckMigration checks if a schema migration or cache reset is needed.
func (s *BoltStore) CheckMigration(cfg *config.Config) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		result.NeedsReset = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	if info.ConfigHash != "" && info.ConfigHash != ComputeConfigHash(cfg) {
		result.NeedsReset = true
		result.Reason = "explanation configuration changed"
	}

	return result, nil
}

// Migrate runs pending schema migrations, drops stale explanations and
// records the current version and config hash.
func (s *BoltStore) Migrate(cfg *config.Config) (*MigrationResult, error) {
	result, err := s.CheckMigration(cfg)
	if err != nil {
		return nil, err
	}

	for v := result.OldVersion; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return nil, fmt.Errorf("migration from v%d to v%d failed: %w", v, v+1, err)
		}
	}

	if result.NeedsReset {
		if err := s.ClearExplanations(); err != nil {
			return nil, fmt.Errorf("reset explanations: %w", err)
		}
	}

	return result, s.SetSchemaInfo(&SchemaInfo{
		Version:    CurrentSchemaVersion,
		ConfigHash: ComputeConfigHash(cfg),
	})
}

func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 1 && to == 2:
		// v1 stored artifacts inline with metadata and had no explanation cache.
		return s.db.Update(func(tx *bbolt.Tx) error {
			if _, err := tx.CreateBucketIfNotExists(bucketArtifacts); err != nil {
				return err
			}
			_, err := tx.CreateBucketIfNotExists(bucketExplanations)
			return err
		})
	default:
		return nil
	}
}
