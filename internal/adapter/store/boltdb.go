package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"spamlens/internal/domain"
)

var (
	bucketModels       = []byte("models")
	bucketArtifacts    = []byte("artifacts")
	bucketExplanations = []byte("explanations")
	bucketMeta         = []byte("meta")
)

// BoltStore keeps model artifacts, their metadata and cached explanations
// in a single bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketModels, bucketArtifacts, bucketExplanations, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

// PutModel stores a model under info.Name. Replacing an existing model
// drops all persisted explanations.
func (s *BoltStore) PutModel(info domain.ModelInfo, artifact []byte) error {
	if info.Name == "" {
		return fmt.Errorf("%w: model name is required", domain.ErrInvalidModel)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(info)
		if err != nil {
			return err
		}
		models := tx.Bucket(bucketModels)
		if models.Get([]byte(info.Name)) != nil {
			// explanations of the replaced artifact may share its keys
			if err := resetBucket(tx, bucketExplanations); err != nil {
				return err
			}
		}
		if err := models.Put([]byte(info.Name), data); err != nil {
			return err
		}
		return tx.Bucket(bucketArtifacts).Put([]byte(info.Name), artifact)
	})
}

func (s *BoltStore) GetModel(name string) (domain.ModelInfo, []byte, error) {
	var (
		info     domain.ModelInfo
		artifact []byte
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketModels).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
		}
		if err := json.Unmarshal(data, &info); err != nil {
			return err
		}
		// bbolt values are only valid for the life of the transaction
		raw := tx.Bucket(bucketArtifacts).Get([]byte(name))
		artifact = append([]byte(nil), raw...)
		return nil
	})
	return info, artifact, err
}

func (s *BoltStore) ListModels() ([]domain.ModelInfo, error) {
	var models []domain.ModelInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketModels).ForEach(func(k, v []byte) error {
			var info domain.ModelInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("model %s: %w", k, err)
			}
			models = append(models, info)
			return nil
		})
	})
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, err
}

func (s *BoltStore) DeleteModel(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketModels)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
		}
		if err := b.Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketArtifacts).Delete([]byte(name))
	})
}

func (s *BoltStore) PutExplanation(key string, exp domain.Explanation) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(exp)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketExplanations).Put([]byte(key), data)
	})
}

func (s *BoltStore) GetExplanation(key string) (domain.Explanation, bool, error) {
	var (
		exp   domain.Explanation
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketExplanations).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &exp)
	})
	return exp, found, err
}

// CountExplanations reports how many explanations are persisted.
func (s *BoltStore) CountExplanations() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketExplanations).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) ClearExplanations() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return resetBucket(tx, bucketExplanations)
	})
}

func resetBucket(tx *bbolt.Tx, name []byte) error {
	if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
		return err
	}
	_, err := tx.CreateBucket(name)
	return err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
