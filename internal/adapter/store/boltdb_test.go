package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spamlens/config"
	"spamlens/internal/domain"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStore_Models(t *testing.T) {
	s := openTestStore(t)

	info := domain.ModelInfo{
		Name:       "sms",
		Version:    "1",
		Kind:       "logistic",
		Classes:    []string{"ham", "spam"},
		Features:   25,
		ImportedAt: time.Unix(1700000000, 0).UTC(),
	}
	if err := s.PutModel(info, []byte(`{"name":"sms"}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutModel(domain.ModelInfo{Name: "alt"}, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	got, artifact, err := s.GetModel("sms")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != "logistic" || got.Features != 25 || !got.ImportedAt.Equal(info.ImportedAt) {
		t.Errorf("unexpected info: %+v", got)
	}
	if string(artifact) != `{"name":"sms"}` {
		t.Errorf("unexpected artifact: %s", artifact)
	}

	models, err := s.ListModels()
	if err != nil {
		t.Fatal(err)
	}
	if len(models) != 2 || models[0].Name != "alt" || models[1].Name != "sms" {
		t.Errorf("expected [alt sms], got %+v", models)
	}

	if err := s.DeleteModel("sms"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.GetModel("sms"); !errors.Is(err, domain.ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
	if err := s.DeleteModel("sms"); !errors.Is(err, domain.ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound on second delete, got %v", err)
	}
	if err := s.PutModel(domain.ModelInfo{}, nil); !errors.Is(err, domain.ErrInvalidModel) {
		t.Errorf("expected ErrInvalidModel for unnamed model, got %v", err)
	}
}

func TestBoltStore_Explanations(t *testing.T) {
	s := openTestStore(t)

	exp := domain.Explanation{Contributions: []domain.Contribution{
		{Word: "free", Percentage: 62.5},
		{Word: "win", Percentage: 20},
	}}
	if err := s.PutExplanation("k1", exp); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.GetExplanation("k1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got.Contributions) != 2 || got.Contributions[0].Word != "free" || got.Contributions[0].Percentage != 62.5 {
		t.Errorf("unexpected explanation: %+v", got)
	}

	if _, ok, _ := s.GetExplanation("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	n, err := s.CountExplanations()
	if err != nil || n != 1 {
		t.Errorf("expected 1 explanation, got %d (%v)", n, err)
	}

	if err := s.ClearExplanations(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetExplanation("k1"); ok {
		t.Error("expected miss after clear")
	}
}

func TestBoltStore_ReplaceModelClearsExplanations(t *testing.T) {
	s := openTestStore(t)
	exp := domain.Explanation{Contributions: []domain.Contribution{{Word: "free", Percentage: 100}}}

	if err := s.PutModel(domain.ModelInfo{Name: "sms", Version: "1"}, []byte(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutExplanation("k1", exp); err != nil {
		t.Fatal(err)
	}

	// a new name leaves explanations alone
	if err := s.PutModel(domain.ModelInfo{Name: "other"}, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetExplanation("k1"); !ok {
		t.Fatal("expected explanation to survive import of a different model")
	}

	if err := s.PutModel(domain.ModelInfo{Name: "sms", Version: "1"}, []byte(`{"v":2}`)); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.GetExplanation("k1"); ok {
		t.Error("expected explanations dropped after replacing sms")
	}
	_, artifact, err := s.GetModel("sms")
	if err != nil {
		t.Fatal(err)
	}
	if string(artifact) != `{"v":2}` {
		t.Errorf("expected replaced artifact, got %s", artifact)
	}
}

func TestMigrate(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()

	res, err := s.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !res.NeedsMigration || res.OldVersion != 0 {
		t.Errorf("expected fresh database to need migration, got %+v", res)
	}

	if _, err := s.Migrate(cfg); err != nil {
		t.Fatal(err)
	}
	info, err := s.GetSchemaInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != CurrentSchemaVersion || info.ConfigHash != ComputeConfigHash(cfg) {
		t.Errorf("unexpected schema info: %+v", info)
	}

	if err := s.PutExplanation("k", domain.Explanation{}); err != nil {
		t.Fatal(err)
	}

	// unrelated settings keep the cache
	cfg.Server.Addr = ":1234"
	res, err = s.Migrate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.NeedsReset {
		t.Errorf("did not expect reset: %s", res.Reason)
	}
	if _, ok, _ := s.GetExplanation("k"); !ok {
		t.Error("expected explanation to survive")
	}

	cfg.Explain.KernelWidth = 25
	res, err = s.Migrate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !res.NeedsReset {
		t.Error("expected reset after kernel width change")
	}
	if _, ok, _ := s.GetExplanation("k"); ok {
		t.Error("expected explanations to be cleared")
	}
}

func TestComputeConfigHash(t *testing.T) {
	a := config.DefaultConfig()
	b := config.DefaultConfig()
	if ComputeConfigHash(a) != ComputeConfigHash(b) {
		t.Error("expected equal hashes for equal configs")
	}
	b.Normalize.MaskPhones = false
	if ComputeConfigHash(a) == ComputeConfigHash(b) {
		t.Error("expected normalizer toggle to change the hash")
	}
}
