package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quantaforge/quanta/internal/dataset"
)

// RegisterDatasetType records a dataset type. Registering the same name
// with the same storage class twice is a no-op; a different storage
// class is a StorageClassMismatchError.
func (r *Registry) RegisterDatasetType(ctx context.Context, t dataset.Type) error {
	if t.Name == "" {
		return fmt.Errorf("dataset type name must not be empty")
	}
	if t.StorageClass == "" {
		return fmt.Errorf("storage class must not be empty")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dataset_types (name, storage_class)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, string(t.Name), t.StorageClass)
	if err != nil {
		return fmt.Errorf("register dataset type %s: %w", t.Name, err)
	}

	existing, err := r.datasetType(ctx, t.Name)
	if err != nil {
		return err
	}
	if existing.StorageClass != t.StorageClass {
		return &StorageClassMismatchError{Type: t.Name, Existing: existing.StorageClass, Given: t.StorageClass}
	}
	return nil
}

// Persist stores a value under its reference. The reference's type must
// be registered. Persisting the same (type, data ID) twice is
// idempotent: the first payload wins.
func (r *Registry) Persist(ctx context.Context, ref dataset.Ref, value any) error {
	t, err := r.datasetType(ctx, ref.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return &UnregisteredDatasetTypeError{Type: ref.Type}
	}
	if err != nil {
		return err
	}

	payload, err := r.codec.Encode(t.StorageClass, value)
	if err != nil {
		return fmt.Errorf("persist %s: %w", ref, err)
	}

	dataIDJSON, err := json.Marshal(ref.DataID)
	if err != nil {
		return fmt.Errorf("persist %s: marshal data id: %w", ref, err)
	}

	id := ref.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO datasets (id, type_name, data_id_key, data_id_json, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(type_name, data_id_key) DO NOTHING
	`, id, string(ref.Type), ref.DataID.CanonicalKey(), string(dataIDJSON), payload)
	if err != nil {
		return fmt.Errorf("persist %s: %w", ref, err)
	}
	return nil
}

// datasetType looks up a registered type. Returns sql.ErrNoRows wrapped
// when the type is unknown.
func (r *Registry) datasetType(ctx context.Context, name dataset.TypeName) (dataset.Type, error) {
	var t dataset.Type
	var n string
	err := r.db.QueryRowContext(ctx, `
		SELECT name, storage_class FROM dataset_types WHERE name = ?
	`, string(name)).Scan(&n, &t.StorageClass)
	if err != nil {
		return dataset.Type{}, fmt.Errorf("lookup dataset type %s: %w", name, err)
	}
	t.Name = dataset.TypeName(n)
	return t, nil
}
