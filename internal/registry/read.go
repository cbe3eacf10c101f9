package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quantaforge/quanta/internal/dataset"
	"github.com/quantaforge/quanta/internal/dimension"
)

// QueryDatasets returns every reference of the given type whose data ID
// covers the requested axes, ordered by canonical data ID key so
// resolution sees the same order on every run.
func (r *Registry) QueryDatasets(ctx context.Context, typeName dataset.TypeName, dims dimension.Set) ([]dataset.Ref, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, data_id_json FROM datasets
		WHERE type_name = ?
		ORDER BY data_id_key ASC, id ASC
	`, string(typeName))
	if err != nil {
		return nil, fmt.Errorf("query datasets of type %s: %w", typeName, err)
	}
	defer rows.Close()

	var refs []dataset.Ref
	for rows.Next() {
		var id, dataIDJSON string
		if err := rows.Scan(&id, &dataIDJSON); err != nil {
			return nil, fmt.Errorf("scan dataset row: %w", err)
		}
		var values map[string]string
		if err := json.Unmarshal([]byte(dataIDJSON), &values); err != nil {
			return nil, fmt.Errorf("decode data id for dataset %s: %w", id, err)
		}
		dataID := dimension.NewDataID(values)
		if !dataID.Covers(dims) {
			continue
		}
		refs = append(refs, dataset.Ref{ID: id, Type: typeName, DataID: dataID})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate datasets of type %s: %w", typeName, err)
	}
	return refs, nil
}

// Dereference resolves a reference to its stored value. Lookup is by
// registry ID when the reference carries one, otherwise by (type, data
// ID). This registry stores whole payloads, so the params selection hint
// is ignored; partial loads belong to storage layers that support them.
func (r *Registry) Dereference(ctx context.Context, ref dataset.Ref, params any) (any, error) {
	var (
		payload []byte
		storage string
		err     error
	)
	if ref.ID != "" {
		err = r.db.QueryRowContext(ctx, `
			SELECT d.payload, t.storage_class
			FROM datasets d JOIN dataset_types t ON t.name = d.type_name
			WHERE d.id = ?
		`, ref.ID).Scan(&payload, &storage)
	} else {
		err = r.db.QueryRowContext(ctx, `
			SELECT d.payload, t.storage_class
			FROM datasets d JOIN dataset_types t ON t.name = d.type_name
			WHERE d.type_name = ? AND d.data_id_key = ?
		`, string(ref.Type), ref.DataID.CanonicalKey()).Scan(&payload, &storage)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dereference %s: %w", ref, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("dereference %s: %w", ref, err)
	}
	return r.codec.Decode(storage, payload)
}

// DatasetTypes returns all registered dataset types ordered by name.
func (r *Registry) DatasetTypes(ctx context.Context) ([]dataset.Type, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, storage_class FROM dataset_types ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query dataset types: %w", err)
	}
	defer rows.Close()

	var types []dataset.Type
	for rows.Next() {
		var name, storage string
		if err := rows.Scan(&name, &storage); err != nil {
			return nil, fmt.Errorf("scan dataset type row: %w", err)
		}
		types = append(types, dataset.Type{Name: dataset.TypeName(name), StorageClass: storage})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dataset types: %w", err)
	}
	return types, nil
}
