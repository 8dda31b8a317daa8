package storage

import "context"

// NopStore accepts and drops every record.
type NopStore struct{}

func (NopStore) Put(ctx context.Context, collection, id string, record map[string]any) error {
	return nil
}

func (NopStore) Close() error { return nil }

var _ DocumentStore = NopStore{}
