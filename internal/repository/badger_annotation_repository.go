package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"pdf-annotator/internal/domain"
)

const annotationsPrefix = "annotations:"

// BadgerAnnotationRepository keeps annotation payloads in an embedded
// Badger database, one key per user and document.
type BadgerAnnotationRepository struct {
	db     *badger.DB
	logger domain.Logger
}

// OpenBadgerAnnotationRepository opens (or creates) the database at path.
// An empty path opens an in-memory database.
func OpenBadgerAnnotationRepository(path string, logger domain.Logger) (*BadgerAnnotationRepository, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	logger.Info("Badger database opened successfully", "path", path)
	return &BadgerAnnotationRepository{db: db, logger: logger}, nil
}

// Close closes the database.
func (r *BadgerAnnotationRepository) Close() error {
	return r.db.Close()
}

func annotationKey(userID, documentID string) []byte {
	return []byte(annotationsPrefix + userID + ":" + documentID)
}

// Get implements domain.AnnotationRepository.
func (r *BadgerAnnotationRepository) Get(userID, documentID, _ string) (*domain.Annotations, error) {
	var a domain.Annotations
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(annotationKey(userID, documentID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.ErrAnnotationsNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		})
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Put implements domain.AnnotationRepository with upsert semantics.
func (r *BadgerAnnotationRepository) Put(userID, documentID string, a *domain.Annotations, _ string) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal annotations: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(annotationKey(userID, documentID), data)
	})
}

// Delete implements domain.AnnotationRepository.
func (r *BadgerAnnotationRepository) Delete(userID, documentID, _ string) error {
	key := annotationKey(userID, documentID)
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrAnnotationsNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

// ListDocuments returns the document IDs a user has annotations for.
func (r *BadgerAnnotationRepository) ListDocuments(userID string) ([]string, error) {
	prefix := []byte(annotationsPrefix + userID + ":")
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return ids, err
}
