package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/docuflow/docuflow-backend/internal/domain/identity"
	"github.com/docuflow/docuflow-backend/internal/domain/ledger"
)

const (
	// CitiCollectionName is the name of the reference ledger collection
	CitiCollectionName = "citi_data"

	// QuarantineCollectionName is the name of the quarantine collection
	QuarantineCollectionName = "quarantine_data"
)

// EntryRepository implements the ledger.Repository interface for MongoDB.
// The same implementation backs both the reference ledger and the quarantine
// store; only the collection differs.
type EntryRepository struct {
	db         *mongo.Database
	collection string
	logger     *slog.Logger
}

// NewCitiRepository creates a repository over the reference ledger collection
func NewCitiRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	return &EntryRepository{db: db, collection: CitiCollectionName, logger: logger}
}

// NewQuarantineRepository creates a repository over the quarantine collection
func NewQuarantineRepository(logger *slog.Logger, db *mongo.Database) ledger.Repository {
	return &EntryRepository{db: db, collection: QuarantineCollectionName, logger: logger}
}

// EnsureIndexes creates the unique (Agreement Number, jobId) index that
// makes CreateIfAbsent atomic: a concurrent insert for the same pair loses
// with a duplicate-key error instead of writing a second document.
func (r *EntryRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(r.collection)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "Agreement Number", Value: 1},
			{Key: "jobId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		r.logger.Error("Failed to create unique entry index", "collection", r.collection, "error", err)
		return fmt.Errorf("failed to create unique entry index: %w", err)
	}

	return nil
}

// CreateIfAbsent inserts the entry unless one already exists for the same
// (Agreement Number, jobId) pair. A duplicate is a no-op, not an error: the
// lookup is a fast path that also catches mixed string/number stored
// representations, and the unique index settles concurrent inserts.
func (r *EntryRepository) CreateIfAbsent(ctx context.Context, entry *ledger.Entry) (bool, error) {
	collection := r.db.Collection(r.collection)

	key := identity.Normalize(entry.AgreementNumber)
	filter := bson.M{
		"Agreement Number": bson.M{"$in": agreementValues(key)},
		"jobId":            entry.JobID,
	}

	err := collection.FindOne(ctx, filter).Err()
	if err == nil {
		r.logger.Info("Entry already exists, skipping save",
			"collection", r.collection,
			"agreement_number", key.String,
			"job_id", entry.JobID)
		return false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to check for existing entry",
			"collection", r.collection,
			"agreement_number", key.String,
			"error", err)
		return false, fmt.Errorf("failed to check for existing entry: %w", err)
	}

	entry.ApplyDefaults(time.Now())

	res, err := collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the race against a concurrent insert for the same pair.
			r.logger.Info("Entry already exists, skipping save",
				"collection", r.collection,
				"agreement_number", key.String,
				"job_id", entry.JobID)
			return false, nil
		}
		r.logger.Error("Failed to insert entry",
			"collection", r.collection,
			"agreement_number", key.String,
			"error", err)
		return false, fmt.Errorf("failed to insert entry: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid
	}

	return true, nil
}

// FindByJobID returns entries for a job; an empty jobID returns all entries.
func (r *EntryRepository) FindByJobID(ctx context.Context, jobID string) ([]ledger.Entry, error) {
	filter := bson.M{}
	if jobID != "" {
		filter["jobId"] = jobID
	}
	return r.find(ctx, filter, nil)
}

// FindByAgreement returns entries for the given agreement number.
func (r *EntryRepository) FindByAgreement(ctx context.Context, agreementNumber any) ([]ledger.Entry, error) {
	key := identity.Normalize(agreementNumber)
	filter := bson.M{"Agreement Number": bson.M{"$in": agreementValues(key)}}
	return r.find(ctx, filter, nil)
}

// FindForExport returns all entries with the matched image blob projected
// out; it is large and never exported.
func (r *EntryRepository) FindForExport(ctx context.Context) ([]ledger.Entry, error) {
	opts := options.Find().SetProjection(bson.M{"matchedImage": 0})
	return r.find(ctx, bson.M{}, opts)
}

// Count counts entries, optionally scoped to a job.
func (r *EntryRepository) Count(ctx context.Context, jobID string) (int64, error) {
	collection := r.db.Collection(r.collection)

	filter := bson.M{}
	if jobID != "" {
		filter["jobId"] = jobID
	}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count entries", "collection", r.collection, "error", err)
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return count, nil
}

func (r *EntryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]ledger.Entry, error) {
	collection := r.db.Collection(r.collection)

	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = collection.Find(ctx, filter, opts)
	} else {
		cursor, err = collection.Find(ctx, filter)
	}
	if err != nil {
		r.logger.Error("Failed to find entries", "collection", r.collection, "error", err)
		return nil, fmt.Errorf("failed to find entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode entries", "collection", r.collection, "error", err)
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}

	return entries, nil
}
