package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docuflow/docuflow-backend/internal/domain/identity"
	"github.com/docuflow/docuflow-backend/internal/domain/job"
)

const (
	// JobsCollectionName is the name of the jobs collection in MongoDB
	JobsCollectionName = "jobs"

	// mergeRetryLimit bounds the conditional-update retries a merge performs
	// under write contention before giving up.
	mergeRetryLimit = 3
)

// JobRepository implements the job.Repository interface for MongoDB
type JobRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewJobRepository creates a new MongoDB job repository
func NewJobRepository(logger *slog.Logger, db *mongo.Database) job.Repository {
	return &JobRepository{
		db:     db,
		logger: logger,
	}
}

// lookup pairs a lookup strategy with its filter. Chains are evaluated in
// order and short-circuit on the first strategy that matches a document.
type lookup struct {
	strategy job.LookupStrategy
	filter   bson.M
}

// lookupChain builds the ordered fallback filters for a caller-supplied job
// identifier: primary id when the input is a valid opaque id, otherwise the
// batch string followed by verbatim string equality on the primary id.
func lookupChain(id string) []lookup {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return []lookup{{job.LookupObjectID, bson.M{"_id": oid}}}
	}
	return []lookup{
		{job.LookupBatchID, bson.M{"batchId": id}},
		{job.LookupRawID, bson.M{"_id": id}},
	}
}

// primaryIDFilter resolves an identifier against the primary id only; the
// merge path never falls back to the batch string.
func primaryIDFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"_id": id}
}

// agreementValues returns both stored representations of an agreement key
// for $in matching.
func agreementValues(key identity.Key) bson.A {
	vals := bson.A{key.String}
	if key.HasInt {
		vals = append(vals, key.Int)
	}
	return vals
}

// InsertMany stores raw job documents as provided by the caller.
func (r *JobRepository) InsertMany(ctx context.Context, docs []map[string]any) (int64, error) {
	collection := r.db.Collection(JobsCollectionName)

	payload := make([]interface{}, len(docs))
	for i, doc := range docs {
		payload[i] = doc
	}

	result, err := collection.InsertMany(ctx, payload)
	if err != nil {
		r.logger.Error("Failed to insert job documents", "count", len(docs), "error", err)
		return 0, fmt.Errorf("failed to insert job documents: %w", err)
	}

	return int64(len(result.InsertedIDs)), nil
}

// InsertBatch stores one document per row, stamping every row with a shared
// millisecond-epoch batch id and fresh timestamps.
func (r *JobRepository) InsertBatch(ctx context.Context, rows []map[string]any) (string, int64, error) {
	collection := r.db.Collection(JobsCollectionName)

	now := time.Now()
	batchID := strconv.FormatInt(now.UnixMilli(), 10)

	payload := make([]interface{}, len(rows))
	for i, row := range rows {
		doc := make(map[string]any, len(row)+3)
		for k, v := range row {
			doc[k] = v
		}
		doc["batchId"] = batchID
		doc["createdAt"] = now
		doc["updatedAt"] = now
		payload[i] = doc
	}

	result, err := collection.InsertMany(ctx, payload)
	if err != nil {
		r.logger.Error("Failed to insert batch", "batch_id", batchID, "count", len(rows), "error", err)
		return "", 0, fmt.Errorf("failed to insert batch: %w", err)
	}

	return batchID, int64(len(result.InsertedIDs)), nil
}

// BatchSummaries groups jobs by batch id with counts, first timestamps and a
// display sample. The data array is emitted empty for shape compatibility.
func (r *JobRepository) BatchSummaries(ctx context.Context) ([]job.BatchSummary, error) {
	collection := r.db.Collection(JobsCollectionName)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":       "$batchId",
			"count":     bson.M{"$sum": 1},
			"createdAt": bson.M{"$first": "$createdAt"},
			"updatedAt": bson.M{"$first": "$updatedAt"},
			"sampleData": bson.M{"$first": bson.M{
				"Agreement Number": "$Agreement Number",
				"Customer Name":    "$Customer Name",
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        1,
			"count":      1,
			"createdAt":  1,
			"updatedAt":  1,
			"sampleData": 1,
			"batchId":    "$_id",
			"data":       bson.M{"$literal": bson.A{}},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate batch summaries", "error", err)
		return nil, fmt.Errorf("failed to aggregate batch summaries: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []job.BatchSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		r.logger.Error("Failed to decode batch summaries", "error", err)
		return nil, fmt.Errorf("failed to decode batch summaries: %w", err)
	}

	return summaries, nil
}

// FindByBatchID returns every job document belonging to a batch.
func (r *JobRepository) FindByBatchID(ctx context.Context, batchID string) ([]job.Job, error) {
	collection := r.db.Collection(JobsCollectionName)

	cursor, err := collection.Find(ctx, bson.M{"batchId": batchID})
	if err != nil {
		r.logger.Error("Failed to find jobs by batch id", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("failed to find jobs by batch id: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []job.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		r.logger.Error("Failed to decode jobs", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}

	return jobs, nil
}

// FindOneByBatchID returns a single job by its batch string.
// Returns ErrJobNotFound if no job carries the batch id.
func (r *JobRepository) FindOneByBatchID(ctx context.Context, batchID string) (*job.Job, error) {
	collection := r.db.Collection(JobsCollectionName)

	var j job.Job
	err := collection.FindOne(ctx, bson.M{"batchId": batchID}).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, job.ErrJobNotFound{ID: batchID}
		}
		r.logger.Error("Failed to find job by batch id", "batch_id", batchID, "error", err)
		return nil, fmt.Errorf("failed to find job by batch id: %w", err)
	}

	return &j, nil
}

// FindAll returns every job document.
func (r *JobRepository) FindAll(ctx context.Context) ([]job.Job, error) {
	collection := r.db.Collection(JobsCollectionName)

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to find jobs", "error", err)
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []job.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		r.logger.Error("Failed to decode jobs", "error", err)
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}

	return jobs, nil
}

// FindByID locates a job through the ordered lookup chain and reports which
// strategy matched. Returns ErrJobNotFound after every strategy misses.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*job.Job, job.LookupStrategy, error) {
	collection := r.db.Collection(JobsCollectionName)

	for _, l := range lookupChain(id) {
		var j job.Job
		err := collection.FindOne(ctx, l.filter).Decode(&j)
		if err == nil {
			return &j, l.strategy, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Error("Failed to find job", "job_id", id, "strategy", string(l.strategy), "error", err)
			return nil, "", fmt.Errorf("failed to find job: %w", err)
		}
	}

	return nil, "", job.ErrJobNotFound{ID: id}
}

// FindByAgreement searches for a job holding the agreement number at the top
// level first, then inside data arrays. A miss returns (nil, nil).
func (r *JobRepository) FindByAgreement(ctx context.Context, key identity.Key) (*job.Job, error) {
	collection := r.db.Collection(JobsCollectionName)
	vals := agreementValues(key)

	var j job.Job
	err := collection.FindOne(ctx, bson.M{"Agreement Number": bson.M{"$in": vals}}).Decode(&j)
	if err == nil {
		return &j, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		r.logger.Error("Failed to find job by agreement", "agreement_number", key.String, "error", err)
		return nil, fmt.Errorf("failed to find job by agreement: %w", err)
	}

	// Not at the top level; check embedded record lists.
	err = collection.FindOne(ctx, bson.M{
		"data": bson.M{"$elemMatch": bson.M{"Agreement Number": bson.M{"$in": vals}}},
	}).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to find job by embedded agreement", "agreement_number", key.String, "error", err)
		return nil, fmt.Errorf("failed to find job by embedded agreement: %w", err)
	}

	return &j, nil
}

// FindStatusMatch searches only inside data arrays for an entry carrying the
// agreement number with a Matched status. Top-level-only jobs never match
// here; a top-level status marks a legacy job, not a reconciled record.
func (r *JobRepository) FindStatusMatch(ctx context.Context, key identity.Key) (*job.Job, error) {
	collection := r.db.Collection(JobsCollectionName)

	filter := bson.M{
		"data": bson.M{"$elemMatch": bson.M{
			"Agreement Number": bson.M{"$in": agreementValues(key)},
			"status":           job.StatusMatched,
		}},
	}

	var j job.Job
	err := collection.FindOne(ctx, filter).Decode(&j)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to find status match", "agreement_number", key.String, "error", err)
		return nil, fmt.Errorf("failed to find status match: %w", err)
	}

	return &j, nil
}

// ReplaceData replaces a job's data array through the ordered lookup chain,
// refreshing updatedAt. Returns ErrJobNotFound after every strategy misses.
func (r *JobRepository) ReplaceData(ctx context.Context, id string, data []job.Record) (*job.UpdateResult, error) {
	collection := r.db.Collection(JobsCollectionName)

	update := bson.M{"$set": bson.M{
		"data":      data,
		"updatedAt": time.Now(),
	}}

	for _, l := range lookupChain(id) {
		result, err := collection.UpdateOne(ctx, l.filter, update)
		if err != nil {
			r.logger.Error("Failed to update job data", "job_id", id, "strategy", string(l.strategy), "error", err)
			return nil, fmt.Errorf("failed to update job data: %w", err)
		}
		if result.MatchedCount > 0 {
			return &job.UpdateResult{
				MatchedCount:  result.MatchedCount,
				ModifiedCount: result.ModifiedCount,
				Strategy:      l.strategy,
			}, nil
		}
	}

	return nil, job.ErrJobNotFound{ID: id}
}

// MergeAgreementEntry applies a replace-or-append of an agreement entry into
// the job's data array. The write is a conditional update guarded by the
// updatedAt revision read alongside the array, so two concurrent merges on
// the same job cannot both act on a stale array; the loser re-reads and
// retries.
func (r *JobRepository) MergeAgreementEntry(ctx context.Context, jobID string, key identity.Key, entry job.Record) (*job.MergeResult, error) {
	collection := r.db.Collection(JobsCollectionName)
	filter := primaryIDFilter(jobID)

	for attempt := 0; attempt < mergeRetryLimit; attempt++ {
		var j job.Job
		err := collection.FindOne(ctx, filter).Decode(&j)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, job.ErrJobNotFound{ID: jobID}
			}
			r.logger.Error("Failed to load job for merge", "job_id", jobID, "error", err)
			return nil, fmt.Errorf("failed to load job for merge: %w", err)
		}

		merged, replaced := job.MergeAgreementEntry(j.Data, key, entry)

		guard := bson.M{"_id": j.ID}
		if j.UpdatedAt.IsZero() {
			guard["updatedAt"] = bson.M{"$exists": false}
		} else {
			guard["updatedAt"] = j.UpdatedAt
		}

		result, err := collection.UpdateOne(ctx, guard, bson.M{"$set": bson.M{
			"data":      merged,
			"updatedAt": time.Now(),
		}})
		if err != nil {
			r.logger.Error("Failed to merge agreement entry", "job_id", jobID, "agreement_number", key.String, "error", err)
			return nil, fmt.Errorf("failed to merge agreement entry: %w", err)
		}

		if result.MatchedCount > 0 {
			return &job.MergeResult{
				JobID:         j.IDString(),
				ModifiedCount: result.ModifiedCount,
				Replaced:      replaced,
			}, nil
		}

		// Lost the revision race to a concurrent writer; re-read and retry.
		r.logger.Warn("Merge revision conflict, retrying", "job_id", jobID, "attempt", attempt+1)
	}

	return nil, fmt.Errorf("merge contention on job %s: retry limit reached", jobID)
}

// CountAgreements counts every embedded record across all jobs.
func (r *JobRepository) CountAgreements(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$data"}},
		{{Key: "$count", Value: "total"}},
	}
	return r.aggregateCount(ctx, pipeline)
}

// CountMatched counts embedded records with a Matched status.
func (r *JobRepository) CountMatched(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$data"}},
		{{Key: "$match", Value: bson.M{"data.status": job.StatusMatched}}},
		{{Key: "$count", Value: "total"}},
	}
	return r.aggregateCount(ctx, pipeline)
}

func (r *JobRepository) aggregateCount(ctx context.Context, pipeline mongo.Pipeline) (int64, error) {
	collection := r.db.Collection(JobsCollectionName)

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to run count aggregation", "error", err)
		return 0, fmt.Errorf("failed to run count aggregation: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		r.logger.Error("Failed to decode count aggregation", "error", err)
		return 0, fmt.Errorf("failed to decode count aggregation: %w", err)
	}

	// An empty collection yields no count document at all.
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
