package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"excelEvidence/internal/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RunsCollection   = "runs"
	AuditsCollection = "audits"
)

var ErrRunNotFound = errors.New("run not found")

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	logger   *logrus.Logger
}

func NewMongoDB(uri, dbName string, logger *logrus.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Infof("Connected to MongoDB database %s", dbName)

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
		logger:   logger,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

func runFilter(runDir string) bson.M {
	return bson.M{"run_dir": runDir}
}

// SaveRun stores the run record of a run folder, replacing the record of an earlier run
// into the same folder. It reports whether a record was replaced.
func (m *MongoDB) SaveRun(ctx context.Context, rec models.RunRecord) (bool, error) {
	collection := m.Database.Collection(RunsCollection)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := runFilter(rec.RunDir)
	var existing models.RunRecord
	err := collection.FindOne(ctx, filter).Decode(&existing)

	wasUpdate := false
	switch {
	case err == nil:
		wasUpdate = true
		m.logger.Debugf("replacing run %s recorded for %s", existing.RunID, rec.RunDir)
	case errors.Is(err, mongo.ErrNoDocuments):
	default:
		return false, fmt.Errorf("failed to check existing run for %s: %w", rec.RunDir, err)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, filter, rec, opts); err != nil {
		return false, fmt.Errorf("failed to upsert run %s: %w", rec.RunID, err)
	}
	return wasUpdate, nil
}

// LoadRun returns the latest run recorded for runDir.
func (m *MongoDB) LoadRun(ctx context.Context, runDir string) (models.RunRecord, error) {
	collection := m.Database.Collection(RunsCollection)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var rec models.RunRecord
	err := collection.FindOne(ctx, runFilter(runDir)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return rec, fmt.Errorf("%w: %s", ErrRunNotFound, runDir)
	}
	if err != nil {
		return rec, fmt.Errorf("failed to load run for %s: %w", runDir, err)
	}
	return rec, nil
}

func (m *MongoDB) SaveAudit(ctx context.Context, report *models.AuditReport) error {
	collection := m.Database.Collection(AuditsCollection)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert audit report: %w", err)
	}
	return nil
}

// Audits lists the audit reports of runDir, newest first, at most limit of them.
func (m *MongoDB) Audits(ctx context.Context, runDir string, limit int64) ([]models.AuditReport, error) {
	collection := m.Database.Collection(AuditsCollection)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "audited_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := collection.Find(ctx, runFilter(runDir), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []models.AuditReport
	for cursor.Next(ctx) {
		var r models.AuditReport
		if err := cursor.Decode(&r); err != nil {
			return nil, fmt.Errorf("failed to decode audit report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return reports, nil
}
