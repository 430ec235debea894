package databases

// go generate: mockery --name ReportDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Was1f/UrbanFix-sub001/models"
)

const reportName = "moderation_reports"

// ReportDatabase contains the methods to use with the moderation report database
type ReportDatabase interface {
	InsertOne(ctx context.Context, report models.ModerationReport) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ModerationReport, error)
	FindPendingByReporter(ctx context.Context, target primitive.ObjectID, reporter string) (*models.ModerationReport, error)
	Find(ctx context.Context, status models.ReportStatus, limit, page int) ([]models.ModerationReport, error)
	Review(ctx context.Context, id primitive.ObjectID, status models.ReportStatus, reviewerID, notes string) (*models.ModerationReport, error)
	Revoke(ctx context.Context, id primitive.ObjectID, reporter string) (*models.ModerationReport, error)
}

type reportDatabase struct {
	db DatabaseHelper
}

// NewReportDatabase initializes a new instance of report database with the provided db connection
func NewReportDatabase(db DatabaseHelper) ReportDatabase {
	return &reportDatabase{
		db: db,
	}
}

func (c *reportDatabase) InsertOne(ctx context.Context, report models.ModerationReport) (primitive.ObjectID, error) {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	if _, err := c.db.Collection(reportName).InsertOne(ctx, report); err != nil {
		return primitive.NilObjectID, err
	}
	return report.ID, nil
}

func (c *reportDatabase) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ModerationReport, error) {
	report := &models.ModerationReport{}
	if err := c.db.Collection(reportName).FindOne(ctx, bson.M{"_id": id}).Decode(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (c *reportDatabase) FindPendingByReporter(ctx context.Context, target primitive.ObjectID, reporter string) (*models.ModerationReport, error) {
	report := &models.ModerationReport{}
	err := c.db.Collection(reportName).FindOne(ctx, bson.M{
		"targetDiscussionId": target,
		"reporterIdentity":   reporter,
		"status":             models.ReportPending,
	}).Decode(report)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *reportDatabase) Find(ctx context.Context, status models.ReportStatus, limit, page int) ([]models.ModerationReport, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := newestFirst(newMongoPaginate(limit, page).getPaginatedOpts())

	cursor, err := c.db.Collection(reportName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []models.ModerationReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Review moves a pending report to a terminal status. ErrNoMatch means the
// report is missing or no longer pending.
func (c *reportDatabase) Review(ctx context.Context, id primitive.ObjectID, status models.ReportStatus, reviewerID, notes string) (*models.ModerationReport, error) {
	set := bson.M{
		"status":     status,
		"reviewerId": reviewerID,
		"reviewedAt": time.Now().UTC(),
	}
	if notes != "" {
		set["adminNotes"] = notes
	}
	return c.transition(ctx, bson.M{"_id": id, "status": models.ReportPending}, bson.M{"$set": set})
}

// Revoke withdraws a pending report on behalf of its reporter
func (c *reportDatabase) Revoke(ctx context.Context, id primitive.ObjectID, reporter string) (*models.ModerationReport, error) {
	now := time.Now().UTC()
	return c.transition(ctx,
		bson.M{"_id": id, "status": models.ReportPending, "reporterIdentity": reporter},
		bson.M{"$set": bson.M{
			"status":     models.ReportResolved,
			"adminNotes": "withdrawn by reporter",
			"revokedAt":  now,
		}},
	)
}

func (c *reportDatabase) transition(ctx context.Context, filter, update bson.M) (*models.ModerationReport, error) {
	report := &models.ModerationReport{}
	err := c.db.Collection(reportName).FindOneAndUpdate(ctx, filter, update, afterUpdate()).Decode(report)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// EnsureReportIndexes creates the review queue index
func EnsureReportIndexes(ctx context.Context, db DatabaseHelper) error {
	return db.Collection(reportName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "targetDiscussionId", Value: 1}, {Key: "status", Value: 1}}},
	})
}
