// Package groupstats provides the aggregated attendance and assessment
// figures shown on the group page.
package groupstats

import (
	"context"
	"math"

	"github.com/arikst/schoolhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stats holds the computed figures for one group.
type Stats struct {
	Present       int64
	Absent        int64
	Late          int64
	AvgAssessment float64 // mean assessment value, one decimal, 0 when none
}

func studentIDs(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := db.Collection("students").Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// ForGroup computes attendance status counts and the mean assessment value
// across all students of the group. A group with no students or no data
// yields zero counts and a 0 average.
func ForGroup(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) (Stats, error) {
	ids, err := studentIDs(ctx, db, groupID)
	if err != nil {
		return Stats{}, err
	}
	if len(ids) == 0 {
		return Stats{}, nil
	}

	var stats Stats

	// Attendance: one count per status.
	attPipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"student_id": bson.M{"$in": ids}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := db.Collection("attendance").Aggregate(ctx, attPipe)
	if err != nil {
		return Stats{}, err
	}
	var attRows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &attRows); err != nil {
		return Stats{}, err
	}
	for _, row := range attRows {
		switch row.Status {
		case models.AttendancePresent:
			stats.Present = row.Count
		case models.AttendanceAbsent:
			stats.Absent = row.Count
		case models.AttendanceLate:
			stats.Late = row.Count
		}
	}

	// Assessments: mean value across the group.
	avgPipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"student_id": bson.M{"$in": ids}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$value"},
		}}},
	}
	cur, err = db.Collection("assessments").Aggregate(ctx, avgPipe)
	if err != nil {
		return Stats{}, err
	}
	var avgRows []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &avgRows); err != nil {
		return Stats{}, err
	}
	if len(avgRows) > 0 {
		stats.AvgAssessment = math.Round(avgRows[0].Avg*10) / 10
	}

	return stats, nil
}
