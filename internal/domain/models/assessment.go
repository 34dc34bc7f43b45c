// internal/domain/models/assessment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assessment metric categories. The set is closed: metrics are numbered 1..5.
const (
	MetricMin = 1
	MetricMax = 5
)

// Assessment is a dated numeric score for a student under one of the five
// fixed metric categories. Assessments are deleted with their student.
type Assessment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Metric    int                `bson:"metric" json:"metric"` // 1..5
	Value     float64            `bson:"value" json:"value"`
	Date      time.Time          `bson:"date" json:"date"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ValidMetric reports whether m is one of the five assessment categories.
func ValidMetric(m int) bool {
	return m >= MetricMin && m <= MetricMax
}
