// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
)

// Attendance is a per-day presence status for a student. At most one record
// exists per (student, date) pair; Date is truncated to UTC midnight so the
// uniqueness constraint is a calendar-day constraint. Attendance records are
// deleted with their student.
type Attendance struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Date      time.Time          `bson:"date" json:"date"`
	Status    string             `bson:"status" json:"status"` // present | absent | late
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ValidAttendanceStatus reports whether s is one of the allowed statuses.
func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}
