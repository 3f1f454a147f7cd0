package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"activitypass/backend/internal/model"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var filtered []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		filtered = append(filtered, *u)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock StudentProfileRepository ──

type mockStudentProfileRepo struct {
	profiles map[string]*model.StudentProfile
}

func newMockStudentProfileRepo() *mockStudentProfileRepo {
	return &mockStudentProfileRepo{profiles: make(map[string]*model.StudentProfile)}
}

func (m *mockStudentProfileRepo) Create(_ context.Context, profile *model.StudentProfile) error {
	if profile.StudentProfileID == "" {
		profile.StudentProfileID = "profile-" + profile.StudentNo
	}
	m.profiles[profile.StudentProfileID] = profile
	return nil
}

func (m *mockStudentProfileRepo) GetByID(_ context.Context, id string) (*model.StudentProfile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) GetByUserID(_ context.Context, userID string) (*model.StudentProfile, error) {
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) GetByStudentNo(_ context.Context, studentNo string) (*model.StudentProfile, error) {
	for _, p := range m.profiles {
		if p.StudentNo == studentNo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) List(_ context.Context, offset, limit int) ([]model.StudentProfile, int64, error) {
	var all []model.StudentProfile
	for _, p := range m.profiles {
		all = append(all, *p)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudentProfileRepo) Update(_ context.Context, profile *model.StudentProfile) error {
	m.profiles[profile.StudentProfileID] = profile
	return nil
}

func (m *mockStudentProfileRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.profiles, id)
	return nil
}

// ── Mock TermRepository ──

type mockTermRepo struct {
	terms map[string]*model.Term
}

func newMockTermRepo() *mockTermRepo {
	return &mockTermRepo{terms: make(map[string]*model.Term)}
}

func (m *mockTermRepo) Create(_ context.Context, term *model.Term) error {
	if term.TermID == "" {
		term.TermID = fmt.Sprintf("term-%s-%d", term.AcademicYear, term.Semester)
	}
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) GetByID(_ context.Context, id string) (*model.Term, error) {
	if t, ok := m.terms[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetActive(_ context.Context) (*model.Term, error) {
	for _, t := range m.terms {
		if t.IsActive {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) GetByYearSemester(_ context.Context, academicYear string, semester int) (*model.Term, error) {
	for _, t := range m.terms {
		if t.AcademicYear == academicYear && t.Semester == semester {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermRepo) List(_ context.Context) ([]model.Term, error) {
	var result []model.Term
	for _, t := range m.terms {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTermRepo) Update(_ context.Context, term *model.Term) error {
	m.terms[term.TermID] = term
	return nil
}

func (m *mockTermRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.terms, id)
	return nil
}

func (m *mockTermRepo) ClearActive(_ context.Context) error {
	for _, t := range m.terms {
		t.IsActive = false
	}
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses   map[string]*model.Course
	idCounter int
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.idCounter++
		course.CourseID = fmt.Sprintf("course-%d", m.idCounter)
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) BatchCreate(_ context.Context, courses []model.Course) error {
	for i := range courses {
		if courses[i].CourseID == "" {
			m.idCounter++
			courses[i].CourseID = fmt.Sprintf("course-%d", m.idCounter)
		}
		cp := courses[i]
		m.courses[cp.CourseID] = &cp
	}
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) ListByTerm(_ context.Context, termID string, offset, limit int) ([]model.Course, int64, error) {
	var filtered []model.Course
	for _, c := range m.courses {
		if c.TermID == termID {
			filtered = append(filtered, *c)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

// ── Mock CourseEnrollmentRepository ──

type mockEnrollmentRepo struct {
	enrollments []model.CourseEnrollment
	courses     *mockCourseRepo // 解析课程详情用
	idCounter   int
}

func newMockEnrollmentRepo(courses *mockCourseRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{courses: courses}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.CourseEnrollment) error {
	if enrollment.EnrollmentID == "" {
		m.idCounter++
		enrollment.EnrollmentID = fmt.Sprintf("enroll-%d", m.idCounter)
	}
	m.enrollments = append(m.enrollments, *enrollment)
	return nil
}

func (m *mockEnrollmentRepo) GetByCourseAndStudent(_ context.Context, courseID, studentID string) (*model.CourseEnrollment, error) {
	for i, e := range m.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			return &m.enrollments[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.CourseEnrollment, error) {
	var result []model.CourseEnrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListCoursesByStudentAndTerm(_ context.Context, studentID, termID string) ([]model.Course, error) {
	var result []model.Course
	for _, e := range m.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if c, ok := m.courses.courses[e.CourseID]; ok && c.TermID == termID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, enrollmentID string, _ string) error {
	for i, e := range m.enrollments {
		if e.EnrollmentID == enrollmentID {
			m.enrollments = append(m.enrollments[:i], m.enrollments[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities map[string]*model.Activity
	idCounter  int
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: make(map[string]*model.Activity)}
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.Activity) error {
	if activity.ActivityID == "" {
		m.idCounter++
		activity.ActivityID = fmt.Sprintf("act-%d", m.idCounter)
	}
	activity.CreatedAt = time.Now()
	m.activities[activity.ActivityID] = activity
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id string) (*model.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockActivityRepo) List(_ context.Context, termID, status string, offset, limit int) ([]model.Activity, int64, error) {
	var filtered []model.Activity
	for _, a := range m.activities {
		if termID != "" && a.TermID != termID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		filtered = append(filtered, *a)
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockActivityRepo) Update(_ context.Context, activity *model.Activity) error {
	m.activities[activity.ActivityID] = activity
	return nil
}

func (m *mockActivityRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.activities, id)
	return nil
}

// ── Mock ParticipationRepository ──

type mockParticipationRepo struct {
	participations map[string]*model.Participation
	idCounter      int
}

func newMockParticipationRepo() *mockParticipationRepo {
	return &mockParticipationRepo{participations: make(map[string]*model.Participation)}
}

func (m *mockParticipationRepo) Create(_ context.Context, participation *model.Participation) error {
	if participation.ParticipationID == "" {
		m.idCounter++
		participation.ParticipationID = fmt.Sprintf("part-%d", m.idCounter)
	}
	participation.CreatedAt = time.Now()
	m.participations[participation.ParticipationID] = participation
	return nil
}

func (m *mockParticipationRepo) GetByID(_ context.Context, id string) (*model.Participation, error) {
	if p, ok := m.participations[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipationRepo) GetByActivityAndStudent(_ context.Context, activityID, studentID string) (*model.Participation, error) {
	for _, p := range m.participations {
		if p.ActivityID == activityID && p.StudentID == studentID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParticipationRepo) ListByActivity(_ context.Context, activityID string, offset, limit int) ([]model.Participation, int64, error) {
	var filtered []model.Participation
	for _, p := range m.participations {
		if p.ActivityID == activityID {
			filtered = append(filtered, *p)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockParticipationRepo) ListByStudent(_ context.Context, studentID string) ([]model.Participation, error) {
	var result []model.Participation
	for _, p := range m.participations {
		if p.StudentID == studentID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockParticipationRepo) CountApprovedByStudent(_ context.Context, studentID string) (int64, error) {
	var count int64
	for _, p := range m.participations {
		if p.StudentID == studentID && p.Status == model.ParticipationStatusApproved {
			count++
		}
	}
	return count, nil
}

func (m *mockParticipationRepo) CountActiveByActivity(_ context.Context, activityID string) (int64, error) {
	var count int64
	for _, p := range m.participations {
		if p.ActivityID != activityID {
			continue
		}
		if p.Status == model.ParticipationStatusPending || p.Status == model.ParticipationStatusApproved {
			count++
		}
	}
	return count, nil
}

func (m *mockParticipationRepo) Update(_ context.Context, participation *model.Participation) error {
	m.participations[participation.ParticipationID] = participation
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
