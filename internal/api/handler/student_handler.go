package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/service"
	"activitypass/backend/pkg/response"
)

// StudentHandler 学生档案模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// CreateStudent 创建学生账号与档案（管理员）
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	user, err := h.studentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			response.Conflict(c, response.CodeUsernameExists, "用户名已存在")
		case errors.Is(err, service.ErrStudentNoExists):
			response.Conflict(c, response.CodeStudentNoExists, "学号已存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, user)
}

// GetStudent 获取学生档案
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	profile, err := h.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, response.CodeStudentNotFound, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, profile)
}

// ListStudents 学生档案列表（管理员）
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	students, total, err := h.studentSvc.List(c.Request.Context(), &page)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, students, total, page.GetPage(), page.GetPageSize())
}

// UpdateStudent 更新学生档案（管理员）
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	profile, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, response.CodeStudentNotFound, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, profile)
}

// DeleteStudent 删除学生账号与档案（管理员）
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.NotFound(c, response.CodeStudentNotFound, "学生不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// ImportStudents Excel 批量导入学生（管理员）
// POST /api/v1/students/import （multipart 字段 file）
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "缺少上传文件")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, response.CodeImportFileRead, "文件读取失败")
		return
	}
	defer f.Close()

	rows, err := h.studentSvc.ParseImportFile(f)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	result, err := h.studentSvc.ImportStudents(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *StudentHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, response.CodeImportNoData, "Excel文件中没有数据行")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, response.CodeImportTooManyRows, "单次导入不能超过1000行")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, response.CodeImportBadHeader, "Excel表头缺少必要列（学号/姓名）")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/student_handler.go
