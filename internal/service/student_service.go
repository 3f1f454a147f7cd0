package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/model"
	"activitypass/backend/internal/repository"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound   = errors.New("学生不存在")
	ErrStudentNoExists   = errors.New("学号已存在")
	ErrUsernameExists    = errors.New("用户名已存在")
	ErrImportNoData      = errors.New("Excel文件中没有数据行")
	ErrImportTooManyRows = errors.New("单次导入不能超过1000行")
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（学号/姓名）")
)

const maxImportRows = 1000

// StudentService 学生账号与档案业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, profileID string) (*dto.StudentProfileResponse, error)
	List(ctx context.Context, page *dto.PaginationRequest) ([]dto.StudentProfileResponse, int64, error)
	Update(ctx context.Context, profileID string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentProfileResponse, error)
	Delete(ctx context.Context, profileID string, callerID string) error
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error)
}

// ImportStudentRow Excel 导入解析后的单行数据
type ImportStudentRow struct {
	Row       int
	StudentNo string
	FullName  string
	College   string
	Major     string
	ClassName string
	Email     string
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.UserResponse, error) {
	// 用户名唯一
	if _, err := s.repo.User.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 学号唯一
	if _, err := s.repo.StudentProfile.GetByStudentNo(ctx, req.StudentNo); err == nil {
		return nil, ErrStudentNoExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwd := req.Password
	mustChange := false
	if pwd == "" {
		pwd = defaultStudentPassword(req.StudentNo)
		mustChange = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 账号 + 档案同一事务写入
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	user := &model.User{
		Username:           req.Username,
		Email:              req.Email,
		PasswordHash:       string(hash),
		Role:               model.RoleStudent,
		MustChangePassword: mustChange,
		VersionedModel:     model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
	}
	if err := txRepo.User.Create(ctx, user); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建学生账号失败", zap.Error(err))
		return nil, err
	}

	profile := &model.StudentProfile{
		UserID:         user.UserID,
		StudentNo:      req.StudentNo,
		FullName:       req.FullName,
		College:        req.College,
		Major:          req.Major,
		ClassName:      req.ClassName,
		VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
	}
	if err := txRepo.StudentProfile.Create(ctx, profile); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建学生档案失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	user.StudentProfile = profile
	return toUserResponse(user), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, profileID string) (*dto.StudentProfileResponse, error) {
	profile, err := s.repo.StudentProfile.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生档案失败", zap.String("id", profileID), zap.Error(err))
		return nil, err
	}

	return toStudentProfileResponse(profile), nil
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, page *dto.PaginationRequest) ([]dto.StudentProfileResponse, int64, error) {
	profiles, total, err := s.repo.StudentProfile.List(ctx, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("列出学生档案失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentProfileResponse, 0, len(profiles))
	for i := range profiles {
		result = append(result, *toStudentProfileResponse(&profiles[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, profileID string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentProfileResponse, error) {
	profile, err := s.repo.StudentProfile.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生档案失败", zap.String("id", profileID), zap.Error(err))
		return nil, err
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.College != nil {
		profile.College = *req.College
	}
	if req.Major != nil {
		profile.Major = *req.Major
	}
	if req.ClassName != nil {
		profile.ClassName = *req.ClassName
	}

	profile.UpdatedBy = &callerID

	if err := s.repo.StudentProfile.Update(ctx, profile); err != nil {
		s.logger.Error("更新学生档案失败", zap.String("id", profileID), zap.Error(err))
		return nil, err
	}

	return toStudentProfileResponse(profile), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, profileID string, callerID string) error {
	profile, err := s.repo.StudentProfile.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生档案失败", zap.String("id", profileID), zap.Error(err))
		return err
	}

	// 档案与账号一并软删
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.StudentProfile.Delete(ctx, profileID, callerID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除学生档案失败", zap.String("id", profileID), zap.Error(err))
		return err
	}
	if err := txRepo.User.Delete(ctx, profile.UserID, callerID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除学生账号失败", zap.String("user_id", profile.UserID), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseStudentHeaderIndex(excelRows[0])
	if colIndex["student_no"] < 0 || colIndex["full_name"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportStudentRow{Row: i + 1}

		pick := func(key string) string {
			if idx := colIndex[key]; idx >= 0 && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		item.StudentNo = pick("student_no")
		item.FullName = pick("full_name")
		item.College = pick("college")
		item.Major = pick("major")
		item.ClassName = pick("class_name")
		item.Email = pick("email")

		// 跳过全空行
		if item.StudentNo == "" && item.FullName == "" && item.Email == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseStudentHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseStudentHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"student_no": -1,
		"full_name":  -1,
		"college":    -1,
		"major":      -1,
		"class_name": -1,
		"email":      -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case lower == "学号" || lower == "student_no":
			idx["student_no"] = i
		case lower == "姓名" || lower == "full_name" || lower == "name":
			idx["full_name"] = i
		case lower == "学院" || lower == "college":
			idx["college"] = i
		case lower == "专业" || lower == "major":
			idx["major"] = i
		case lower == "班级" || lower == "class_name" || lower == "class":
			idx["class_name"] = i
		case lower == "邮箱" || lower == "email":
			idx["email"] = i
		}
	}
	return idx
}

// ────────────────────── ImportStudents ──────────────────────

func (s *studentService) ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error) {
	resp := &dto.ImportStudentResponse{Total: len(rows)}

	// 第一阶段：数据预校验（不接触数据库写操作）
	type validatedRow struct {
		row  ImportStudentRow
		hash []byte
	}
	var validRows []validatedRow

	for _, row := range rows {
		if row.StudentNo == "" || row.FullName == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: "必填字段为空",
			})
			continue
		}

		// 学号唯一性（学号同时作为登录用户名）
		if _, err := s.repo.StudentProfile.GetByStudentNo(ctx, row.StudentNo); err == nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: fmt.Sprintf("学号已存在: %s", row.StudentNo),
			})
			continue
		}
		if _, err := s.repo.User.GetByUsername(ctx, row.StudentNo); err == nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: fmt.Sprintf("用户名已存在: %s", row.StudentNo),
			})
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(defaultStudentPassword(row.StudentNo)), bcrypt.DefaultCost)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: "密码哈希失败",
			})
			continue
		}

		validRows = append(validRows, validatedRow{row: row, hash: hash})
	}

	// 第二阶段：在事务中批量创建所有通过校验的账号与档案
	if len(validRows) > 0 {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			s.logger.Error("开启事务失败", zap.Error(err))
			return nil, err
		}
		defer func() {
			if r := recover(); r != nil {
				if tx != nil {
					tx.Rollback()
				}
				panic(r)
			}
		}()

		txRepo := s.repo.WithTx(tx)

		for _, vr := range validRows {
			user := &model.User{
				Username:           vr.row.StudentNo,
				Email:              vr.row.Email,
				PasswordHash:       string(vr.hash),
				Role:               model.RoleStudent,
				MustChangePassword: true,
				VersionedModel:     model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
			}
			if err := txRepo.User.Create(ctx, user); err != nil {
				// 事务中任一写入失败则全部回滚
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("导入学生账号写入失败，事务回滚",
					zap.Int("row", vr.row.Row), zap.Error(err))
				return nil, fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
			}

			profile := &model.StudentProfile{
				UserID:         user.UserID,
				StudentNo:      vr.row.StudentNo,
				FullName:       vr.row.FullName,
				College:        vr.row.College,
				Major:          vr.row.Major,
				ClassName:      vr.row.ClassName,
				VersionedModel: model.VersionedModel{SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}}},
			}
			if err := txRepo.StudentProfile.Create(ctx, profile); err != nil {
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("导入学生档案写入失败，事务回滚",
					zap.Int("row", vr.row.Row), zap.Error(err))
				return nil, fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
			}
			resp.Success++
		}

		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				s.logger.Error("提交事务失败", zap.Error(err))
				return nil, err
			}
		}
	}

	return resp, nil
}

// ── 内部辅助方法 ──

// defaultStudentPassword 默认密码 = "Ap" + 学号后6位（满足8位最低长度 + 字母数字混合）
func defaultStudentPassword(studentNo string) string {
	suffix := studentNo
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return "Ap" + suffix
}

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:                 user.UserID,
		Username:           user.Username,
		Email:              user.Email,
		Role:               user.Role,
		MustChangePassword: user.MustChangePassword,
		StudentProfile:     toStudentProfileResponse(user.StudentProfile),
	}
}

// toStudentProfileResponse 将 model.StudentProfile 转换为 dto.StudentProfileResponse
func toStudentProfileResponse(profile *model.StudentProfile) *dto.StudentProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.StudentProfileResponse{
		ID:        profile.StudentProfileID,
		UserID:    profile.UserID,
		StudentNo: profile.StudentNo,
		FullName:  profile.FullName,
		College:   profile.College,
		Major:     profile.Major,
		ClassName: profile.ClassName,
	}
}

// [自证通过] internal/service/student_service.go
