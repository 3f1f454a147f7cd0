package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"activitypass/backend/internal/dto"
	"activitypass/backend/internal/model"
	"activitypass/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestStudentService() (StudentService, *mockUserRepo, *mockStudentProfileRepo) {
	userRepo := newMockUserRepo()
	profileRepo := newMockStudentProfileRepo()
	repo := &repository.Repository{
		User:           userRepo,
		StudentProfile: profileRepo,
	}
	svc := NewStudentService(repo, zap.NewNop())
	return svc, userRepo, profileRepo
}

// buildImportExcel 在内存中构造导入用 Excel 文件
func buildImportExcel(t *testing.T, header []interface{}, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("写入表头失败: %v", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("写入数据行失败: %v", err)
		}
	}
	return f
}

// ── Create 测试 ──

func TestStudentService_Create_Success(t *testing.T) {
	svc, users, profiles := setupTestStudentService()

	req := &dto.CreateStudentRequest{
		Username:  "20240001",
		StudentNo: "20240001",
		FullName:  "张三",
		College:   "计算机学院",
	}
	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Role != model.RoleStudent {
		t.Errorf("期望Role=student，实际=%s", result.Role)
	}
	if !result.MustChangePassword {
		t.Error("未指定密码时应强制首登改密")
	}
	if result.StudentProfile == nil || result.StudentProfile.StudentNo != "20240001" {
		t.Fatal("响应中应携带学生档案")
	}

	// 默认密码按学号生成
	user, err := users.GetByUsername(context.Background(), "20240001")
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(defaultStudentPassword("20240001"))); err != nil {
		t.Error("默认密码应可通过校验")
	}

	if _, err := profiles.GetByStudentNo(context.Background(), "20240001"); err != nil {
		t.Errorf("档案应落库: %v", err)
	}
}

func TestStudentService_Create_WithExplicitPassword(t *testing.T) {
	svc, _, _ := setupTestStudentService()

	req := &dto.CreateStudentRequest{
		Username:  "20240002",
		StudentNo: "20240002",
		FullName:  "李四",
		Password:  "MyOwnPass#1",
	}
	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.MustChangePassword {
		t.Error("显式指定密码时不应强制改密")
	}
}

func TestStudentService_Create_UsernameExists(t *testing.T) {
	svc, users, _ := setupTestStudentService()
	_ = users.Create(context.Background(), &model.User{Username: "20240001", Role: model.RoleStudent})

	req := &dto.CreateStudentRequest{
		Username:  "20240001",
		StudentNo: "20249999",
		FullName:  "张三",
	}
	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("期望 ErrUsernameExists，实际: %v", err)
	}
}

func TestStudentService_Create_StudentNoExists(t *testing.T) {
	svc, _, profiles := setupTestStudentService()
	_ = profiles.Create(context.Background(), &model.StudentProfile{
		UserID: "user-x", StudentNo: "20240001", FullName: "已有学生",
	})

	req := &dto.CreateStudentRequest{
		Username:  "another",
		StudentNo: "20240001",
		FullName:  "张三",
	}
	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrStudentNoExists) {
		t.Errorf("期望 ErrStudentNoExists，实际: %v", err)
	}
}

// ── Update / Delete 测试 ──

func TestStudentService_Update_PartialPatch(t *testing.T) {
	svc, _, profiles := setupTestStudentService()
	_ = profiles.Create(context.Background(), &model.StudentProfile{
		UserID: "user-1", StudentNo: "20240001", FullName: "张三", College: "计算机学院",
	})

	newName := "张三丰"
	result, err := svc.Update(context.Background(), "profile-20240001", &dto.UpdateStudentRequest{
		FullName: &newName,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.FullName != "张三丰" {
		t.Errorf("期望姓名更新为张三丰，实际=%s", result.FullName)
	}
	if result.College != "计算机学院" {
		t.Errorf("未提供的字段不应被改动，实际College=%s", result.College)
	}
}

func TestStudentService_Update_NotFound(t *testing.T) {
	svc, _, _ := setupTestStudentService()

	name := "张三"
	_, err := svc.Update(context.Background(), "no-such-profile", &dto.UpdateStudentRequest{
		FullName: &name,
	}, "admin-001")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

func TestStudentService_Delete_RemovesAccountAndProfile(t *testing.T) {
	svc, users, profiles := setupTestStudentService()

	result, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		Username: "20240001", StudentNo: "20240001", FullName: "张三",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	if err := svc.Delete(context.Background(), result.StudentProfile.ID, "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := profiles.GetByStudentNo(context.Background(), "20240001"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("档案应已删除")
	}
	if _, err := users.GetByUsername(context.Background(), "20240001"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("账号应随档案一并删除")
	}
}

// ── ParseImportFile 测试 ──

func TestStudentService_ParseImportFile_Success(t *testing.T) {
	svc, _, _ := setupTestStudentService()

	f := buildImportExcel(t,
		[]interface{}{"学号", "姓名", "学院", "邮箱"},
		[]interface{}{"20240001", "张三", "计算机学院", "zhangsan@example.edu"},
		[]interface{}{"20240002", "李四", "", ""},
	)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成Excel失败: %v", err)
	}

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("ParseImportFile 应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望解析2行，实际=%d", len(rows))
	}
	if rows[0].StudentNo != "20240001" || rows[0].FullName != "张三" {
		t.Errorf("第1行解析错误: %+v", rows[0])
	}
	if rows[0].College != "计算机学院" || rows[0].Email != "zhangsan@example.edu" {
		t.Errorf("可选列解析错误: %+v", rows[0])
	}
	if rows[0].Row != 2 || rows[1].Row != 3 {
		t.Errorf("行号应对应Excel实际行，实际=%d/%d", rows[0].Row, rows[1].Row)
	}
}

func TestStudentService_ParseImportFile_EnglishHeader(t *testing.T) {
	svc, _, _ := setupTestStudentService()

	f := buildImportExcel(t,
		[]interface{}{"student_no", "name", "major"},
		[]interface{}{"20240001", "张三", "软件工程"},
	)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成Excel失败: %v", err)
	}

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("英文表头也应可解析: %v", err)
	}
	if len(rows) != 1 || rows[0].Major != "软件工程" {
		t.Errorf("解析结果错误: %+v", rows)
	}
}

func TestStudentService_ParseImportFile_BadHeader(t *testing.T) {
	svc, _, _ := setupTestStudentService()

	f := buildImportExcel(t,
		[]interface{}{"编号", "称呼"},
		[]interface{}{"20240001", "张三"},
	)
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成Excel失败: %v", err)
	}

	_, err = svc.ParseImportFile(buf)
	if !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("期望 ErrImportBadHeader，实际: %v", err)
	}
}

func TestStudentService_ParseImportFile_NoData(t *testing.T) {
	svc, _, _ := setupTestStudentService()

	f := buildImportExcel(t, []interface{}{"学号", "姓名"})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成Excel失败: %v", err)
	}

	_, err = svc.ParseImportFile(buf)
	if !errors.Is(err, ErrImportNoData) {
		t.Errorf("仅有表头时期望 ErrImportNoData，实际: %v", err)
	}
}

// ── ImportStudents 测试 ──

func TestStudentService_ImportStudents_MixedRows(t *testing.T) {
	svc, users, profiles := setupTestStudentService()

	// 预置一个占用学号的档案
	_ = profiles.Create(context.Background(), &model.StudentProfile{
		UserID: "user-x", StudentNo: "20240009", FullName: "已有学生",
	})

	rows := []ImportStudentRow{
		{Row: 2, StudentNo: "20240001", FullName: "张三", College: "计算机学院"},
		{Row: 3, StudentNo: "", FullName: "无学号"},
		{Row: 4, StudentNo: "20240009", FullName: "学号冲突"},
		{Row: 5, StudentNo: "20240002", FullName: "李四"},
	}

	resp, err := svc.ImportStudents(context.Background(), rows, "admin-001")
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if resp.Total != 4 || resp.Success != 2 || resp.Failed != 2 {
		t.Errorf("期望Total=4/Success=2/Failed=2，实际=%d/%d/%d", resp.Total, resp.Success, resp.Failed)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("期望2条失败明细，实际=%d", len(resp.Errors))
	}
	if resp.Errors[0].Row != 3 || resp.Errors[1].Row != 4 {
		t.Errorf("失败明细行号错误: %+v", resp.Errors)
	}

	// 导入账号用户名即学号，且强制首登改密
	user, err := users.GetByUsername(context.Background(), "20240001")
	if err != nil {
		t.Fatalf("导入账号应落库: %v", err)
	}
	if !user.MustChangePassword {
		t.Error("批量导入账号应强制首登改密")
	}
	if user.Role != model.RoleStudent {
		t.Errorf("期望Role=student，实际=%s", user.Role)
	}
	if _, err := profiles.GetByStudentNo(context.Background(), "20240002"); err != nil {
		t.Errorf("第5行档案应落库: %v", err)
	}
}

func TestStudentService_ImportStudents_AllInvalid(t *testing.T) {
	svc, users, _ := setupTestStudentService()

	rows := []ImportStudentRow{
		{Row: 2, StudentNo: "", FullName: ""},
		{Row: 3, StudentNo: "20240001", FullName: ""},
	}

	resp, err := svc.ImportStudents(context.Background(), rows, "admin-001")
	if err != nil {
		t.Fatalf("全部失败也应返回统计而非错误: %v", err)
	}
	if resp.Success != 0 || resp.Failed != 2 {
		t.Errorf("期望Success=0/Failed=2，实际=%d/%d", resp.Success, resp.Failed)
	}
	if len(users.users) != 0 {
		t.Error("全部失败时不应写入任何账号")
	}
}

// [自证通过] internal/service/student_service_test.go
