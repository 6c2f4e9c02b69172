// seed-demo loads a demo data set: three users, two projects with
// assignments and a spread of documents across every document type.
// Documents go through the regular create path so numbering and totals are
// produced by the same code the API uses.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
)

func must[T any](v T, err error) T {
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	return v
}

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func date(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

func dec(value float64) *decimal.Decimal {
	d := decimal.NewFromFloat(value)
	return &d
}

func seedDocument(ctx context.Context, input models.NewDocument, status models.DocumentStatus) {
	document := must(models.CreateDocument(ctx, &input))
	if status != models.DocumentStatusDraft {
		db := config.GetDB()
		check(db.WithContext(ctx).Model(document).Update("status", status).Error)
	}
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	admin := must(models.CreateUser(ctx, &models.NewUser{
		Name: "Admin User", Email: "admin@ncon2559.com", Password: "123456", Role: models.UserRoleAdmin,
	}))
	editor := must(models.CreateUser(ctx, &models.NewUser{
		Name: "Editor User", Email: "editor@ncon2559.com", Password: "123456", Role: models.UserRoleEditor,
	}))
	viewer := must(models.CreateUser(ctx, &models.NewUser{
		Name: "Viewer User", Email: "viewer@ncon2559.com", Password: "123456", Role: models.UserRoleViewer,
	}))
	fmt.Println("Created 3 users")

	// All remaining writes act as the admin.
	ctx = utils.SetUserIdInContext(ctx, admin.ID)
	ctx = utils.SetUserRoleInContext(ctx, string(admin.Role))
	ctx = utils.SetUserNameInContext(ctx, admin.Name)

	proj1 := must(models.CreateProject(ctx, &models.NewProject{
		ProjectCode:   "PRJ-2025-001",
		Name:          "บ้านพักอาศัย สุขุมวิท 55",
		Client:        "คุณสมชาย วงศ์ประเสริฐ",
		Location:      "สุขุมวิท 55 กรุงเทพฯ",
		StartDate:     date("2025-01-15"),
		EndDate:       date("2025-12-31"),
		Status:        models.ProjectStatusActive,
		ContractValue: dec(15000000),
	}))
	proj2 := must(models.CreateProject(ctx, &models.NewProject{
		ProjectCode:   "PRJ-2025-002",
		Name:          "ปรับปรุงสำนักงาน ABC Tower",
		Client:        "บริษัท ABC จำกัด",
		Location:      "สีลม กรุงเทพฯ",
		StartDate:     date("2025-03-01"),
		EndDate:       date("2025-09-30"),
		Status:        models.ProjectStatusActive,
		ContractValue: dec(8500000),
	}))
	fmt.Println("Created 2 projects")

	check(models.AssignUserToProject(ctx, proj1.ID, admin.ID))
	check(models.AssignUserToProject(ctx, proj2.ID, admin.ID))
	check(models.AssignUserToProject(ctx, proj1.ID, editor.ID))
	check(models.AssignUserToProject(ctx, proj1.ID, viewer.ID))
	check(models.AssignUserToProject(ctx, proj2.ID, viewer.ID))
	fmt.Println("Assigned users to projects")

	pastDue := time.Now().AddDate(0, 0, -30)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeQuotation, ProjectId: proj1.ID,
		DueDate: date("2025-02-28"), Notes: "ใบเสนอราคางานโครงสร้าง Phase 1",
		LineItems: []models.NewLineItem{
			{Description: "งานโครงสร้าง - เสาเข็ม", Quantity: decimal.NewFromInt(20), Unit: "ต้น", UnitPrice: decimal.NewFromInt(25000)},
			{Description: "งานโครงสร้าง - ฐานราก", Quantity: decimal.NewFromInt(1), Unit: "งาน", UnitPrice: decimal.NewFromInt(350000)},
			{Description: "งานโครงสร้าง - คาน/เสา ชั้น 1", Quantity: decimal.NewFromInt(1), Unit: "งาน", UnitPrice: decimal.NewFromInt(480000)},
		},
	}, models.DocumentStatusApproved)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeInvoice, ProjectId: proj1.ID, WhtRate: dec(0.03),
		DueDate: date("2025-02-28"), Notes: "ใบแจ้งหนี้งวดที่ 1",
		LineItems: []models.NewLineItem{
			{Description: "งวดที่ 1 - งานโครงสร้าง 30%", Quantity: decimal.NewFromInt(1), Unit: "งวด", UnitPrice: decimal.NewFromInt(2500000)},
		},
	}, models.DocumentStatusPaid)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeInvoice, ProjectId: proj1.ID, WhtRate: dec(0.03),
		DueDate: &pastDue, Notes: "ใบแจ้งหนี้งวดที่ 2 - ค้างชำระ",
		LineItems: []models.NewLineItem{
			{Description: "งวดที่ 2 - งานโครงสร้าง 60%", Quantity: decimal.NewFromInt(1), Unit: "งวด", UnitPrice: decimal.NewFromInt(2500000)},
		},
	}, models.DocumentStatusSent)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeInvoice, ProjectId: proj2.ID, WhtRate: dec(0.03),
		DueDate: &pastDue, Notes: "ใบแจ้งหนี้งวดที่ 1 - ค้างชำระ",
		LineItems: []models.NewLineItem{
			{Description: "งวดที่ 1 - งานรื้อถอนและเตรียมพื้นที่", Quantity: decimal.NewFromInt(1), Unit: "งวด", UnitPrice: decimal.NewFromInt(1200000)},
		},
	}, models.DocumentStatusSent)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeTaxInvoice, ProjectId: proj2.ID, WhtRate: dec(0.03),
		DueDate: date("2025-07-15"), Notes: "ใบกำกับภาษีงวดที่ 2",
		LineItems: []models.NewLineItem{
			{Description: "งวดที่ 2 - งานติดตั้งผนังกระจก", Quantity: decimal.NewFromInt(1), Unit: "งวด", UnitPrice: decimal.NewFromInt(2000000)},
		},
	}, models.DocumentStatusApproved)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeReceipt, ProjectId: proj1.ID, WhtRate: dec(0.03),
		Notes: "ใบเสร็จรับเงินงวดที่ 1",
		LineItems: []models.NewLineItem{
			{Description: "รับชำระงวดที่ 1", Quantity: decimal.NewFromInt(1), Unit: "งวด", UnitPrice: decimal.NewFromInt(2500000)},
		},
	}, models.DocumentStatusPaid)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypePurchaseOrder, ProjectId: proj1.ID,
		DueDate: date("2025-02-15"), VendorName: "บริษัท ปูนซีเมนต์ไทย จำกัด", VendorTaxId: "0105536024688",
		Notes: "สั่งซื้อวัสดุก่อสร้าง Lot 1",
		LineItems: []models.NewLineItem{
			{Description: "ปูนซีเมนต์ปอร์ตแลนด์", Quantity: decimal.NewFromInt(200), Unit: "ถุง", UnitPrice: decimal.NewFromInt(165)},
			{Description: "เหล็กเส้น DB16", Quantity: decimal.NewFromInt(500), Unit: "เส้น", UnitPrice: decimal.NewFromInt(280)},
			{Description: "ทราย", Quantity: decimal.NewFromInt(30), Unit: "คิว", UnitPrice: decimal.NewFromInt(850)},
		},
	}, models.DocumentStatusApproved)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypePurchaseOrder, ProjectId: proj2.ID,
		DueDate: date("2025-04-01"), VendorName: "บริษัท กระจกไทย จำกัด", VendorTaxId: "0105549012345",
		Notes: "สั่งซื้อกระจกและเฟรม",
		LineItems: []models.NewLineItem{
			{Description: "กระจกเทมเปอร์ 12mm", Quantity: decimal.NewFromInt(50), Unit: "แผ่น", UnitPrice: decimal.NewFromInt(12000)},
			{Description: "อลูมิเนียมเฟรม", Quantity: decimal.NewFromInt(100), Unit: "เมตร", UnitPrice: decimal.NewFromInt(3500)},
		},
	}, models.DocumentStatusApproved)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeVendorPayment, ProjectId: proj1.ID, WhtRate: dec(0.03),
		DueDate: date("2025-02-20"), VendorName: "หจก. รุ่งเรืองการช่าง", VendorTaxId: "3101400567890",
		Notes: "จ่ายค่าแรงงานเดือน มกราคม",
		LineItems: []models.NewLineItem{
			{Description: "ค่าแรงงานก่อสร้าง - ทีมโครงสร้าง (เดือน ม.ค.)", Quantity: decimal.NewFromInt(1), Unit: "เดือน", UnitPrice: decimal.NewFromInt(180000)},
		},
	}, models.DocumentStatusPaid)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeAdvance, ProjectId: proj1.ID, VatRate: dec(0),
		DueDate: date("2025-02-10"), Notes: "เบิกเงินทดรองจ่ายงานขนส่ง",
		LineItems: []models.NewLineItem{
			{Description: "เงินทดรองจ่าย - ค่าขนส่งวัสดุ", Quantity: decimal.NewFromInt(1), Unit: "ครั้ง", UnitPrice: decimal.NewFromInt(25000)},
			{Description: "เงินทดรองจ่าย - ค่าอุปกรณ์เล็กน้อย", Quantity: decimal.NewFromInt(1), Unit: "ครั้ง", UnitPrice: decimal.NewFromInt(15000)},
		},
	}, models.DocumentStatusApproved)

	seedDocument(ctx, models.NewDocument{
		DocType: models.DocTypeClearance, ProjectId: proj1.ID, VatRate: dec(0),
		DueDate: date("2025-03-01"), Notes: "หักล้างเงินทดรองจ่าย",
		LineItems: []models.NewLineItem{
			{Description: "หักล้างเงินทดรอง - ค่าขนส่งวัสดุจริง", Quantity: decimal.NewFromInt(1), Unit: "ครั้ง", UnitPrice: decimal.NewFromInt(22500)},
			{Description: "หักล้างเงินทดรอง - ค่าอุปกรณ์จริง", Quantity: decimal.NewFromInt(1), Unit: "ครั้ง", UnitPrice: decimal.NewFromInt(14200)},
		},
	}, models.DocumentStatusApproved)

	fmt.Println("Created demo documents")
	fmt.Println("")
	fmt.Println("Login credentials:")
	fmt.Println("  Admin:  admin@ncon2559.com  / 123456")
	fmt.Println("  Editor: editor@ncon2559.com / 123456")
	fmt.Println("  Viewer: viewer@ncon2559.com / 123456")
}
