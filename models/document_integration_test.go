package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
)

// setupIntegrationDB boots a throwaway MySQL container, connects, migrates
// and returns an admin context plus a project to attach documents to.
func setupIntegrationDB(t *testing.T) (context.Context, *models.Project) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "construction_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()

	admin, err := models.CreateUser(ctx, &models.NewUser{
		Name:     "Test Admin",
		Email:    fmt.Sprintf("admin-%d@test.local", time.Now().UnixNano()),
		Password: "123456",
		Role:     models.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	ctx = utils.SetUserIdInContext(ctx, admin.ID)
	ctx = utils.SetUserRoleInContext(ctx, string(admin.Role))
	ctx = utils.SetUserNameInContext(ctx, admin.Name)

	project, err := models.CreateProject(ctx, &models.NewProject{
		ProjectCode: fmt.Sprintf("PRJ-TEST-%d", time.Now().UnixNano()),
		Name:        "Numbering Test Project",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return ctx, project
}

func newInvoiceInput(projectId int) *models.NewDocument {
	wht := decimal.NewFromFloat(0.03)
	return &models.NewDocument{
		DocType:   models.DocTypeInvoice,
		ProjectId: projectId,
		WhtRate:   &wht,
		LineItems: []models.NewLineItem{
			{Description: "progress billing", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2500000)},
		},
	}
}

func TestDocumentNumbering_SequentialAndPerTypeCounters(t *testing.T) {
	ctx, project := setupIntegrationDB(t)
	year := time.Now().Year()

	first, err := models.CreateDocument(ctx, newInvoiceInput(project.ID))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	want := fmt.Sprintf("INV-%d-0001", year)
	if first.DocNumber != want {
		t.Fatalf("doc number = %q, want %q", first.DocNumber, want)
	}
	if !first.NetTotal.Equal(decimal.NewFromInt(2600000)) {
		t.Fatalf("net total = %s, want 2600000", first.NetTotal)
	}

	second, err := models.CreateDocument(ctx, newInvoiceInput(project.ID))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if second.SequenceNo != first.SequenceNo+1 {
		t.Fatalf("sequence = %d, want %d", second.SequenceNo, first.SequenceNo+1)
	}

	// A different doc type draws from its own counter.
	quotation, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType:   models.DocTypeQuotation,
		ProjectId: project.ID,
		LineItems: []models.NewLineItem{
			{Description: "structural works", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100000)},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if quotation.SequenceNo != 1 {
		t.Fatalf("quotation sequence = %d, want 1 (independent counter)", quotation.SequenceNo)
	}
}

// Every (prefix, year) counter starts at 1, no matter how many counter rows
// already exist. The first number for a later key must not drift to the
// counter table's row id.
func TestDocumentNumbering_FirstAllocationIsOne(t *testing.T) {
	ctx, _ := setupIntegrationDB(t)
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		t.Fatalf("begin: %v", tx.Error)
	}
	defer tx.Rollback()

	docTypes := []models.DocType{
		models.DocTypeInvoice, models.DocTypeQuotation,
		models.DocTypeVendorPayment, models.DocTypeAdvance,
	}
	for _, docType := range docTypes {
		seqNo, docNumber, err := models.NextDocumentNumber(tx, docType, 2025)
		if err != nil {
			t.Fatalf("NextDocumentNumber %s: %v", docType, err)
		}
		if seqNo != 1 {
			t.Fatalf("%s first seq = %d, want 1", docType, seqNo)
		}
		want := fmt.Sprintf("%s-2025-0001", docType.Prefix())
		if docNumber != want {
			t.Fatalf("%s first doc number = %q, want %q", docType, docNumber, want)
		}
	}
}

// Two counters for the same prefix in different years never interfere.
func TestDocumentNumbering_YearsAreIndependent(t *testing.T) {
	ctx, _ := setupIntegrationDB(t)
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		t.Fatalf("begin: %v", tx.Error)
	}
	defer tx.Rollback()

	for i := 1; i <= 3; i++ {
		seqNo, _, err := models.NextDocumentNumber(tx, models.DocTypeInvoice, 2025)
		if err != nil {
			t.Fatalf("NextDocumentNumber 2025: %v", err)
		}
		if seqNo != int64(i) {
			t.Fatalf("2025 seq = %d, want %d", seqNo, i)
		}
	}

	seqNo, docNumber, err := models.NextDocumentNumber(tx, models.DocTypeInvoice, 2026)
	if err != nil {
		t.Fatalf("NextDocumentNumber 2026: %v", err)
	}
	if seqNo != 1 {
		t.Fatalf("2026 seq = %d, want 1", seqNo)
	}
	if docNumber != "INV-2026-0001" {
		t.Fatalf("2026 doc number = %q, want INV-2026-0001", docNumber)
	}
}

// A rolled-back transaction must release its counter increment so the next
// allocation reuses the number. Numbers are only burned with a commit.
func TestDocumentNumbering_RollbackReleasesNumber(t *testing.T) {
	ctx, project := setupIntegrationDB(t)
	db := config.GetDB()

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		t.Fatalf("begin: %v", tx.Error)
	}
	seqNo, _, err := models.NextDocumentNumber(tx, models.DocTypeReceipt, time.Now().Year())
	if err != nil {
		t.Fatalf("NextDocumentNumber: %v", err)
	}
	if seqNo != 1 {
		t.Fatalf("seq = %d, want 1", seqNo)
	}
	tx.Rollback()

	document, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType:   models.DocTypeReceipt,
		ProjectId: project.ID,
		LineItems: []models.NewLineItem{
			{Description: "payment received", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if document.SequenceNo != 1 {
		t.Fatalf("sequence after rollback = %d, want 1 (number must not be burned)", document.SequenceNo)
	}
}

// Concurrent creates for the same (prefix, year) must yield strictly unique
// numbers even though each runs in its own transaction.
func TestDocumentNumbering_ConcurrentAllocationsAreUnique(t *testing.T) {
	ctx, project := setupIntegrationDB(t)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan int64, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			document, err := models.CreateDocument(ctx, newInvoiceInput(project.ID))
			if err != nil {
				errs <- err
				return
			}
			results <- document.SequenceNo
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent CreateDocument: %v", err)
	}

	seen := make(map[int64]bool)
	for seqNo := range results {
		if seen[seqNo] {
			t.Fatalf("duplicate sequence number %d", seqNo)
		}
		seen[seqNo] = true
	}
	if len(seen) != workers {
		t.Fatalf("got %d unique numbers, want %d", len(seen), workers)
	}
}

// Updating rates without a new line item set recomputes totals over the
// stored lines; the document number never changes.
func TestUpdateDocument_RecomputesAndKeepsNumber(t *testing.T) {
	ctx, project := setupIntegrationDB(t)

	document, err := models.CreateDocument(ctx, newInvoiceInput(project.ID))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	zero := decimal.Zero
	updated, err := models.UpdateDocument(ctx, document.ID, &models.UpdateDocumentInput{
		WhtRate: &zero,
	})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if updated.DocNumber != document.DocNumber {
		t.Fatalf("doc number changed: %q -> %q", document.DocNumber, updated.DocNumber)
	}
	// 2500000 + 175000 - 0
	if !updated.NetTotal.Equal(decimal.NewFromInt(2675000)) {
		t.Fatalf("net total = %s, want 2675000", updated.NetTotal)
	}
	if !updated.WhtAmount.IsZero() {
		t.Fatalf("wht amount = %s, want 0", updated.WhtAmount)
	}

	// Replacing the line item set replaces totals too.
	newItems := []models.NewLineItem{
		{Description: "revised billing", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(1000)},
	}
	updated, err = models.UpdateDocument(ctx, document.ID, &models.UpdateDocumentInput{
		LineItems: &newItems,
	})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if !updated.Subtotal.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("subtotal = %s, want 2000", updated.Subtotal)
	}
	if len(updated.LineItems) != 1 {
		t.Fatalf("line items = %d, want 1", len(updated.LineItems))
	}
	if updated.DocNumber != document.DocNumber {
		t.Fatalf("doc number changed on line replacement")
	}
}

// A single-document fetch carries the project and creator names alongside
// the document and its line items.
func TestGetDocument_IncludesProjectAndCreator(t *testing.T) {
	ctx, project := setupIntegrationDB(t)

	created, err := models.CreateDocument(ctx, newInvoiceInput(project.ID))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	row, err := models.GetDocument(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if row.DocNumber != created.DocNumber {
		t.Fatalf("doc number = %q, want %q", row.DocNumber, created.DocNumber)
	}
	if row.ProjectName != project.Name || row.ProjectCode != project.ProjectCode {
		t.Fatalf("project = %q/%q, want %q/%q", row.ProjectName, row.ProjectCode, project.Name, project.ProjectCode)
	}
	if row.CreatedByName != "Test Admin" {
		t.Fatalf("created by = %q, want Test Admin", row.CreatedByName)
	}
	if len(row.LineItems) != 1 {
		t.Fatalf("line items = %d, want 1", len(row.LineItems))
	}
}

// Non-admin callers only see documents of projects they are assigned to.
func TestListDocuments_ScopedToAssignedProjects(t *testing.T) {
	ctx, project := setupIntegrationDB(t)

	if _, err := models.CreateDocument(ctx, newInvoiceInput(project.ID)); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	viewer, err := models.CreateUser(ctx, &models.NewUser{
		Name:     "Test Viewer",
		Email:    fmt.Sprintf("viewer-%d@test.local", time.Now().UnixNano()),
		Password: "123456",
		Role:     models.UserRoleViewer,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	viewerCtx := utils.SetUserIdInContext(context.Background(), viewer.ID)
	viewerCtx = utils.SetUserRoleInContext(viewerCtx, string(viewer.Role))

	rows, _, err := models.ListDocuments(viewerCtx, models.DocumentFilter{})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("unassigned viewer sees %d documents, want 0", len(rows))
	}

	if err := models.AssignUserToProject(ctx, project.ID, viewer.ID); err != nil {
		t.Fatalf("AssignUserToProject: %v", err)
	}
	rows, pagination, err := models.ListDocuments(viewerCtx, models.DocumentFilter{})
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(rows) == 0 || pagination.Total == 0 {
		t.Fatalf("assigned viewer sees no documents")
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("construction-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=construction_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
