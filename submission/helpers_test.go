package submission_test

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	qt "github.com/frankban/quicktest"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm/logger"

	"regportal-go/database"
	"regportal-go/ingest"
	"regportal-go/repository"
	"regportal-go/schema"
	"regportal-go/storage"
	"regportal-go/submission"
)

type env struct {
	service   *submission.Service
	repo      *repository.GormRepository
	uploads   string
	published *recordingPublisher
}

func newEnv(c *qt.C) *env {
	return newEnvWith(c, func(r submission.Repository) submission.Repository { return r })
}

// newEnvWith lets a test wrap the real repository.
func newEnvWith(c *qt.C, wrap func(submission.Repository) submission.Repository) *env {
	dir := c.TempDir()
	db, err := database.Initialize("sqlite", filepath.Join(dir, "test.db"), logger.Silent)
	c.Assert(err, qt.IsNil)
	sqlDB, err := db.DB()
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { sqlDB.Close() })

	uploads := filepath.Join(dir, "uploads")
	store, err := storage.NewLocal(uploads, 10<<20)
	c.Assert(err, qt.IsNil)

	repo := repository.New(db)
	pub := &recordingPublisher{}
	svc := submission.NewService(wrap(repo), store, ingest.NewValidator(ingest.DefaultLimits()), pub, nil)
	return &env{service: svc, repo: repo, uploads: uploads, published: pub}
}

// storedFiles counts the blobs under the upload root.
func (e *env) storedFiles(c *qt.C) int {
	n := 0
	err := filepath.WalkDir(e.uploads, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	c.Assert(err, qt.IsNil)
	return n
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []submission.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e submission.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func workbook(c *qt.C, rows ...[]any) []byte {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		if row == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		c.Assert(err, qt.IsNil)
		c.Assert(f.SetSheetRow("Sheet1", cell, &row), qt.IsNil)
	}

	var buf bytes.Buffer
	c.Assert(f.Write(&buf), qt.IsNil)
	return buf.Bytes()
}

func columns(rt schema.ReturnType, drop ...string) []any {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	var out []any
	for _, col := range schema.RequiredColumns(rt) {
		if !skip[col] {
			out = append(out, col)
		}
	}
	return out
}

func balanceSheetFile(c *qt.C) []byte {
	return workbook(c,
		columns(schema.BalanceSheet),
		[]any{"A100", "Cash", 1000, 900, 100, ""},
		[]any{"A200", "Loans", 5000, 4500, 500, "growth"},
	)
}

// brokenMonthlyFile lacks two columns, has one blank row and one negative
// balance.
func brokenMonthlyFile(c *qt.C) []byte {
	return workbook(c,
		columns(schema.Monthly, "Customer ID", "Branch Code"),
		[]any{"001", "Ada", "Savings", "NGN", 100, 2.5, "2020-01-01", "active"},
		nil,
		[]any{"002", "Obi", "Current", "NGN", -5, 0, "2021-03-04", "active"},
	)
}

func upload(name string, data []byte) submission.Upload {
	return submission.Upload{Name: name, MimeType: ingest.ContentType(name), Content: bytes.NewReader(data)}
}

func input(rt schema.ReturnType, files ...submission.Upload) submission.SubmitInput {
	return submission.SubmitInput{BankID: 1, UserID: 2, Period: "2024-01", ReturnType: rt, Files: files}
}
