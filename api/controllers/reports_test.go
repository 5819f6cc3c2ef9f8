package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/sellerdesk/sellerdesk-backend/internal/reports"
	"github.com/sellerdesk/sellerdesk-backend/internal/sales"
)

type testReportsService struct {
	uploadFn func(ctx context.Context, input reports.UploadInput) (*sales.SaleDetail, error)
}

func (s *testReportsService) Upload(ctx context.Context, input reports.UploadInput) (*sales.SaleDetail, error) {
	if s.uploadFn != nil {
		return s.uploadFn(ctx, input)
	}
	return &sales.SaleDetail{}, nil
}

func TestReportUploadForwardsFile(t *testing.T) {
	sellerID := uuid.New()
	var got reports.UploadInput
	svc := &testReportsService{
		uploadFn: func(ctx context.Context, input reports.UploadInput) (*sales.SaleDetail, error) {
			got = input
			return &sales.SaleDetail{}, nil
		},
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, _ := form.CreateFormFile("report", "sales-report.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 report"))
	_ = form.Close()

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/api/v1/sellers/"+sellerID.String()+"/report-uploads", &buf), map[string]string{"sellerID": sellerID.String()})
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp := httptest.NewRecorder()
	ReportUpload(svc, testLogger(), 1<<20)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.SellerID != sellerID {
		t.Fatalf("unexpected seller %s", got.SellerID)
	}
	if got.Filename != "sales-report.pdf" {
		t.Fatalf("unexpected filename %q", got.Filename)
	}
	if got.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", got.ContentType)
	}
}

func TestReportUploadRequiresFile(t *testing.T) {
	sellerID := uuid.New()
	svc := &testReportsService{
		uploadFn: func(ctx context.Context, input reports.UploadInput) (*sales.SaleDetail, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("note", "no file here")
	_ = form.Close()

	req := withURLParams(httptest.NewRequest(http.MethodPost, "/api/v1/sellers/"+sellerID.String()+"/report-uploads", &buf), map[string]string{"sellerID": sellerID.String()})
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp := httptest.NewRecorder()
	ReportUpload(svc, testLogger(), 1<<20)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
