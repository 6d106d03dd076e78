package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/coachboard/coachboard-client/internal/models"
	"github.com/coachboard/coachboard-client/internal/querycache"
)

// ReportFormat selects the server-rendered analytics report
type ReportFormat string

const (
	ReportPDF   ReportFormat = "pdf"
	ReportExcel ReportFormat = "excel"
)

func (f ReportFormat) extension() string {
	if f == ReportExcel {
		return "xlsx"
	}
	return "pdf"
}

// Report is a downloaded report blob
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (c *Client) Analytics(ctx context.Context) (*models.AnalyticsResponse, error) {
	v, err := querycache.Load(ctx, c.cache, querycache.Key(resAnalytics, "summary"), func(ctx context.Context) (models.AnalyticsResponse, error) {
		var out models.AnalyticsResponse
		err := c.doJSON(ctx, http.MethodGet, "/analytics", nil, nil, &out)
		return out, err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) ExportReport(ctx context.Context, format ReportFormat) (*Report, error) {
	if format != ReportPDF && format != ReportExcel {
		return nil, &models.ValidationError{Field: "format", Message: fmt.Sprintf("invalid value %q", format)}
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/analytics/export/"+string(format), nil, nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	data, header, err := c.send(req)
	if err != nil {
		return nil, err
	}

	filename := "analytics_report." + format.extension()
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return &Report{
		Filename:    filename,
		ContentType: header.Get("Content-Type"),
		Data:        data,
	}, nil
}
