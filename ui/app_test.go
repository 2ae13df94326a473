package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockboard/domain/core"
	"stockboard/domain/dataset"
	"stockboard/domain/session"
	"stockboard/internal/charts"
	"stockboard/ui/templates/fragments"
)

// fakeClient answers uploads from a queue and serves canned stock charts.
type fakeClient struct {
	results []*dataset.UploadResult
	errs    []error
	uploads int
	charts  *dataset.StockCharts
}

func (f *fakeClient) Upload(ctx context.Context, filename string, file io.Reader) (*dataset.UploadResult, error) {
	i := f.uploads
	f.uploads++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.results[i], nil
}

func (f *fakeClient) Metrics(ctx context.Context, token core.Token) (dataset.StockMetrics, error) {
	return dataset.StockMetrics{{Key: "Volatility", Value: 0.02}}, nil
}

func (f *fakeClient) StockCharts(ctx context.Context, token core.Token) (*dataset.StockCharts, error) {
	if f.charts == nil {
		return nil, errors.New("no charts")
	}
	return f.charts, nil
}

func (f *fakeClient) Returns(ctx context.Context, token core.Token) (*dataset.StockReturns, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) MetaKPIs(ctx context.Context, token core.Token) (*dataset.MetaKPIs, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) MetaCharts(ctx context.Context, token core.Token) (*dataset.MetaCharts, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) MetaAdvanced(ctx context.Context, token core.Token) (*dataset.MetaAdvanced, error) {
	return nil, errors.New("not used")
}

func newTestApp(t *testing.T, client *fakeClient) *App {
	t.Helper()
	a, err := NewApp(Config{}, client)
	require.NoError(t, err)
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return req
}

func stockUpload(token string, rows int) *dataset.UploadResult {
	var preview dataset.Rows
	for i := 0; i < rows; i++ {
		preview = append(preview, dataset.Row{
			{Key: "Date", Value: "2024-01-02"},
			{Key: "Close", Value: float64(100 + i)},
		})
	}
	from, to := "2024-01-02", "2024-02-01"
	return &dataset.UploadResult{
		Token: core.Token(token),
		Summary: dataset.Summary{
			Rows: rows, Cols: 2, Columns: []string{"Date", "Close"},
			DateMin: &from, DateMax: &to, CanAnalyze: true,
		},
		Preview: preview,
		Extra:   dataset.Row{{Key: dataset.ExtraMaxClose, Value: 111.0}},
	}
}

func metaUpload(token string) *dataset.UploadResult {
	return &dataset.UploadResult{
		Token:   core.Token(token),
		Summary: dataset.Summary{Rows: 2, Cols: 2, Columns: []string{"A", "B"}},
		Preview: dataset.Rows{
			{{Key: "A", Value: 1.0}, {Key: "B", Value: 2.0}},
			{{Key: "A", Value: 3.0}, {Key: "B", Value: 4.0}},
		},
	}
}

func TestTemplatesParsed(t *testing.T) {
	a := newTestApp(t, &fakeClient{})
	for _, name := range fragments.GetAllTemplatePaths() {
		assert.NotNil(t, a.templates.Lookup(name), name)
		assert.NotEqual(t, "unknown", fragments.GetTemplateCategory(name), name)
	}
}

func TestIndexAndHelp(t *testing.T) {
	a := newTestApp(t, &fakeClient{})

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="workspace"`)
	assert.Contains(t, rec.Body.String(), `id="alerts"`)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/help", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h2")
	assert.Contains(t, rec.Body.String(), "Stock files")
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, &fakeClient{})
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestUploadWithoutFileMakesNoCall(t *testing.T) {
	client := &fakeClient{}
	a := newTestApp(t, client)

	rec := serve(a, uploadRequest(t, "", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file selected")
	assert.Equal(t, 0, client.uploads)
	s, _ := a.current()
	assert.Nil(t, s)
}

func TestUploadFailureKeepsSession(t *testing.T) {
	client := &fakeClient{
		results: []*dataset.UploadResult{stockUpload("first", 3), nil},
		errs:    []error{nil, errors.New("backend returned 500")},
	}
	a := newTestApp(t, client)

	rec := serve(a, uploadRequest(t, "prices.csv", "x"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, uploadRequest(t, "broken.csv", "x"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "#alerts", rec.Header().Get("HX-Retarget"))
	assert.Contains(t, rec.Body.String(), "Upload failed")

	s, tabs := a.current()
	assert.Equal(t, core.Token("first"), s.Token())
	assert.True(t, tabs.StockEnabled)
}

func TestStockUploadShowsOverview(t *testing.T) {
	client := &fakeClient{results: []*dataset.UploadResult{stockUpload("tok", 12)}}
	a := newTestApp(t, client)

	rec := serve(a, uploadRequest(t, "prices.csv", "x"))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "2024-01-02 → 2024-02-01")
	assert.Contains(t, body, "/analysis/stock")
	assert.NotContains(t, body, "/analysis/meta")
	assert.Contains(t, body, "Page 1 of 3")

	_, tabs := a.current()
	assert.Equal(t, session.TabStock, tabs.Active)
	assert.True(t, tabs.Valid())
}

func TestUploadSwitchesTabs(t *testing.T) {
	client := &fakeClient{results: []*dataset.UploadResult{stockUpload("s", 2), metaUpload("m")}}
	a := newTestApp(t, client)

	serve(a, uploadRequest(t, "prices.csv", "x"))
	serve(a, uploadRequest(t, "listing.csv", "x"))

	_, tabs := a.current()
	assert.Equal(t, session.Tabs{Active: session.TabMeta, MetaEnabled: true}, tabs)
}

func TestMetaCleanupSave(t *testing.T) {
	client := &fakeClient{results: []*dataset.UploadResult{metaUpload("m")}}
	a := newTestApp(t, client)

	rec := serve(a, uploadRequest(t, "listing.csv", "x"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="cleanupModal"`)
	assert.NotContains(t, rec.Body.String(), "/analysis/meta")

	rec = serve(a, formRequest("/cleanup/toggle", url.Values{"column": {"A"}}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chip removed")

	rec = serve(a, formRequest("/cleanup/save", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "/analysis/meta")
	assert.Contains(t, body, "/meta/kpis")
	assert.NotContains(t, body, "<th>A</th>")
	assert.Contains(t, body, "<th>B</th>")

	s, _ := a.current()
	assert.Equal(t, dataset.Rows{
		{{Key: "B", Value: 2.0}},
		{{Key: "B", Value: 4.0}},
	}, s.OverviewRows())

	rec = serve(a, formRequest("/cleanup/save", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMetaCleanupCancelKeepsColumns(t *testing.T) {
	client := &fakeClient{results: []*dataset.UploadResult{metaUpload("m")}}
	a := newTestApp(t, client)

	serve(a, uploadRequest(t, "listing.csv", "x"))
	serve(a, formRequest("/cleanup/toggle", url.Values{"column": {"A"}}))
	rec := serve(a, formRequest("/cleanup/cancel", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<th>A</th>")
}

func TestCleanupWithoutSession(t *testing.T) {
	a := newTestApp(t, &fakeClient{})
	rec := serve(a, formRequest("/cleanup/toggle", url.Values{"column": {"A"}}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOverviewTablePaging(t *testing.T) {
	client := &fakeClient{results: []*dataset.UploadResult{stockUpload("tok", 12)}}
	a := newTestApp(t, client)
	serve(a, uploadRequest(t, "prices.csv", "x"))

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/overview/table?page=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page 3 of 3")
	assert.Contains(t, rec.Body.String(), "<td>111</td>")

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/overview/table?q=105", nil))
	assert.Contains(t, rec.Body.String(), "(1 of 12 rows)")
}

func TestChartEndpoint(t *testing.T) {
	client := &fakeClient{
		results: []*dataset.UploadResult{stockUpload("tok", 2)},
		charts: &dataset.StockCharts{
			PriceChart: dataset.Series{
				{{Key: "Date", Value: "2024-01-02"}, {Key: "Close", Value: 10.0}},
				{{Key: "Date", Value: "2024-01-03"}, {Key: "Close", Value: 11.0}},
			},
		},
	}
	a := newTestApp(t, client)

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/charts/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/charts/"+charts.MountPrice, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No chart available")

	serve(a, uploadRequest(t, "prices.csv", "x"))
	rec = serve(a, httptest.NewRequest(http.MethodGet, "/analysis/stock", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/charts/"+charts.MountPrice)

	rec = serve(a, httptest.NewRequest(http.MethodGet, "/charts/"+charts.MountPrice, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestAnalysisPanelsWithoutSession(t *testing.T) {
	client := &fakeClient{}
	a := newTestApp(t, client)

	for _, path := range []string{"/analysis/stock", "/analysis/stock/returns", "/analysis/meta"} {
		rec := serve(a, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Equal(t, 0, client.uploads)
}

func TestUploadWithoutPreviewStillShowsOverview(t *testing.T) {
	stock := stockUpload("s", 0)
	stock.Preview = nil
	meta := metaUpload("m")
	meta.Preview = nil
	client := &fakeClient{results: []*dataset.UploadResult{stock, meta}}
	a := newTestApp(t, client)

	rec := serve(a, uploadRequest(t, "prices.csv", "x"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="overview"`)
	assert.Contains(t, rec.Body.String(), "2024-01-02 → 2024-02-01")

	serve(a, uploadRequest(t, "listing.csv", "x"))
	rec = serve(a, formRequest("/cleanup/cancel", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="overview"`)
	assert.Contains(t, rec.Body.String(), "/meta/kpis")
	assert.Contains(t, rec.Body.String(), "No rows to show.")
}

func TestStockAnalysisFailureKeepsPlaceholder(t *testing.T) {
	client := &fakeClient{results: []*dataset.UploadResult{stockUpload("s", 2)}}
	a := newTestApp(t, client)
	serve(a, uploadRequest(t, "prices.csv", "x"))

	rec := serve(a, httptest.NewRequest(http.MethodGet, "/analysis/stock", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "no charts")
	assert.NotContains(t, rec.Body.String(), "<iframe")
}
