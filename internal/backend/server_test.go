package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func newTestServer() *Server {
	return NewServer(DefaultConfig(), NewStore())
}

func do(t *testing.T, s *Server, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func upload(t *testing.T, s *Server, filename, content string) gjson.Result {
	t.Helper()
	body, ct := multipartBody(t, "file", filename, []byte(content))
	rec := do(t, s, http.MethodPost, "/upload-csv", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return gjson.Parse(rec.Body.String())
}

func priceCSV(n int) string {
	var b strings.Builder
	b.WriteString("Date,Symbol,Close,Volume\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "2024-%02d-%02d,AAPL,%d,%d\n", 1+i/28, 1+i%28, 100+i%7, 1000+i)
	}
	return b.String()
}

const listingCSV = `Symbol,Security Name,Listing Exchange,Market Category,ETF,Round Lot Size,Test Issue,Financial Status
AAPL,Apple Inc.,Q,Q,N,100,N,N
SPY,SPDR S&P 500,P,,Y,100,N,
BRK.A,Berkshire,N,,N,1,N,
`

func TestHomeAndHealth(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API OK", gjson.Get(rec.Body.String(), "message").String())
	assert.NotEmpty(t, gjson.Get(rec.Body.String(), "endpoints").Array())

	rec = do(t, s, http.MethodGet, "/health", nil, "")
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestUploadStockCSV(t *testing.T) {
	s := newTestServer()

	res := upload(t, s, "prices.csv", priceCSV(12))

	assert.Len(t, res.Get("token").String(), 8)
	assert.True(t, res.Get("summary.can_analyze").Bool())
	assert.Equal(t, int64(12), res.Get("summary.rows").Int())
	assert.Equal(t, "2024-01-01", res.Get("summary.date_min").String())
	assert.Len(t, res.Get("preview").Array(), 10)
	assert.Equal(t, "2024-01-01", res.Get("preview.0.Date").String())
	assert.Equal(t, float64(100), res.Get("preview.0.Close").Float())
	assert.Equal(t, "AAPL", res.Get(`extra.Most Frequent Symbol`).String())
	assert.Equal(t, 1, s.store.Len())
}

func TestUploadPreservesColumnOrder(t *testing.T) {
	s := newTestServer()
	res := upload(t, s, "listing.csv", listingCSV)

	var keys []string
	res.Get("preview.0").ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"Symbol", "Security Name", "Listing Exchange", "Market Category", "ETF", "Round Lot Size", "Test Issue", "Financial Status"}, keys)
	assert.False(t, res.Get("summary.can_analyze").Bool())
	assert.False(t, res.Get("summary.date_min").Exists())
}

func TestUploadXLSX(t *testing.T) {
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Close"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"2024-01-02", 10}))
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	s := newTestServer()
	res := upload(t, s, "prices.xlsx", buf.String())
	assert.True(t, res.Get("summary.can_analyze").Bool())
}

func TestUploadErrors(t *testing.T) {
	s := newTestServer()

	body, ct := multipartBody(t, "", "", nil)
	rec := do(t, s, http.MethodPost, "/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file part 'file'", gjson.Get(rec.Body.String(), "error").String())

	body, ct = multipartBody(t, "file", "notes.txt", []byte("hello"))
	rec = do(t, s, http.MethodPost, "/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct = multipartBody(t, "file", "empty.csv", nil)
	rec = do(t, s, http.MethodPost, "/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "Failed to read CSV")

	assert.Equal(t, 0, s.store.Len())
}

func TestUploadTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 16
	s := NewServer(cfg, NewStore())

	body, ct := multipartBody(t, "file", "prices.csv", []byte(priceCSV(5)))
	rec := do(t, s, http.MethodPost, "/upload-csv", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "exceeds")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestUploadBodyCutOffAtLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 1 << 10
	s := NewServer(cfg, NewStore())

	body, ct := multipartBody(t, "file", "prices.csv", bytes.Repeat([]byte("2024-01-02,AAPL,1,1\n"), 1<<16))
	total := int64(body.Len())
	src := &countingReader{r: body}
	// unknown length, so only the body reader can enforce the limit
	req := httptest.NewRequest(http.MethodPost, "/upload-csv", src)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "exceeds")
	assert.Less(t, src.n, total)
	assert.Equal(t, 0, s.store.Len())
}

func TestUploadDeclaredLengthOverLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUploadBytes = 1 << 10
	s := NewServer(cfg, NewStore())

	body, ct := multipartBody(t, "file", "prices.csv", bytes.Repeat([]byte("x"), 1<<17))
	rec := do(t, s, http.MethodPost, "/upload-csv", body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), "exceeds")
}

func TestStockEndpoints(t *testing.T) {
	s := newTestServer()
	token := upload(t, s, "prices.csv", priceCSV(60)).Get("token").String()

	rec := do(t, s, http.MethodGet, "/analyze/"+token+"/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var keys []string
	gjson.Parse(rec.Body.String()).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"Average Daily Return", "Volatility", "Sharpe Ratio", "VaR (95%)"}, keys)

	rec = do(t, s, http.MethodGet, "/analyze/"+token+"/metrics?rf=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/analyze/"+token+"/charts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := gjson.Parse(rec.Body.String())
	assert.Len(t, body.Get("price_chart").Array(), 60)
	assert.Len(t, body.Get("ma_chart").Array(), 11)
	assert.True(t, body.Get("volatility.0.Rolling_Volatility").Exists())
	assert.True(t, body.Get("correlation").IsArray())

	rec = do(t, s, http.MethodGet, "/analyze/"+token+"/returns", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, gjson.Get(rec.Body.String(), "hist").Array(), 59)

	rec = do(t, s, http.MethodGet, "/analyze/"+token+"/prices", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-01", gjson.Get(rec.Body.String(), "0.Date").String())
}

func TestStockEndpointsOnListing(t *testing.T) {
	s := newTestServer()
	token := upload(t, s, "listing.csv", listingCSV).Get("token").String()

	rec := do(t, s, http.MethodGet, "/analyze/"+token+"/charts", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Dataset missing required columns", gjson.Get(rec.Body.String(), "error").String())
}

func TestUnknownToken(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/analyze/nope/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Unknown token"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/analyze/nope/charts", nil, "")
	assert.JSONEq(t, `{"error":"Invalid token"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/analyze-meta/test-token/kpis", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetaEndpoints(t *testing.T) {
	s := newTestServer()
	token := upload(t, s, "listing.csv", listingCSV).Get("token").String()

	rec := do(t, s, http.MethodGet, "/analyze-meta/"+token+"/kpis", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	kpis := gjson.Parse(rec.Body.String())
	assert.Equal(t, int64(3), kpis.Get("Unique Stocks").Int())
	assert.Equal(t, int64(1), kpis.Get("ETF Count").Int())
	assert.Len(t, kpis.Get("Exchange Distribution").Map(), 3)

	rec = do(t, s, http.MethodGet, "/analyze-meta/"+token+"/charts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	charts := gjson.Parse(rec.Body.String())
	assert.Len(t, charts.Get("exchange_bar").Array(), 3)
	assert.Len(t, charts.Get("scatter").Array(), 3)

	rec = do(t, s, http.MethodGet, "/analyze-meta/"+token+"/advanced", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	adv := gjson.Parse(rec.Body.String())
	assert.True(t, adv.Get("etf_percentages").IsObject())
	assert.True(t, adv.Get("top_round_lot").IsArray())
	assert.True(t, adv.Get("test_issue").IsArray())
	assert.False(t, adv.Get("market_cap_stats").Exists())
}
