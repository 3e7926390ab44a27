package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonlink/backend/pkg/audit"
	"github.com/salonlink/backend/pkg/calltracking"
	"github.com/salonlink/backend/pkg/customers"
	"github.com/salonlink/backend/pkg/leads"
	"github.com/salonlink/backend/pkg/logger"
	"github.com/salonlink/backend/pkg/models"
)

type stubProvider struct {
	lastTo string
	fail   bool
}

func (p *stubProvider) InitiateCall(ctx context.Context, from, to string) (*calltracking.CallResult, error) {
	p.lastTo = to
	if p.fail {
		return nil, context.DeadlineExceeded
	}
	return &calltracking.CallResult{CallID: "call-1", Status: "initiated", StartedAt: time.Now()}, nil
}

func setupLeadHandlerTest(t *testing.T, provider calltracking.CallProvider) *LeadHandler {
	t.Helper()

	db := newTestDB(t)
	log := logger.New("error")
	leadSvc := leads.NewService(db, nil, audit.New(db), customers.NewService(db), log, 5*time.Second, "IN")
	callSvc := calltracking.NewService(db, provider, "+911400000000", log)
	return NewLeadHandler(leadSvc, callSvc, testMetrics())
}

func postJSON(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func createLeadViaHandler(t *testing.T, h *LeadHandler, name, phone string) models.LeadResponse {
	t.Helper()

	e := echo.New()
	body := `{"name":"` + name + `","phone":"` + phone + `","source":"walk-in"}`
	c, rec := postJSON(e, http.MethodPost, "/api/v1/leads", body)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var lead models.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func TestLeadHandler_Create_Success(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)

	lead := createLeadViaHandler(t, h, "Asha Verma", "98765 43210")
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "Asha Verma", lead.Customer.Name)
	assert.Equal(t, "+919876543210", lead.Customer.Phone)
	assert.Equal(t, "fresh", lead.Status)
	assert.False(t, lead.IsRevisit)
}

func TestLeadHandler_Create_MissingName(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)

	e := echo.New()
	c, rec := postJSON(e, http.MethodPost, "/api/v1/leads", `{"phone":"9876543210"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadHandler_Create_InvalidPhone(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)

	e := echo.New()
	c, rec := postJSON(e, http.MethodPost, "/api/v1/leads", `{"name":"Asha","phone":"12"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "phone", resp.Field)
}

func TestLeadHandler_Get_NotFound(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadHandler_Update_RecordsChanges(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)
	lead := createLeadViaHandler(t, h, "Asha Verma", "9876543210")

	e := echo.New()
	c, rec := postJSON(e, http.MethodPatch, "/", `{"call1":"connected","status":"contacted"}`)
	c.Set("user_email", "admin@salonlink.in")
	c.SetParamNames("id")
	c.SetParamValues(lead.ID)

	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "connected", updated.Call1)
	assert.Equal(t, "contacted", updated.Status)
}

func TestLeadHandler_Update_InvalidStatus(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)
	lead := createLeadViaHandler(t, h, "Asha Verma", "9876543210")

	e := echo.New()
	c, rec := postJSON(e, http.MethodPatch, "/", `{"status":"vanished"}`)
	c.SetParamNames("id")
	c.SetParamValues(lead.ID)

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "status", resp.Field)
}

func TestLeadHandler_List_Filter(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)
	createLeadViaHandler(t, h, "Asha Verma", "9876543210")
	createLeadViaHandler(t, h, "Rohan Gupta", "9123456780")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads?filter=fresh&page=1&limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.LeadListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Leads, 2)
}

func TestLeadHandler_List_BadFilter(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads?filter=bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeadHandler_DeleteAll_RequiresConfirm(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)
	createLeadViaHandler(t, h, "Asha Verma", "9876543210")

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/leads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.DeleteAll(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/leads?confirm=true", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	require.NoError(t, h.DeleteAll(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.DeletedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Deleted)
}

func TestLeadHandler_ClickToCall_Success(t *testing.T) {
	provider := &stubProvider{}
	h := setupLeadHandlerTest(t, provider)
	lead := createLeadViaHandler(t, h, "Asha Verma", "9876543210")

	e := echo.New()
	c, rec := postJSON(e, http.MethodPost, "/api/v1/calls", `{"leadId":"`+lead.ID+`"}`)
	c.Set("user_id", "caller-1")

	require.NoError(t, h.ClickToCall(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+919876543210", provider.lastTo)
}

func TestLeadHandler_ClickToCall_NotConfigured(t *testing.T) {
	h := setupLeadHandlerTest(t, nil)
	lead := createLeadViaHandler(t, h, "Asha Verma", "9876543210")

	e := echo.New()
	c, rec := postJSON(e, http.MethodPost, "/api/v1/calls", `{"leadId":"`+lead.ID+`"}`)

	require.NoError(t, h.ClickToCall(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
