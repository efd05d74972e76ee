package gateway

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"licensegate/pkg/middleware"
	"licensegate/pkg/repository"
	"licensegate/services/license"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, f *fixture, store license.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewHandler(HandlerParams{Config: f.cfg, Service: f.service(t, store)})

	r := gin.New()
	r.Use(middleware.Error())
	h.Register(r)
	return r
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func formOf(req Request) url.Values {
	return url.Values{
		"game":    {req.Game},
		"payload": {req.Payload},
		"serial":  {req.Serial},
	}
}

func TestConnectSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedKey(t, license.License{MaxDevices: 1})
	r := newRouter(t, f, f.gormStore())

	w := postForm(r, "/connect/acme", formOf(f.request(t, "acme", "device-a", testNow, "")))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	resp := f.open(t, body.Data)
	require.True(t, resp.Status)
	require.NotEmpty(t, resp.Token)
}

func TestConnectMultipart(t *testing.T) {
	f := newFixture(t)
	f.seedKey(t, license.License{MaxDevices: 1})
	r := newRouter(t, f, f.gormStore())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range formOf(f.request(t, "acme", "device-a", testNow, "")) {
		require.NoError(t, mw.WriteField(k, v[0]))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/connect/acme", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"data"`)
}

func TestConnectDomainFailuresAreNeutral(t *testing.T) {
	f := newFixture(t)
	f.seedKey(t, license.License{MaxDevices: 1, Devices: []string{"device-a"}})
	r := newRouter(t, f, f.gormStore())

	cases := map[string]Request{
		"unknown tenant": f.request(t, "ghost", "device-b", testNow, ""),
		"maintenance":    f.request(t, "paused", "device-b", testNow, ""),
		"device limit":   f.request(t, "acme", "device-b", testNow, ""),
		"stale":          f.request(t, "acme", "device-a", testNow.Add(-301 * time.Second), ""),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			w := postForm(r, "/connect/"+req.Owner, formOf(req))
			require.Equal(t, http.StatusOK, w.Code)
			require.JSONEq(t, `{}`, w.Body.String())
		})
	}
}

func TestConnectMalformed(t *testing.T) {
	f := newFixture(t)
	f.seedKey(t, license.License{MaxDevices: 1})
	r := newRouter(t, f, f.gormStore())

	w := postForm(r, "/connect/acme", url.Values{"game": {testGame}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"status":false`)

	w = postForm(r, "/connect/acme", url.Values{"game": {testGame}, "payload": {"not-an-envelope"}, "serial": {"device-a"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"status":false,"error":{"code":"BAD_REQUEST","message":"invalid request"}}`, w.Body.String())
}

func TestConnectStoreUnavailable(t *testing.T) {
	f := newFixture(t)

	ctrl := gomock.NewController(t)
	store := license.NewMockStore(ctrl)
	store.EXPECT().Find(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, repository.ErrStoreUnavailable).
		Times(2)

	r := newRouter(t, f, store)
	w := postForm(r, "/connect/acme", formOf(f.request(t, "acme", "device-a", testNow, "")))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"status":false`)
}

func TestConnectInfo(t *testing.T) {
	f := newFixture(t)
	r := newRouter(t, f, f.gormStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/connect/acme", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"web_info":{"_client":"Kuro Panel","version":"1.5.0"}}`, w.Body.String())
}

func TestConnectDefaultOwner(t *testing.T) {
	f := newFixture(t)
	f.seedKey(t, license.License{MaxDevices: 1})

	w := postForm(newRouter(t, f, f.gormStore()), "/connect", formOf(f.request(t, "acme", "device-a", testNow, "")))
	require.Equal(t, http.StatusNotFound, w.Code)

	f.cfg.Gateway.DefaultOwner = "acme"
	w = postForm(newRouter(t, f, f.gormStore()), "/connect", formOf(f.request(t, "acme", "device-a", testNow, "")))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"data"`)
}
