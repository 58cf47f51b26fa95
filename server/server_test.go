package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, lines ...string) *Server {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	loader := &ledger.Loader{Store: st}
	for _, line := range lines {
		_, err := loader.Load(context.Background(), line)
		require.NoError(t, err)
	}
	return NewServer(ledger.NewResolver(st), loader, zap.NewNop(), "*", "USD")
}

func serve(s *Server, method, target, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.R.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newTestServer(t), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestGetPosition(t *testing.T) {
	s := newTestServer(t,
		"1572723958024;person-a;person-b;D;200",
		"1572807838935;person-b;person-a;W;200",
		"1572815038592;person-a;broker;B;3;APPL;100",
	)

	w := serve(s, http.MethodGet, "/position?entity=person-a&date=2019-11-03T19:03:58.935", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"statusCode":200,"data":{"balance":400,"assets":{}}}`, w.Body.String())
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(s, http.MethodGet, "/position?entity=person-a&date=2019", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"statusCode":200,"data":{"balance":100,"assets":{"APPL":3}}}`, w.Body.String())
}

func TestGetPosition_WrongParams(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{
		"/position",
		"/position?entity=person-a",
		"/position?date=2019-11-02",
		"/position?entity=&date=2019",
		"/position?entity=person-a&date=yesterday",
	} {
		t.Run(target, func(t *testing.T) {
			w := serve(s, http.MethodGet, target, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.JSONEq(t, `{"statusCode":400,"message":"Wrong params"}`, w.Body.String())
		})
	}
}

func TestGetPosition_HTML(t *testing.T) {
	s := newTestServer(t, "1572723958024;person-a;person-b;D;200")
	w := serve(s, http.MethodGet, "/position?entity=person-a&date=2019", "", "Accept", "text/html")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "<h1>person-a</h1>")
	require.Contains(t, w.Body.String(), "$200.00")
}

func TestGetTransactions(t *testing.T) {
	s := newTestServer(t,
		"1572723958024;person-a;person-b;D;200",
		"1572807838935;person-b;person-a;W;200",
	)

	w := serve(s, http.MethodGet, "/transactions?entity=person-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		StatusCode int `json:"statusCode"`
		Data       struct {
			Party        []ledger.Record `json:"party"`
			Counterparty []ledger.Record `json:"counterparty"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, http.StatusOK, got.StatusCode)
	require.Len(t, got.Data.Party, 1)
	require.Len(t, got.Data.Counterparty, 1)
	require.Equal(t, "person-b", got.Data.Counterparty[0].Party)

	w = serve(s, http.MethodGet, "/transactions?entity=nobody&date=2019", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"statusCode":200,"data":{"party":[],"counterparty":[]}}`, w.Body.String())

	w = serve(s, http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostTransaction(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodPost, "/transactions", "1572815038592;person-a;person-b;B;3;APPL;100\n")
	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"statusCode":201,"data":{"datetime":"2019-11-03T21:03:58.592Z","party":"person-a","counterparty":"person-b","transaction":{"type":"B","asset":{"amount":3,"name":"APPL","value":100}}}}`, w.Body.String())

	w = serve(s, http.MethodGet, "/position?entity=person-b&date=2019-11", "")
	require.JSONEq(t, `{"statusCode":200,"data":{"balance":300,"assets":{"APPL":-3}}}`, w.Body.String())

	w = serve(s, http.MethodPost, "/transactions", "1572815038592;person-a;person-b;B;3;APPL;abc")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "value")

	w = serve(s, http.MethodPost, "/transactions", "  ")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

type failingStore struct{}

func (failingStore) Put(context.Context, ledger.Record) error { return errors.New("disk full") }
func (failingStore) Query(context.Context, ledger.Index, string, string) ([]ledger.Record, error) {
	return nil, errors.New("disk full")
}

func TestInternalError(t *testing.T) {
	s := NewServer(ledger.NewResolver(failingStore{}), &ledger.Loader{Store: failingStore{}}, zap.NewNop(), "*", "USD")

	w := serve(s, http.MethodGet, "/position?entity=person-a&date=2019", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"statusCode":500,"message":"internal server error"}`, w.Body.String())

	w = serve(s, http.MethodPost, "/transactions", "1572723958024;person-a;person-b;D;200")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	s := NewServer(ledger.NewResolver(failingStore{}), nil, zap.NewNop(), "https://ledger.example", "USD")

	w := serve(s, http.MethodOptions, "/position", "", "Origin", "https://ledger.example")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://ledger.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(s, http.MethodGet, "/health", "", "Origin", "https://other.example")
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetDoc(t *testing.T) {
	s := newTestServer(t)

	w := serve(s, http.MethodGet, "/docs/lines", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<h1>Transaction lines</h1>")

	w = serve(s, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<h1>ldg</h1>")

	w = serve(s, http.MethodGet, "/docs/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
