package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradesim/config"
	"tradesim/database"
	"tradesim/models"
	"tradesim/quotes"
)

// quoteStub fakes the external price API. Price and name are settable
// between requests; fail switches the server to 500s.
type quoteStub struct {
	srv *httptest.Server

	mu    sync.Mutex
	price string
	name  string
	fail  bool
}

func (q *quoteStub) set(price, name string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.price = price
	q.name = name
}

func (q *quoteStub) setFail(fail bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.fail = fail
}

func newQuoteStub(t *testing.T) *quoteStub {
	q := &quoteStub{price: "100", name: "Apple Inc"}
	q.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// Path: /stable/stock/{symbol}/quote
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 5 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		symbol := strings.ToUpper(parts[3])
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"symbol":%q,"companyName":%q,"latestPrice":%s}`, symbol, q.name, q.price)
	}))
	t.Cleanup(q.srv.Close)
	return q
}

// authAs stubs the auth middleware with a fixed user id.
func authAs(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// newTestEnv wires a handler against an in-memory database and a stub
// quote server, with every protected route authenticated as user 1.
func newTestEnv(t *testing.T) (*Handler, *gin.Engine, *quoteStub) {
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	stub := newQuoteStub(t)

	cfg := &config.Config{
		DefaultCash: decimal.NewFromInt(10000),
		JWTSecret:   "test-secret",
	}
	h := New(db, quotes.NewClient(stub.srv.URL, "test-token"), nil, cfg, quietLogger())

	router := gin.New()
	h.Routes(router, authAs(1))
	return h, router, stub
}

func seedUser(t *testing.T, db *gorm.DB, username string, cash int64) models.User {
	user := models.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
		Cash:         decimal.NewFromInt(cash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func performRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getPath(router http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
