package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/quadbase/ocms/apps/api/echo"
	"github.com/quadbase/ocms/core"
	"github.com/quadbase/ocms/core/analytics"
	"github.com/quadbase/ocms/core/catalog"
	"github.com/quadbase/ocms/core/enroll"
	"github.com/quadbase/ocms/core/user"
	"github.com/quadbase/ocms/services/email"
	"github.com/quadbase/ocms/storage/database/inmem"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type fixtures struct {
	app Server

	usrRepo user.Repository
	catRepo catalog.Repository
	enrRepo enroll.Repository
	aclRepo enroll.ACLRepository
}

func setup(t *testing.T) fixtures {
	t.Helper()
	core.Conf.TestMode = true
	core.Conf.Debug = false

	db := inmemdb.New()
	f := fixtures{
		usrRepo: inmemdb.NewUserRepository(db),
		catRepo: inmemdb.NewCatalogRepository(db),
		enrRepo: inmemdb.NewEnrollRepository(db),
		aclRepo: inmemdb.NewACLRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(f.usrRepo, mailSvc, nil)
	catSvc := catalog.NewService(f.catRepo)
	gate := enroll.NewGate(f.catRepo, f.aclRepo)
	enrSvc := enroll.NewService(f.enrRepo, f.aclRepo, gate)
	anlSvc := analytics.NewService(inmemdb.NewAnalyticsRepository(db))

	f.app = NewServer(&Options{
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		CatalogSvc:     catSvc,
		EnrollSvc:      enrSvc,
		AnalyticsSvc:   anlSvc,
		Gate:           gate,
		Logger:         testLogger{},
	})
	return f
}

// testLogger swallows everything; 500s under test must not reach rollbar.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func marshallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTable(t *testing.T, app Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			if tt.wantCode == 0 {
				tt.wantCode = http.StatusOK
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
