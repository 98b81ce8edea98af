package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/oksasatya/go-user-directory/config"
	"github.com/oksasatya/go-user-directory/internal/container"
	"github.com/oksasatya/go-user-directory/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-directory/internal/interface/middleware"
	"github.com/oksasatya/go-user-directory/pkg/metrics"
)

type user struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

func newTestEngine(prefix string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		StoreDriver:         config.DriverMemory,
		APIPrefix:           prefix,
		RateLimitPerMinute:  300,
		MetricsEnabled:      true,
		DebugMetricsEnabled: true,
	}
	c := &container.Container{
		Config:  cfg,
		Metrics: metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry())),
		Users:   memory.NewUserRepository(),
	}
	return NewEngine(c)
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserLifecycle(t *testing.T) {
	Convey("Given a fresh directory", t, func() {
		r := newTestEngine("")

		Convey("Ann can be created, read, replaced and deleted", func() {
			w := call(r, http.MethodPost, "/users", `{"name":"Ann","email":"a@x.com","age":30}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(middleware.RequestIDHeader), ShouldNotBeEmpty)

			var created user
			So(json.Unmarshal(w.Body.Bytes(), &created), ShouldBeNil)
			So(created.ID, ShouldNotBeEmpty)
			So(created.Name, ShouldEqual, "Ann")
			So(created.Age, ShouldEqual, 30)

			w = call(r, http.MethodGet, "/users/"+created.ID, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var fetched user
			_ = json.Unmarshal(w.Body.Bytes(), &fetched)
			So(fetched, ShouldResemble, created)

			w = call(r, http.MethodPut, "/users/"+created.ID, `{"name":"Ann B","email":"a@x.com","age":31}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var updated user
			_ = json.Unmarshal(w.Body.Bytes(), &updated)
			So(updated, ShouldResemble, user{ID: created.ID, Name: "Ann B", Email: "a@x.com", Age: 31})

			w = call(r, http.MethodDelete, "/users/"+created.ID, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{"detail":"User deleted successfully"}`)

			w = call(r, http.MethodGet, "/users/"+created.ID, "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(w.Body.String(), ShouldContainSubstring, `"detail":"User not found"`)

			w = call(r, http.MethodDelete, "/users/"+created.ID, "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("listing reflects creates minus deletes", func() {
			var ids []string
			for _, name := range []string{"a", "b", "c", "d"} {
				w := call(r, http.MethodPost, "/users", `{"name":"`+name+`","email":"`+name+`@x.com","age":20}`)
				var u user
				_ = json.Unmarshal(w.Body.Bytes(), &u)
				ids = append(ids, u.ID)
			}
			So(call(r, http.MethodDelete, "/users/"+ids[1], "").Code, ShouldEqual, http.StatusOK)

			w := call(r, http.MethodGet, "/users", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var all []user
			_ = json.Unmarshal(w.Body.Bytes(), &all)
			So(len(all), ShouldEqual, 3)
			for _, u := range all {
				So(u.ID, ShouldNotEqual, ids[1])
			}
		})

		Convey("an empty directory lists as []", func() {
			w := call(r, http.MethodGet, "/users", "")
			So(w.Body.String(), ShouldEqual, "[]")
		})

		Convey("malformed ids are indistinguishable from missing ones", func() {
			for _, method := range []string{http.MethodGet, http.MethodDelete} {
				w := call(r, method, "/users/not-an-id", "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
			}
			w := call(r, http.MethodPut, "/users/not-an-id", `{"name":"x","email":"y","age":1}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("invalid bodies never reach the store", func() {
			w := call(r, http.MethodPost, "/users", `{"name":"Ann","email":"a@x.com","age":0}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(call(r, http.MethodGet, "/users", "").Body.String(), ShouldEqual, "[]")
		})

		Convey("search answers [] without an index", func() {
			w := call(r, http.MethodGet, "/users/search?q=ann", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "[]")
		})

		Convey("unknown routes answer 404", func() {
			So(call(r, http.MethodGet, "/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given an engine with metrics enabled", t, func() {
		r := newTestEngine("")

		Convey("health reports ok", func() {
			w := call(r, http.MethodGet, "/health", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{"status":"ok"}`)
		})

		Convey("metrics include served routes", func() {
			call(r, http.MethodGet, "/users", "")
			w := call(r, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `route="/users"`)
		})

		Convey("expvar is served", func() {
			w := call(r, http.MethodGet, "/debug/vars", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "memstats")
		})
	})
}

func TestAPIPrefix(t *testing.T) {
	Convey("Given API_PREFIX=/api", t, func() {
		r := newTestEngine("/api")

		So(call(r, http.MethodGet, "/api/users", "").Code, ShouldEqual, http.StatusOK)
		So(call(r, http.MethodGet, "/users", "").Code, ShouldEqual, http.StatusNotFound)
	})
}

func TestTrustedProxies(t *testing.T) {
	Convey("An invalid TRUSTED_PROXIES value still yields a working engine", t, func() {
		gin.SetMode(gin.TestMode)
		c := &container.Container{
			Config: &config.Config{StoreDriver: config.DriverMemory, TrustedProxies: "not-a-cidr"},
			Users:  memory.NewUserRepository(),
		}
		r := NewEngine(c)
		So(call(r, http.MethodGet, "/users", "").Code, ShouldEqual, http.StatusOK)
	})
}
