package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/oksasatya/go-user-directory/pkg/metrics"
)

const publicPeer = "203.0.113.7:5555"

// newEngine builds an engine that trusts no proxy, as NewEngine does by
// default. setup may adjust proxy trust before routes are added.
func newEngine(setup func(*gin.Engine), mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	if setup != nil {
		setup(r)
	}
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id": c.GetString("request_id"),
			"real_ip":    c.GetString("real_ip"),
			"allowed":    AllowPrivateIP()(c),
		})
	})
	return r
}

func doFrom(r http.Handler, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = remote
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func do(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	return doFrom(r, publicPeer, header)
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("RequestIDMiddleware", t, func() {
		r := newEngine(nil, RequestIDMiddleware())

		Convey("generates an id and echoes it", func() {
			w := do(r, nil)
			id := w.Header().Get(RequestIDHeader)
			So(id, ShouldNotBeEmpty)
			So(w.Body.String(), ShouldContainSubstring, id)
		})

		Convey("keeps a well-formed inbound id", func() {
			in := "5b1c2f0e-1111-4a2b-8c3d-9e8f7a6b5c4d"
			w := do(r, map[string]string{RequestIDHeader: in})
			So(w.Header().Get(RequestIDHeader), ShouldEqual, in)
		})

		Convey("replaces a malformed inbound id", func() {
			w := do(r, map[string]string{RequestIDHeader: "<script>"})
			So(w.Header().Get(RequestIDHeader), ShouldNotEqual, "<script>")
		})
	})
}

func TestRealIP(t *testing.T) {
	Convey("RealIP behind no trusted proxy", t, func() {
		r := newEngine(nil, RealIP())

		Convey("uses the remote address", func() {
			w := do(r, nil)
			So(w.Body.String(), ShouldContainSubstring, `"real_ip":"203.0.113.7"`)
			So(w.Body.String(), ShouldContainSubstring, `"allowed":false`)
		})

		Convey("ignores a forged loopback X-Forwarded-For", func() {
			w := do(r, map[string]string{"X-Forwarded-For": "127.0.0.1"})
			So(w.Body.String(), ShouldContainSubstring, `"real_ip":"203.0.113.7"`)
			So(w.Body.String(), ShouldContainSubstring, `"allowed":false`)
		})

		Convey("ignores a forged CF-Connecting-IP", func() {
			w := do(r, map[string]string{"CF-Connecting-IP": "10.0.0.1"})
			So(w.Body.String(), ShouldContainSubstring, `"real_ip":"203.0.113.7"`)
		})
	})

	Convey("RealIP behind a trusted proxy", t, func() {
		r := newEngine(func(e *gin.Engine) {
			_ = e.SetTrustedProxies([]string{"10.0.0.0/8"})
		}, RealIP())

		Convey("takes the first untrusted hop from the right", func() {
			w := doFrom(r, "10.0.0.5:4000", map[string]string{"X-Forwarded-For": "127.0.0.1, 198.51.100.9"})
			So(w.Body.String(), ShouldContainSubstring, `"real_ip":"198.51.100.9"`)
			So(w.Body.String(), ShouldContainSubstring, `"allowed":false`)
		})

		Convey("still treats an in-cluster caller as private", func() {
			w := doFrom(r, "10.0.0.5:4000", nil)
			So(w.Body.String(), ShouldContainSubstring, `"real_ip":"10.0.0.5"`)
			So(w.Body.String(), ShouldContainSubstring, `"allowed":true`)
		})
	})

	Convey("RealIP on a trusted platform reads its header", t, func() {
		r := newEngine(func(e *gin.Engine) {
			e.TrustedPlatform = TrustedPlatformHeader("cloudflare")
		}, RealIP())

		w := do(r, map[string]string{"CF-Connecting-IP": "198.51.100.1"})
		So(w.Body.String(), ShouldContainSubstring, `"real_ip":"198.51.100.1"`)
	})
}

func TestTrustedPlatformHeader(t *testing.T) {
	Convey("TrustedPlatformHeader", t, func() {
		So(TrustedPlatformHeader(""), ShouldBeEmpty)
		So(TrustedPlatformHeader("Cloudflare"), ShouldEqual, gin.PlatformCloudflare)
		So(TrustedPlatformHeader("google"), ShouldEqual, gin.PlatformGoogleAppEngine)
		So(TrustedPlatformHeader(" Fly-Client-IP "), ShouldEqual, "Fly-Client-IP")
	})
}

func TestRateLimitDisabled(t *testing.T) {
	Convey("RateLimit without a redis client passes every request", t, func() {
		r := newEngine(nil, RateLimit(nil, 1, time.Minute, KeyByIP(), nil))
		for i := 0; i < 3; i++ {
			w := do(r, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("X-RateLimit-Limit"), ShouldBeEmpty)
		}
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a limit of 2 per minute", t, func() {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = rdb.Close() }()

		r := newEngine(nil, RealIP(), RateLimit(rdb, 2, time.Minute, KeyByIP(), AllowPrivateIP()))

		Convey("requests within the window carry the quota headers", func() {
			w := do(r, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("X-RateLimit-Limit"), ShouldEqual, "2")
			So(w.Header().Get("X-RateLimit-Remaining"), ShouldEqual, "1")
			So(w.Header().Get("X-RateLimit-Reset"), ShouldEqual, "60")

			w = do(r, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("X-RateLimit-Remaining"), ShouldEqual, "0")
		})

		Convey("the request past the limit is rejected", func() {
			do(r, nil)
			do(r, nil)
			w := do(r, nil)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("X-RateLimit-Remaining"), ShouldEqual, "0")
			So(w.Header().Get("Retry-After"), ShouldEqual, "60")
			So(w.Body.String(), ShouldContainSubstring, "rate limit exceeded")
		})

		Convey("a new window starts once the key expires", func() {
			do(r, nil)
			do(r, nil)
			mr.FastForward(time.Minute + time.Second)
			So(do(r, nil).Code, ShouldEqual, http.StatusOK)
		})

		Convey("clients are counted separately", func() {
			do(r, nil)
			do(r, nil)
			So(doFrom(r, "198.51.100.20:1000", nil).Code, ShouldEqual, http.StatusOK)
		})

		Convey("a forged X-Forwarded-For neither bypasses nor resets the limit", func() {
			for i, xff := range []string{"127.0.0.1", "10.9.9.9", "198.51.100.77"} {
				w := do(r, map[string]string{"X-Forwarded-For": xff})
				if i < 2 {
					So(w.Code, ShouldEqual, http.StatusOK)
					So(w.Header().Get("X-RateLimit-Limit"), ShouldEqual, "2")
				} else {
					So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				}
			}
		})

		Convey("private peers bypass the limiter", func() {
			for i := 0; i < 4; i++ {
				w := doFrom(r, "127.0.0.1:9000", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("X-RateLimit-Limit"), ShouldBeEmpty)
			}
		})
	})

	Convey("Given an unreachable redis", t, func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})
		defer func() { _ = rdb.Close() }()

		r := newEngine(nil, RateLimit(rdb, 1, time.Minute, KeyByIP(), nil))

		Convey("the limiter fails open", func() {
			for i := 0; i < 3; i++ {
				w := do(r, nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("X-RateLimit-Limit"), ShouldBeEmpty)
			}
		})
	})
}

func TestAccessLogAndMetrics(t *testing.T) {
	Convey("AccessLog and Metrics observe the finished request", t, func() {
		var buf bytes.Buffer
		logger := logrus.New()
		logger.SetOutput(&buf)
		logger.SetFormatter(&logrus.JSONFormatter{})
		m := metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))

		r := newEngine(nil, RequestIDMiddleware(), AccessLog(logger), Metrics(m))
		w := do(r, nil)
		So(w.Code, ShouldEqual, http.StatusOK)

		line := buf.String()
		So(line, ShouldContainSubstring, `"route":"/whoami"`)
		So(line, ShouldContainSubstring, `"status":200`)

		mw := httptest.NewRecorder()
		m.Handler().ServeHTTP(mw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		So(strings.Contains(mw.Body.String(), `route="/whoami"`), ShouldBeTrue)
	})
}
