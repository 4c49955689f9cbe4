package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorClass(t *testing.T) {
	Convey("errorClass buckets statuses for the error counters", t, func() {
		So(errorClass(http.StatusOK), ShouldEqual, "")
		So(errorClass(http.StatusNoContent), ShouldEqual, "")
		So(errorClass(http.StatusBadRequest), ShouldEqual, "rejected")
		So(errorClass(http.StatusNotFound), ShouldEqual, "not_found")
		So(errorClass(http.StatusTooManyRequests), ShouldEqual, "backpressure")
		So(errorClass(http.StatusServiceUnavailable), ShouldEqual, "unavailable")
		So(errorClass(http.StatusInternalServerError), ShouldEqual, "server_error")
	})
}

func TestInstrument(t *testing.T) {
	Convey("Given an instrumented handler", t, func() {
		Convey("When the handler writes a body without a status", func() {
			h := instrument("probe")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

			Convey("Then the response passes through untouched", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldEqual, "ok")
			})
		})

		Convey("When the handler rejects the request", func() {
			h := instrument("probe")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeError(w, http.StatusTooManyRequests, "backpressure", nil)
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/probe", nil))

			Convey("Then the status and error body are preserved", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(rec.Body.String(), ShouldContainSubstring, `"code":"backpressure"`)
			})
		})
	})
}
