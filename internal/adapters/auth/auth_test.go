package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/leadsplit/internal/domain/model"
)

func TestIssuer(t *testing.T) {
	Convey("Given an issuer", t, func() {
		now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
		iss, err := NewIssuer("top-secret", WithTTL(time.Hour), WithClock(func() time.Time { return now }))
		So(err, ShouldBeNil)

		Convey("When a token is issued", func() {
			token, err := iss.Issue(model.User{ID: "u1", Role: model.RoleAdmin})
			So(err, ShouldBeNil)

			Convey("Then it should parse back to the same claims", func() {
				claims, err := iss.Parse(token)
				So(err, ShouldBeNil)
				So(claims.UserID(), ShouldEqual, "u1")
				So(claims.Role, ShouldEqual, model.RoleAdmin)
				So(claims.ExpiresAt.Time.Equal(now.Add(time.Hour)), ShouldBeTrue)
			})

			Convey("Then another secret should reject it", func() {
				other, err := NewIssuer("different", WithClock(func() time.Time { return now }))
				So(err, ShouldBeNil)
				_, err = other.Parse(token)
				So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
			})

			Convey("Then it should expire after the ttl", func() {
				later, err := NewIssuer("top-secret", WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
				So(err, ShouldBeNil)
				_, err = later.Parse(token)
				So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("When the token uses another algorithm", func() {
			claims := Claims{Role: model.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("top-secret"))
			So(err, ShouldBeNil)

			Convey("Then it should be rejected", func() {
				_, err := iss.Parse(token)
				So(errors.Is(err, ErrInvalidToken), ShouldBeTrue)
			})
		})

		Convey("Then empty input is reported as missing", func() {
			_, err := iss.Parse("")
			So(errors.Is(err, ErrMissingToken), ShouldBeTrue)
		})
	})

	Convey("Given an empty secret", t, func() {
		_, err := NewIssuer("")

		Convey("Then the issuer should refuse it", func() {
			So(errors.Is(err, ErrEmptySecret), ShouldBeTrue)
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a protected handler", t, func() {
		iss, err := NewIssuer("top-secret")
		So(err, ShouldBeNil)
		var seen Claims
		protected := Authenticate(iss)(AdminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})))

		call := func(header string) int {
			req := httptest.NewRequest(http.MethodGet, "/api/lists", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			return rec.Code
		}

		Convey("Then requests without a token get 401", func() {
			So(call(""), ShouldEqual, http.StatusUnauthorized)
			So(call("Basic abc"), ShouldEqual, http.StatusUnauthorized)
			So(call("Bearer garbage"), ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Then non-admin tokens get 403", func() {
			token, err := iss.Issue(model.User{ID: "u2", Role: model.RoleAgent})
			So(err, ShouldBeNil)
			So(call("Bearer "+token), ShouldEqual, http.StatusForbidden)
		})

		Convey("Then admin tokens pass with claims in context", func() {
			token, err := iss.Issue(model.User{ID: "u1", Role: model.RoleAdmin})
			So(err, ShouldBeNil)
			So(call("Bearer "+token), ShouldEqual, http.StatusNoContent)
			So(seen.UserID(), ShouldEqual, "u1")
		})

		Convey("Then AdminOnly alone refuses unauthenticated requests", func() {
			rec := httptest.NewRecorder()
			AdminOnly(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}
