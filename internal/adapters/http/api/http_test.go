package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/leadsplit/internal/adapters/auth"
	"github.com/okian/leadsplit/internal/adapters/http/api"
	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// mockDeps records calls and returns canned results.
type mockDeps struct {
	uploaded     string
	uploadedBody string
	uploadRes    model.UploadResult
	uploadErr    error

	distribution []model.AgentDistribution
	export       model.AgentDistribution
	exportErr    error

	added    model.AgentInput
	addErr   error
	agents   []model.Agent
	otpErr   error
	loginRes model.LoginResult
	loginErr error
	regUser  model.User
	resetArg [3]string
}

func (m *mockDeps) Upload(_ context.Context, r io.Reader, filename string) (model.UploadResult, error) {
	body, _ := io.ReadAll(r)
	m.uploaded, m.uploadedBody = filename, string(body)
	return m.uploadRes, m.uploadErr
}

func (m *mockDeps) ListDistribution(context.Context) ([]model.AgentDistribution, error) {
	return m.distribution, nil
}

func (m *mockDeps) ExportAgent(_ context.Context, id string) (model.AgentDistribution, error) {
	if id == "" {
		return model.AgentDistribution{}, fmt.Errorf("%w: agent_id is required", model.ErrInvalidInput)
	}
	return m.export, m.exportErr
}

func (m *mockDeps) AddAgent(_ context.Context, in model.AgentInput) (model.Agent, error) {
	m.added = in
	if m.addErr != nil {
		return model.Agent{}, m.addErr
	}
	return model.Agent{ID: "a1", Name: in.Name, Email: in.Email, Mobile: in.Mobile, PasswordHash: "hash"}, nil
}

func (m *mockDeps) ListAgents(context.Context) ([]model.Agent, error) { return m.agents, nil }

func (m *mockDeps) SendOTP(context.Context, string) error          { return m.otpErr }
func (m *mockDeps) VerifyOTP(context.Context, string, string) error { return m.otpErr }
func (m *mockDeps) ForgotPassword(context.Context, string) error    { return m.otpErr }

func (m *mockDeps) Register(_ context.Context, email, _ string) (model.User, error) {
	m.regUser = model.User{ID: "u1", Email: email, Role: model.RoleAdmin}
	return m.regUser, nil
}

func (m *mockDeps) Login(context.Context, string, string) (model.LoginResult, error) {
	return m.loginRes, m.loginErr
}

func (m *mockDeps) ResetPassword(_ context.Context, email, otp, pw string) error {
	m.resetArg = [3]string{email, otp, pw}
	return nil
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

type harness struct {
	deps    *mockDeps
	handler http.Handler
	admin   string
	agent   string
}

func newHarness(opts ...api.Option) *harness {
	iss, err := auth.NewIssuer("api-test-secret")
	So(err, ShouldBeNil)
	admin, err := iss.Issue(model.User{ID: "u1", Role: model.RoleAdmin})
	So(err, ShouldBeNil)
	agent, err := iss.Issue(model.User{ID: "u2", Role: model.RoleAgent})
	So(err, ShouldBeNil)

	deps := &mockDeps{}
	srv := api.NewServer(deps, mockStats{}, iss, opts...)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return &harness{deps: deps, handler: srv.Handler(mux), admin: admin, agent: agent}
}

func (h *harness) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(filename, content string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	So(err, ShouldBeNil)
	_, _ = fw.Write([]byte(content))
	So(mw.Close(), ShouldBeNil)
	req := httptest.NewRequest(http.MethodPost, "/api/lists/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered server", t, func() {
		h := newHarness()

		Convey("Then /api/health should report ok", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(rec.Body.String()), ShouldEqual, `{"ok":true}`)
		})

		Convey("Then /healthz should expose Prometheus metrics", func() {
			h.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
			rec := h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "leadsplit_lists_http_requests_total")
		})

		Convey("Then /stats should return the provider's map", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/stats", nil), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decodeBody(rec)["started"], ShouldEqual, true)
		})

		Convey("Then every response should carry a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.Header.Set(api.RequestIDHeader, "req-42")
			rec := h.do(req, "")
			So(rec.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")

			rec = h.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
			So(rec.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("Then the wrong method should be a 404", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/auth/login", nil), "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a server with a custom origin", t, func() {
		h := newHarness(api.WithCORSOrigin("https://app.example.com"))

		Convey("When a preflight request arrives", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/lists/upload", nil)
			req.Header.Set("Origin", "https://app.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := h.do(req, "")

			Convey("Then it should be answered with 204 and the allow headers", func() {
				So(rec.Code, ShouldEqual, http.StatusNoContent)
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://app.example.com")
				So(rec.Header().Get("Access-Control-Allow-Credentials"), ShouldEqual, "true")
				So(rec.Header().Get("Access-Control-Allow-Headers"), ShouldContainSubstring, "Authorization")
			})
		})

		Convey("When a normal request arrives", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")

			Convey("Then the origin header should still be set", func() {
				So(rec.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://app.example.com")
			})
		})
	})
}

func TestAccessControl(t *testing.T) {
	Convey("Given the protected routes", t, func() {
		h := newHarness()
		paths := []struct{ method, path string }{
			{http.MethodPost, "/api/agents/add"},
			{http.MethodGet, "/api/agents"},
			{http.MethodPost, "/api/lists/upload"},
			{http.MethodGet, "/api/lists"},
			{http.MethodGet, "/api/lists/export"},
		}

		Convey("Then requests without a token should get 401", func() {
			for _, p := range paths {
				rec := h.do(httptest.NewRequest(p.method, p.path, nil), "")
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			}
		})

		Convey("Then a garbage token should get 401", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/lists", nil), "not-a-jwt")
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Then a non-admin token should get 403", func() {
			for _, p := range paths {
				rec := h.do(httptest.NewRequest(p.method, p.path, nil), h.agent)
				So(rec.Code, ShouldEqual, http.StatusForbidden)
			}
		})
	})
}

func TestListsHandler_Upload(t *testing.T) {
	Convey("Given an admin uploading files", t, func() {
		h := newHarness(api.WithUploadMaxBytes(1024))

		Convey("When the upload succeeds", func() {
			h.deps.uploadRes = model.UploadResult{Total: 23, Counts: []int{5, 5, 5, 4, 4}, Rejected: 2}
			rec := h.do(uploadRequest("leads.CSV", "FirstName,Phone\nAnn,1\n"), h.admin)

			Convey("Then the summary should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decodeBody(rec)
				So(body["message"], ShouldEqual, "Distributed 23 items among 5 agents")
				So(body["counts"], ShouldResemble, []any{5.0, 5.0, 5.0, 4.0, 4.0})
				So(body["total"], ShouldEqual, 23.0)
				So(body["rejected"], ShouldEqual, 2.0)
			})

			Convey("Then the file should reach the service intact", func() {
				So(h.deps.uploaded, ShouldEqual, "leads.CSV")
				So(h.deps.uploadedBody, ShouldEqual, "FirstName,Phone\nAnn,1\n")
			})
		})

		Convey("When the extension is not allowed", func() {
			rec := h.do(uploadRequest("leads.txt", "x"), h.admin)

			Convey("Then it should be rejected before the service", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(rec)["message"], ShouldEqual, "Invalid file type. Allowed: csv, xlsx, xls")
				So(h.deps.uploaded, ShouldBeEmpty)
			})
		})

		Convey("When no file part is sent", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			_ = mw.WriteField("other", "x")
			_ = mw.Close()
			req := httptest.NewRequest(http.MethodPost, "/api/lists/upload", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			rec := h.do(req, h.admin)

			Convey("Then it should be a 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(rec)["code"], ShouldEqual, "no_file")
			})
		})

		Convey("When the body exceeds the limit", func() {
			rec := h.do(uploadRequest("big.csv", strings.Repeat("a", 2048)), h.admin)

			Convey("Then it should be a 413", func() {
				So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(h.deps.uploaded, ShouldBeEmpty)
			})
		})

		Convey("When the service reports domain errors", func() {
			cases := []struct {
				err    error
				status int
				code   string
			}{
				{fmt.Errorf("%w: bad quote", model.ErrDecode), http.StatusBadRequest, "decode_failed"},
				{model.ErrNoValidRows, http.StatusBadRequest, "no_valid_rows"},
				{fmt.Errorf("%w: found 4", model.ErrInsufficientAgents), http.StatusBadRequest, "insufficient_agents"},
				{fmt.Errorf("%w: disk I/O", model.ErrStorage), http.StatusInternalServerError, "storage_error"},
			}
			for _, c := range cases {
				h.deps.uploadErr = c.err
				rec := h.do(uploadRequest("leads.csv", "FirstName,Phone\n"), h.admin)
				So(rec.Code, ShouldEqual, c.status)
				So(decodeBody(rec)["code"], ShouldEqual, c.code)
			}
		})

		Convey("When storage fails", func() {
			h.deps.uploadErr = fmt.Errorf("%w: disk I/O error at /var/db", model.ErrStorage)
			rec := h.do(uploadRequest("leads.csv", "FirstName,Phone\n"), h.admin)

			Convey("Then internal details should not leak", func() {
				So(rec.Body.String(), ShouldNotContainSubstring, "/var/db")
			})
		})

		Convey("When the insufficient agent message is returned", func() {
			h.deps.uploadErr = fmt.Errorf("%w: found 4", model.ErrInsufficientAgents)
			rec := h.do(uploadRequest("leads.csv", "FirstName,Phone\n"), h.admin)

			Convey("Then the message should omit the operation name", func() {
				So(decodeBody(rec)["message"], ShouldEqual, "at least 5 agents required to distribute the list: found 4")
			})
		})
	})
}

func TestListsHandler_ReadAndExport(t *testing.T) {
	Convey("Given a stored distribution", t, func() {
		h := newHarness()
		ann := model.Agent{ID: "a1", Name: "Ann Lee", Email: "ann@x.io", Mobile: "+15550000001", PasswordHash: "secret"}
		h.deps.distribution = []model.AgentDistribution{{
			Agent: ann,
			Count: 2,
			Items: []model.Item{{FirstName: "Jo", Phone: "1"}, {FirstName: "Kim", Phone: "2", Notes: `say "hi", ok`}},
		}}
		h.deps.export = h.deps.distribution[0]

		Convey("When reading the aggregated view", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/lists", nil), h.admin)

			Convey("Then agents and items should be returned without hashes", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldNotContainSubstring, "secret")
				var out []map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out, ShouldHaveLength, 1)
				So(out[0]["count"], ShouldEqual, 2.0)
				So(out[0]["agent"].(map[string]any)["name"], ShouldEqual, "Ann Lee")
			})
		})

		Convey("When exporting one agent", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/lists/export?agent_id=a1", nil), h.admin)

			Convey("Then a quoted CSV attachment should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
				So(rec.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="Ann_Lee_assigned_list.csv"`)
				So(rec.Body.String(), ShouldEqual,
					"First Name,Phone,Notes\n"+
						`"Jo","1",""`+"\n"+
						`"Kim","2","say ""hi"", ok"`+"\n")
			})
		})

		Convey("When the agent has nothing assigned", func() {
			h.deps.exportErr = fmt.Errorf("%w: no items assigned", model.ErrNotFound)
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/lists/export?agent_id=a9", nil), h.admin)

			Convey("Then it should be a 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When agent_id is missing", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/lists/export", nil), h.admin)

			Convey("Then it should be a 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestAgentsHandler(t *testing.T) {
	Convey("Given the agent routes", t, func() {
		h := newHarness()

		Convey("When a valid agent is posted", func() {
			rec := h.do(jsonRequest(http.MethodPost, "/api/agents/add",
				`{"name":"Ann","email":"ann@x.io","mobile":"+15550000001","password":"pw"}`), h.admin)

			Convey("Then it should be created without exposing the hash", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(rec.Body.String(), ShouldNotContainSubstring, "hash")
				body := decodeBody(rec)
				So(body["message"], ShouldEqual, "Agent created")
				So(body["agent"].(map[string]any)["id"], ShouldEqual, "a1")
				So(h.deps.added.Mobile, ShouldEqual, "+15550000001")
			})
		})

		Convey("When a field is missing", func() {
			rec := h.do(jsonRequest(http.MethodPost, "/api/agents/add",
				`{"name":"Ann","email":"ann@x.io","password":"pw"}`), h.admin)

			Convey("Then validation should name it", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeBody(rec)
				So(body["code"], ShouldEqual, "invalid_input")
				So(body["message"], ShouldContainSubstring, "mobile is required")
			})
		})

		Convey("When the body is not JSON", func() {
			rec := h.do(jsonRequest(http.MethodPost, "/api/agents/add", `{`), h.admin)

			Convey("Then it should be a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(rec)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the email is taken", func() {
			h.deps.addErr = fmt.Errorf("agent email %w", model.ErrConflict)
			rec := h.do(jsonRequest(http.MethodPost, "/api/agents/add",
				`{"name":"Ann","email":"ann@x.io","mobile":"+15550000001","password":"pw"}`), h.admin)

			Convey("Then it should be a conflict", func() {
				So(rec.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When listing agents", func() {
			h.deps.agents = []model.Agent{{ID: "a2", Name: "Bo"}, {ID: "a1", Name: "Ann"}}
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/agents", nil), h.admin)

			Convey("Then the service order should be kept", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var out []map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
				So(out, ShouldHaveLength, 2)
				So(out[0]["id"], ShouldEqual, "a2")
			})
		})
	})
}

func TestAccountHandler(t *testing.T) {
	Convey("Given the account routes", t, func() {
		h := newHarness()

		Convey("When an OTP is requested", func() {
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/send-otp", `{"email":"ann@x.io"}`), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the mail queue is full", func() {
			h.deps.otpErr = model.ErrMailUnavailable
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/send-otp", `{"email":"ann@x.io"}`), "")

			Convey("Then it should be a 503", func() {
				So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the OTP has the wrong shape", func() {
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/verify-otp", `{"email":"ann@x.io","otp":"12ab"}`), "")

			Convey("Then validation should reject it", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeBody(rec)["code"], ShouldEqual, "invalid_input")
			})
		})

		Convey("When the OTP is wrong", func() {
			h.deps.otpErr = model.ErrInvalidOTP
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/verify-otp", `{"email":"ann@x.io","otp":"123456"}`), "")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody(rec)["code"], ShouldEqual, "invalid_otp")
		})

		Convey("When registering", func() {
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/register", `{"email":"ann@x.io","password":"pw"}`), "")

			Convey("Then the public user should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				user := decodeBody(rec)["user"].(map[string]any)
				So(user["_id"], ShouldEqual, "u1")
				So(user["role"], ShouldEqual, model.RoleAdmin)
			})
		})

		Convey("When logging in", func() {
			h.deps.loginRes = model.LoginResult{Token: "tok", User: model.User{ID: "u1", Email: "ann@x.io", Role: model.RoleAdmin}}
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"ann@x.io","password":"pw"}`), "")

			Convey("Then the token should be returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decodeBody(rec)["token"], ShouldEqual, "tok")
			})
		})

		Convey("When the password is wrong", func() {
			h.deps.loginErr = model.ErrInvalidCredentials
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"ann@x.io","password":"no"}`), "")
			So(rec.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When resetting a password", func() {
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/reset-password",
				`{"email":"ann@x.io","otp":"123456","newPassword":"n3w"}`), "")

			Convey("Then the service should receive all three fields", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(h.deps.resetArg, ShouldResemble, [3]string{"ann@x.io", "123456", "n3w"})
			})
		})

		Convey("When a reset is requested for an unknown email", func() {
			h.deps.otpErr = fmt.Errorf("user %w", model.ErrNotFound)
			rec := h.do(jsonRequest(http.MethodPost, "/api/auth/forgot-password", `{"email":"no@x.io"}`), "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

type readiness struct{ err error }

func (r readiness) Ready(context.Context) error { return r.err }

func TestHealthHandler_Readiness(t *testing.T) {
	Convey("Given a server whose service is not ready", t, func() {
		h := newHarness(api.WithReadiness(readiness{err: fmt.Errorf("database is locked")}))

		Convey("Then /api/health should report 503", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(strings.TrimSpace(rec.Body.String()), ShouldEqual, `{"ok":false}`)
		})
	})

	Convey("Given a ready service", t, func() {
		h := newHarness(api.WithReadiness(readiness{}))

		Convey("Then /api/health should report ok", func() {
			rec := h.do(httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
