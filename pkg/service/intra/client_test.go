package intra_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/slotwatch/pkg/domain/types"
	"github.com/secmon-lab/slotwatch/pkg/service/intra"
)

const signInPage = `<html><body>
<form action="/users/sign_in" method="post">
<input type="hidden" name="authenticity_token" value="tok-123">
</form>
</body></html>`

func newSignInServer(t *testing.T, handlePost http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users/sign_in", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.SetCookie(w, &http.Cookie{Name: "_intra_session", Value: "s1"})
			fmt.Fprint(w, signInPage)
			return
		}
		handlePost(w, r)
	})
	return httptest.NewServer(mux)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the extracted token and form fields", func(t *testing.T) {
		var gotToken, gotLogin, gotPassword string
		srv := newSignInServer(t, func(w http.ResponseWriter, r *http.Request) {
			gt.NoError(t, r.ParseForm())
			gotToken = r.PostFormValue("authenticity_token")
			gotLogin = r.PostFormValue("user[login]")
			gotPassword = r.PostFormValue("user[password]")
			fmt.Fprint(w, `<html><body>welcome</body></html>`)
		})
		defer srv.Close()

		client, err := intra.New(ctx, "marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))
		gt.NoError(t, err).Required()
		gt.Value(t, client.Connected()).Equal(true)

		gt.Value(t, gotToken).Equal("tok-123")
		gt.Value(t, gotLogin).Equal("marvin")
		gt.Value(t, gotPassword).Equal("paranoid")

		login, password := client.Credentials()
		gt.Value(t, login).Equal("marvin")
		gt.Value(t, password).Equal("paranoid")
	})

	t.Run("rejected credentials carry the banner text and tag", func(t *testing.T) {
		srv := newSignInServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html><body><div class="alert-danger"> Invalid login or password. </div></body></html>`)
		})
		defer srv.Close()

		_, err := intra.New(ctx, "marvin", "wrong",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))
		gt.Error(t, err)
		gt.Value(t, goerr.HasTag(err, types.TagAuthRejected)).Equal(true)
		gt.Value(t, types.ExitCode(err)).Equal(types.ExitCodeAuthRejected)

		ge := goerr.Unwrap(err)
		gt.Value(t, ge).NotNil()
		gt.Value(t, ge.Values()["reason"]).Equal("Invalid login or password.")
	})

	t.Run("unreachable endpoint is a network error", func(t *testing.T) {
		srv := newSignInServer(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close() // connection refused from now on

		_, err := intra.New(ctx, "marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))
		gt.Error(t, err)
		gt.Value(t, goerr.HasTag(err, types.TagAuthNetwork)).Equal(true)
		gt.Value(t, types.ExitCode(err)).Equal(types.ExitCodeFatal)
	})

	t.Run("sign-in page without a token is an error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/users/sign_in", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html><body>maintenance</body></html>`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		_, err := intra.New(ctx, "marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))
		gt.Error(t, err)
		gt.Value(t, goerr.HasTag(err, types.TagAuthNetwork)).Equal(true)
	})
}

// flakyTransport fails a fixed number of round trips before delegating
type flakyTransport struct {
	failures int
	calls    int
	next     http.RoundTripper
}

func (x *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	x.calls++
	if x.calls <= x.failures {
		return nil, fmt.Errorf("injected network failure #%d", x.calls)
	}
	return x.next.RoundTrip(req)
}

func TestQuerySlots(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	newSlotsServer := func(t *testing.T, path string, handler http.HandlerFunc) *httptest.Server {
		t.Helper()
		mux := http.NewServeMux()
		mux.HandleFunc(path, handler)
		return httptest.NewServer(mux)
	}

	t.Run("returns parsed slots with date-bounded query", func(t *testing.T) {
		var gotStart, gotEnd string
		srv := newSlotsServer(t, "/projects/cpp_module1/slots.json", func(w http.ResponseWriter, r *http.Request) {
			gotStart = r.URL.Query().Get("start")
			gotEnd = r.URL.Query().Get("end")
			fmt.Fprint(w, `[{"id": 101, "start": "2024-03-01T10:00:00.000+01:00", "user": "someone"}]`)
		})
		defer srv.Close()

		client := intra.NewConnected("marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))

		slots, err := client.QuerySlots(ctx, "cpp_module1", start, end)
		gt.NoError(t, err).Required()
		gt.Array(t, slots).Length(1)
		gt.Value(t, slots[0].ID).Equal(types.SlotID("101"))
		gt.Value(t, slots[0].Start).Equal("2024-03-01T10:00:00.000+01:00")
		gt.Value(t, slots[0].Raw["user"]).Equal("someone")

		gt.Value(t, gotStart).Equal("2024-03-01")
		gt.Value(t, gotEnd).Equal("2024-03-08")
	})

	t.Run("debug project is rerouted to the profile endpoint", func(t *testing.T) {
		var gotPath string
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			fmt.Fprint(w, `[]`)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		client := intra.NewConnected("marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))

		_, err := client.QuerySlots(ctx, intra.DefaultDebugProject, start, end)
		gt.NoError(t, err).Required()
		gt.Value(t, gotPath).Equal("/profile/slots.json")
	})

	t.Run("404 means the project does not exist, not a failure", func(t *testing.T) {
		srv := newSlotsServer(t, "/projects/nope/slots.json", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error": "not found"}`)
		})
		defer srv.Close()

		client := intra.NewConnected("marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))

		slots, err := client.QuerySlots(ctx, "nope", start, end)
		gt.NoError(t, err).Required()
		gt.Array(t, slots).Length(0)
	})

	t.Run("403 means no access to corrections, not a failure", func(t *testing.T) {
		srv := newSlotsServer(t, "/projects/locked/slots.json", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": "forbidden"}`)
		})
		defer srv.Close()

		client := intra.NewConnected("marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"))

		slots, err := client.QuerySlots(ctx, "locked", start, end)
		gt.NoError(t, err).Required()
		gt.Array(t, slots).Length(0)
	})

	t.Run("succeeds after nine transient failures", func(t *testing.T) {
		srv := newSlotsServer(t, "/projects/cpp_module1/slots.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"id": 7, "start": "2024-03-01T10:00:00.000+01:00"}]`)
		})
		defer srv.Close()

		rt := &flakyTransport{failures: 9, next: http.DefaultTransport}
		client := intra.NewConnected("marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"),
			intra.WithHTTPClient(&http.Client{Transport: rt}),
			intra.WithRetryInterval(time.Millisecond))

		slots, err := client.QuerySlots(ctx, "cpp_module1", start, end)
		gt.NoError(t, err).Required()
		gt.Array(t, slots).Length(1)
		gt.Value(t, rt.calls).Equal(10)
	})

	t.Run("fails after ten consecutive failures", func(t *testing.T) {
		srv := newSlotsServer(t, "/projects/cpp_module1/slots.json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[]`)
		})
		defer srv.Close()

		rt := &flakyTransport{failures: 10, next: http.DefaultTransport}
		client := intra.NewConnected("marvin", "paranoid",
			intra.WithEndpoints(srv.URL+"/users/sign_in", srv.URL+"/projects", srv.URL+"/profile"),
			intra.WithHTTPClient(&http.Client{Transport: rt}),
			intra.WithRetryInterval(time.Millisecond))

		_, err := client.QuerySlots(ctx, "cpp_module1", start, end)
		gt.Error(t, err)
		gt.Value(t, goerr.HasTag(err, types.TagSlotQuery)).Equal(true)
		gt.Value(t, types.ExitCode(err)).Equal(types.ExitCodeFatal)
		gt.Value(t, rt.calls).Equal(10)
	})

	t.Run("query on an unauthenticated session is refused", func(t *testing.T) {
		client := intra.NewConnected("marvin", "paranoid")
		client.SetDisconnected()
		_, err := client.QuerySlots(ctx, "cpp_module1", start, end)
		gt.Error(t, err)
		gt.Value(t, goerr.HasTag(err, types.TagSlotQuery)).Equal(true)
	})
}
