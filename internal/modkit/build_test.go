package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "enrollgate/internal/platform/net/http"
	"enrollgate/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type ports struct{ n int }

func TestBuildDefaults(t *testing.T) {
	t.Parallel()
	b := Build(WithName("access"), WithPrefix("access/"), WithPorts(ports{n: 2}))
	if b.Name != "access" || b.Prefix != "/access" {
		t.Fatalf("built = %+v", b)
	}
	if p, ok := b.Ports.(ports); !ok || p.n != 2 {
		t.Fatalf("ports = %#v", b.Ports)
	}
	if b.Register == nil {
		t.Fatalf("register should default to a no-op")
	}
}

func TestBuildRequiresNameAndPrefix(t *testing.T) {
	t.Parallel()
	testkit.MustPanic(t, func() { Build(WithPrefix("/x")) })
	testkit.MustPanic(t, func() { Build(WithName("x"), WithPrefix("/")) })
}

func TestMountOrder(t *testing.T) {
	t.Parallel()
	var trail []string
	mw := func(tag string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, tag)
				next.ServeHTTP(w, r)
			})
		}
	}
	b := Build(
		WithName("m"),
		WithPrefix("/m"),
		WithMiddlewares(mw("a")),
		WithMiddlewares(mw("b")),
		WithRegister(func(r phttp.Router) {
			r.Get("/extra", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
		}),
	)

	mux := chi.NewRouter()
	b.Mount(phttp.AdaptChi(mux), func(r phttp.Router) {
		r.Get("/own", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	})

	for path, want := range map[string]int{"/m/own": http.StatusOK, "/m/extra": http.StatusAccepted, "/own": http.StatusNotFound} {
		trail = nil
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s = %d, want %d", path, rec.Code, want)
		}
		if want != http.StatusNotFound && (len(trail) != 2 || trail[0] != "a" || trail[1] != "b") {
			t.Fatalf("%s middleware trail = %v", path, trail)
		}
	}
}
