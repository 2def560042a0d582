package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccbar/ccbar/internal/model"
)

func testClient(url string) *Client {
	c := NewClient(url, 2*time.Second)
	c.MaxAttempts = 3
	c.BaseDelay = time.Millisecond
	return c
}

func TestFetchUsage_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != usagePath {
			t.Errorf("path = %q, want %q", r.URL.Path, usagePath)
		}
		w.Write([]byte(`{
			"five_hour": {"utilization": 42, "resets_at": "2026-08-30T15:00:00Z"},
			"seven_day": {"utilization": 88, "resets_at": "2026-09-03T00:00:00Z"},
			"seven_day_opus": {"utilization": 12, "resets_at": "2026-09-03T00:00:00Z"}
		}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).FetchUsage(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Short.Utilization != 42 || snap.Long.Utilization != 88 {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := snap.ByTier[model.TierOpus].Utilization; got != 12 {
		t.Errorf("opus utilization = %v, want 12", got)
	}
}

func TestFetchUsage_ClampsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"five_hour": {"utilization": 130}, "seven_day": {"utilization": -5}}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).FetchUsage(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Short.Utilization != 100 {
		t.Errorf("short = %v, want 100", snap.Short.Utilization)
	}
	if snap.Long.Utilization != 0 {
		t.Errorf("long = %v, want 0", snap.Long.Utilization)
	}
}

func TestFetchUsage_ErrorKinds(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuthRejected},
		{http.StatusForbidden, KindAuthRejected},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindServiceError},
		{http.StatusBadGateway, KindServiceError},
		{http.StatusNotFound, KindServiceError},
	}

	for _, c := range cases {
		t.Run(c.want.String(), func(t *testing.T) {
			var calls int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(c.status)
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).FetchUsage(context.Background(), "tok")
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error = %v, want *FetchError", err)
			}
			if fe.Kind != c.want {
				t.Errorf("kind = %v, want %v", fe.Kind, c.want)
			}
			if calls != 1 {
				t.Errorf("calls = %d, want 1 (non-transport failures must not retry)", calls)
			}
		})
	}
}

func TestFetchUsage_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchUsage(context.Background(), "tok")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != KindServiceError {
		t.Fatalf("error = %v, want service_error", err)
	}
}

func TestFetchUsage_RetriesTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections from the start

	client := testClient(srv.URL)
	_, err := client.FetchUsage(context.Background(), "tok")

	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != KindUnreachable {
		t.Fatalf("error = %v, want unreachable", err)
	}
}

func TestFetchUsage_RecoversOnRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Hijack and drop to force a transport-level failure.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("no hijacker")
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`{"five_hour": {"utilization": 10}, "seven_day": {"utilization": 20}}`))
	}))
	defer srv.Close()

	snap, err := testClient(srv.URL).FetchUsage(context.Background(), "tok")
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if snap.Short.Utilization != 10 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestFetchUsage_EmptyToken(t *testing.T) {
	_, err := testClient("http://localhost:1").FetchUsage(context.Background(), "")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != KindCredentialUnavailable {
		t.Fatalf("error = %v, want credential_unavailable", err)
	}
}
