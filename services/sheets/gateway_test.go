package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"law_office_desk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	g := New(Options{URL: srv.URL, Timeout: 2 * time.Second, Now: func() time.Time { return fixedNow }})
	return g, srv
}

func TestFetch_ReturnsRecords(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Processo", r.URL.Query().Get("tipo"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"numero":"0001","prazo":"2026-10-20"},{"numero":"0002"}]`)
	})

	records, err := g.Fetch(context.Background(), models.RecordTypeCase)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "0001", records[0]["numero"])
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    ErrorKind
		wantErr bool
	}{
		{name: "Object instead of array", status: 200, body: `{"error":"sheet not found"}`, want: MalformedResponse, wantErr: true},
		{name: "HTML page", status: 200, body: `<html>login</html>`, want: MalformedResponse, wantErr: true},
		{name: "Server error", status: 500, body: `boom`, want: Unreachable, wantErr: true},
		{name: "Not found", status: 404, body: `[]`, want: Unreachable, wantErr: true},
		{name: "Null body is empty", status: 200, body: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			records, err := g.Fetch(context.Background(), models.RecordTypeClient)
			assert.NotNil(t, records)
			assert.Empty(t, records)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.want), "got %v", err)
			assert.NotEmpty(t, Warning(err))
		})
	}
}

func TestFetch_UnreachableWhenServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := New(Options{URL: url, Timeout: time.Second})
	_, err := g.Fetch(context.Background(), models.RecordTypeCase)
	require.Error(t, err)
	assert.True(t, IsKind(err, Unreachable))
}

func TestFetch_TimesOut(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		io.WriteString(w, `[]`)
	})
	g.client.SetTimeout(50 * time.Millisecond)

	_, err := g.Fetch(context.Background(), models.RecordTypeCase)
	require.Error(t, err)
	assert.True(t, IsKind(err, Unreachable))
}

func TestFetch_CachesPerRecordType(t *testing.T) {
	var calls atomic.Int32
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `[{"nome":"Maria"}]`)
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := g.Fetch(ctx, models.RecordTypeClient)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err := g.Fetch(ctx, models.RecordTypeOffice)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	g.Invalidate(ctx, models.RecordTypeClient)
	_, err = g.Fetch(ctx, models.RecordTypeClient)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_CacheExpires(t *testing.T) {
	var calls atomic.Int32
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `[]`)
	})
	now := fixedNow
	mem := g.cache.(*MemoryCache)
	mem.now = func() time.Time { return now }

	ctx := context.Background()
	_, _ = g.Fetch(ctx, models.RecordTypeCase)
	now = now.Add(DefaultCacheTTL - time.Second)
	_, _ = g.Fetch(ctx, models.RecordTypeCase)
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(2 * time.Second)
	_, _ = g.Fetch(ctx, models.RecordTypeCase)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_DoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int32
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[{"nome":"Ana"}]`)
	})

	ctx := context.Background()
	_, err := g.Fetch(ctx, models.RecordTypeEmployee)
	require.Error(t, err)

	records, err := g.Fetch(ctx, models.RecordTypeEmployee)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFetch_ConcurrentMissesShareOneRequest(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		io.WriteString(w, `[]`)
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Fetch(context.Background(), models.RecordTypeCase)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestSubmit_LiteralOK(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "Exact OK", body: "OK"},
		{name: "OK with whitespace", body: "  OK\n"},
		{name: "Lowercase ok", body: "ok", wantErr: true},
		{name: "OK with suffix", body: "OK!", wantErr: true},
		{name: "Error message", body: "ERROR: planilha bloqueada", wantErr: true},
		{name: "Empty body", body: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				io.WriteString(w, tt.body)
			})

			err := g.Submit(context.Background(), models.RecordTypeClient, models.Client{Name: "Maria", Email: "m@x.com"})
			assert.Equal(t, "Cliente", got["tipo"])
			assert.Equal(t, "Maria", got["nome"])

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsKind(err, Rejected))
			assert.Contains(t, err.Error(), tt.body)

			var gerr *GatewayError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.body, gerr.Body)
		})
	}
}

func TestSubmit_MapPayloadKeepsCallerMap(t *testing.T) {
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK")
	})

	record := map[string]any{"nome": "Ana", "atualizar": true}
	require.NoError(t, g.Submit(context.Background(), models.RecordTypeEmployee, record))
	_, hasType := record["tipo"]
	assert.False(t, hasType)
}

func TestSubmit_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := New(Options{URL: url, Timeout: time.Second})
	err := g.Submit(context.Background(), models.RecordTypeCase, models.Case{Number: "1"})
	require.Error(t, err)
	assert.True(t, IsKind(err, Unreachable))
}

func TestFetch_CancelledCallerDoesNotFailOthers(t *testing.T) {
	var calls atomic.Int32
	g, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		io.WriteString(w, `[{"numero":"0001"}]`)
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	var wg sync.WaitGroup
	var errA, errB error
	var recordsB []Record
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errA = g.Fetch(ctxA, models.RecordTypeCase)
	}()
	time.Sleep(20 * time.Millisecond)
	go func() {
		defer wg.Done()
		recordsB, errB = g.Fetch(context.Background(), models.RecordTypeCase)
	}()
	time.Sleep(30 * time.Millisecond)
	cancelA()
	wg.Wait()

	require.Error(t, errA)
	assert.True(t, IsKind(errA, Unreachable))
	assert.ErrorIs(t, errA, context.Canceled)

	require.NoError(t, errB)
	assert.Len(t, recordsB, 1)

	_, err := g.Fetch(context.Background(), models.RecordTypeCase)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_NoCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	g := New(Options{URL: srv.URL, Timeout: time.Second, CacheTTL: NoCache})
	for i := 0; i < 3; i++ {
		_, err := g.Fetch(context.Background(), models.RecordTypeOffice)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}
