package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"law_office_desk/config"
	"law_office_desk/db"
	"law_office_desk/middleware"
	"law_office_desk/models"
	"law_office_desk/services"
	"law_office_desk/services/access"
	"law_office_desk/services/drafting"
	"law_office_desk/services/export"
	"law_office_desk/services/i18n"
	"law_office_desk/services/judicial"
	"law_office_desk/services/sheets"
	"law_office_desk/services/status"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

var (
	ownerID   = models.Identity{Username: "dono", Name: "Dono", Role: models.RoleOwner, Office: models.DefaultOffice, Areas: models.AreaList{models.AllAreas}}
	managerID = models.Identity{Username: "gestor1", Name: "Gestor", Role: models.RoleManager, Office: "Centro", Areas: models.AreaList{models.AllAreas}}
	lawyerID  = models.Identity{Username: "adv1", Name: "Advogada", Role: models.RoleLawyer, Office: "Centro", Areas: models.AreaList{models.AreaCivil}}
)

func TestMain(m *testing.M) {
	if err := i18n.Load(); err != nil {
		panic(err)
	}
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// fakeStore emulates the spreadsheet web app: GET ?tipo= lists rows, POST
// appends one (or updates areas when "atualizar" is set) and answers OK.
type fakeStore struct {
	mu      sync.Mutex
	records map[string][]map[string]any
	posts   []map[string]any
	reject  string
	down    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string][]map[string]any{
		models.RecordTypeCase: {
			{"numero": "0001", "cliente": "Ana", "area": "Cível", "escritorio": "Centro", "prazo": "2026-10-13", "responsavel": "adv1", "descricao": "Cobrança", "data_cadastro": "2026-10-01 09:00:00"},
			{"numero": "0002", "cliente": "Bruno", "area": "Criminal", "escritorio": "Centro", "prazo": "2026-10-20", "responsavel": "adv2", "descricao": "Defesa", "data_cadastro": "2026-10-05 10:00:00"},
			{"numero": "0003", "cliente": "Carla", "area": "Cível", "escritorio": "Sul", "prazo": "2026-12-31", "responsavel": "adv3", "descricao": "Inventário", "data_cadastro": "2026-09-10 08:00:00"},
			{"numero": "0004", "cliente": "Davi", "area": "Trabalhista", "escritorio": "Centro", "prazo": "2026-10-01", "encerrado": true, "responsavel": "adv1", "descricao": "Reclamação"},
		},
		models.RecordTypeClient: {
			{"nome": "Ana", "email": "ana@example.com", "telefone": "1199", "endereco": "Rua A", "escritorio": "Centro", "responsavel": "adv1", "cadastro": "2026-10-01 09:00:00"},
			{"nome": "Carla", "email": "carla@example.com", "telefone": "1188", "endereco": "Rua C", "escritorio": "Sul", "responsavel": "adv3"},
		},
		models.RecordTypeOffice: {
			{"nome": "Centro", "endereco": "Av. Central, 1", "telefone": "1133", "email": "centro@example.com", "cnpj": "00.000.000/0001-00", "area_atuacao": "Cível, Criminal"},
			{"nome": "Sul", "endereco": "Rua Sul, 2", "telefone": "1144", "email": "sul@example.com", "cnpj": "00.000.000/0002-00"},
		},
		models.RecordTypeEmployee: {
			{"nome": "Gestor", "usuario": "gestor1", "senha": "gestor123", "papel": "manager", "escritorio": "Centro", "email": "gestor@example.com", "telefone": "1"},
			{"nome": "Advogada", "usuario": "adv1", "senha": "adv123", "papel": "lawyer", "escritorio": "Centro", "area": "Cível", "email": "adv1@example.com", "telefone": "2"},
			{"nome": "Assistente", "usuario": "asst1", "senha": "asst123", "papel": "assistant", "escritorio": "Sul", "email": "asst1@example.com", "telefone": "3"},
		},
		models.RecordTypeDraft: {
			{"tipo_peticao": "Recurso", "data": "2026-10-02 14:00:00", "responsavel": "adv1", "escritorio": "Centro", "cliente_associado": "Ana", "numero": "0001", "conteudo": "Recurso de apelação"},
			{"tipo_peticao": "Memorial", "data": "2026-10-03 15:00:00", "responsavel": "adv3", "escritorio": "Sul", "cliente_associado": "Carla", "numero": "0003", "conteudo": "Memoriais"},
		},
	}}
}

func (s *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.down {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rows := s.records[r.URL.Query().Get("tipo")]
		if rows == nil {
			rows = []map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	case http.MethodPost:
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			io.WriteString(w, "invalid JSON")
			return
		}
		s.posts = append(s.posts, payload)
		if s.reject != "" {
			io.WriteString(w, s.reject)
			return
		}
		tipo, _ := payload["tipo"].(string)
		if update, _ := payload["atualizar"].(bool); update {
			for _, row := range s.records[tipo] {
				if row["nome"] == payload["nome"] {
					row["area"] = payload["area"]
				}
			}
		} else {
			s.records[tipo] = append(s.records[tipo], payload)
		}
		io.WriteString(w, "OK\n")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *fakeStore) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *fakeStore) setReject(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reject = body
}

func (s *fakeStore) lastPost() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.posts) == 0 {
		return nil
	}
	return s.posts[len(s.posts)-1]
}

func (s *fakeStore) postCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

type fakeCourt struct {
	movements []judicial.Movement
	err       error
	asked     string
}

func (f *fakeCourt) GetMovements(_ context.Context, caseNumber string) ([]judicial.Movement, error) {
	f.asked = caseNumber
	return f.movements, f.err
}

type fakePDF struct{}

func (fakePDF) Render(_ context.Context, title, body string) ([]byte, error) {
	return []byte("%PDF-1.4 " + title), nil
}

type testEnv struct {
	e       *echo.Echo
	h       *Handler
	store   *fakeStore
	court   *fakeCourt
	archive string

	// draftReply answers drafting API calls; replace it before issuing requests.
	draftReply http.HandlerFunc
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{store: newFakeStore(), court: &fakeCourt{}, archive: t.TempDir()}
	env.draftReply = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"EXCELENTÍSSIMO SENHOR DOUTOR JUIZ"}}]}`)
	}

	storeSrv := httptest.NewServer(env.store)
	t.Cleanup(storeSrv.Close)
	draftSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.draftReply(w, r)
	}))
	t.Cleanup(draftSrv.Close)

	database, err := db.Open("file:"+uuid.New().String()+"?mode=memory&cache=shared", "production")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database, &models.Session{}))
	t.Cleanup(func() { db.Close(database) })

	cfg := &config.Config{Environment: "test", SessionTTL: time.Hour, DefaultLocale: i18n.PortugueseBR}
	clock := func() time.Time { return testNow }
	store := sheets.New(sheets.Options{URL: storeSrv.URL, Timeout: 2 * time.Second, Now: clock})

	env.h = &Handler{
		Config: cfg,
		DB:     database,
		Store:  store,
		Access: access.NewService(store),
		Drafting: drafting.New(drafting.Options{
			APIKey:   "test-key",
			Endpoint: draftSrv.URL,
			Timeout:  2 * time.Second,
			Retry:    drafting.DefaultRetryPolicy(),
		}),
		Court:      env.court,
		Exporter:   export.New(fakePDF{}),
		Archive:    services.NewLocalArchive(env.archive),
		Classifier: &status.Classifier{Now: clock},
		Monitor:    services.NewLoginMonitor(),
	}

	env.e = echo.New()
	env.e.Use(middleware.Config(cfg), middleware.Locale())
	env.h.Register(env.e)
	return env
}

// loginAs opens a session for id and returns its cookie.
func (env *testEnv) loginAs(t *testing.T, id models.Identity) *http.Cookie {
	t.Helper()
	session, err := services.CreateSession(env.h.DB, id, time.Hour, "127.0.0.1", "test")
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookieName, Value: session.Token}
}

// do sends a request through the router. Bodies starting with "{" are sent as JSON,
// other non-empty bodies as a urlencoded form.
func (env *testEnv) do(method, target, body string, cookie *http.Cookie, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	switch {
	case strings.HasPrefix(body, "{"):
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	case body != "":
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// decodeList decodes a list response into records of type T.
func decodeList[T any](t *testing.T, rec *httptest.ResponseRecorder) ([]T, string) {
	t.Helper()
	var resp struct {
		Records []T    `json:"records"`
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp.Records, resp.Warning
}
