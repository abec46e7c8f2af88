package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"law_office_desk/models"
	"law_office_desk/services/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &resp), string(body))
	return resp.Message
}

func TestListCases(t *testing.T) {
	t.Run("Lawyer", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/api/cases", "", env.loginAs(t, lawyerID))
		require.Equal(t, http.StatusOK, rec.Code)

		cases, warning := decodeList[status.Annotated](t, rec)
		assert.Empty(t, warning)
		require.Len(t, cases, 1)
		assert.Equal(t, "0001", cases[0].Number)
		assert.Equal(t, status.Overdue, cases[0].Status)
		assert.Equal(t, -3, cases[0].DaysRemaining)
	})

	t.Run("Owner sees everything in display order", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/api/cases", "", env.loginAs(t, ownerID))
		require.Equal(t, http.StatusOK, rec.Code)

		cases, _ := decodeList[status.Annotated](t, rec)
		require.Len(t, cases, 4)
		var numbers []string
		for _, c := range cases {
			numbers = append(numbers, c.Number)
		}
		assert.Equal(t, []string{"0001", "0002", "0003", "0004"}, numbers)
		assert.Equal(t, status.Closed, cases[3].Status)
	})

	t.Run("Report filters", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/api/cases?cliente=AN&data_inicio=2026-09-30", "", env.loginAs(t, ownerID))
		require.Equal(t, http.StatusOK, rec.Code)

		cases, _ := decodeList[status.Annotated](t, rec)
		require.Len(t, cases, 1)
		assert.Equal(t, "Ana", cases[0].ClientName)
	})

	t.Run("Invalid filter", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodGet, "/api/cases?status=urgent", "", env.loginAs(t, ownerID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Store outage", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.setDown(true)
		rec := env.do(http.MethodGet, "/api/cases", "", env.loginAs(t, ownerID))
		require.Equal(t, http.StatusOK, rec.Code)

		cases, warning := decodeList[status.Annotated](t, rec)
		assert.Empty(t, cases)
		assert.Contains(t, warning, "Erro ao carregar dados (Processo)")
	})
}

func TestCreateCase(t *testing.T) {
	t.Run("Lawyer is pinned to own office", func(t *testing.T) {
		env := newTestEnv(t)
		cookie := env.loginAs(t, lawyerID)

		rec := env.do(http.MethodPost, "/api/cases", `{"numero":"0005","cliente":"Eva","descricao":"Ação de cobrança","area":"Cível","escritorio":"Sul"}`, cookie)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "Registro salvo com sucesso!")

		post := env.store.lastPost()
		assert.Equal(t, models.RecordTypeCase, post["tipo"])
		assert.Equal(t, "Centro", post["escritorio"])
		assert.Equal(t, "adv1", post["responsavel"])
		assert.Equal(t, "2026-10-16", post["prazo"])
		assert.Equal(t, "2026-10-16 12:00:00", post["data_cadastro"])

		rec = env.do(http.MethodGet, "/api/cases", "", cookie)
		cases, _ := decodeList[status.Annotated](t, rec)
		require.Len(t, cases, 2)
		assert.Equal(t, "0005", cases[1].Number)
		assert.Equal(t, status.DueSoon, cases[1].Status)
	})

	t.Run("Missing fields", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/api/cases", `{"numero":"0005"}`, env.loginAs(t, ownerID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Campos obrigatórios (*) não preenchidos!", errorMessage(t, rec.Body.Bytes()))
		assert.Zero(t, env.store.postCount())
	})

	t.Run("Area outside the lawyer's permissions", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/api/cases", `{"numero":"0006","cliente":"Eva","descricao":"Habeas corpus","area":"Criminal"}`, env.loginAs(t, lawyerID))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Zero(t, env.store.postCount())
	})

	t.Run("Store rejection is shown verbatim", func(t *testing.T) {
		env := newTestEnv(t)
		env.store.setReject("Planilha protegida")
		rec := env.do(http.MethodPost, "/api/cases", `{"numero":"0007","cliente":"Eva","descricao":"Ação","area":"Cível","escritorio":"Sul"}`, env.loginAs(t, ownerID))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Erro no envio (Processo): Planilha protegida", errorMessage(t, rec.Body.Bytes()))
	})

	t.Run("Owner chooses the office", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/api/cases", `{"numero":"0008","cliente":"Eva","descricao":"Ação","area":"Cível","escritorio":"Sul","prazo":"2026-11-30"}`, env.loginAs(t, ownerID))
		require.Equal(t, http.StatusCreated, rec.Code)
		post := env.store.lastPost()
		assert.Equal(t, "Sul", post["escritorio"])
		assert.Equal(t, "2026-11-30", post["prazo"])
		assert.Equal(t, "dono", post["responsavel"])
	})
}

func TestClients(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/clients", "", env.loginAs(t, lawyerID))
	require.Equal(t, http.StatusOK, rec.Code)
	clients, _ := decodeList[models.Client](t, rec)
	require.Len(t, clients, 1)
	assert.Equal(t, "Ana", clients[0].Name)

	manager := env.loginAs(t, managerID)
	rec = env.do(http.MethodPost, "/api/clients", `{"nome":"Fábio","email":"fabio@example.com","telefone":"1177","endereco":"Rua F","escritorio":"Sul"}`, manager)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := env.store.lastPost()
	assert.Equal(t, models.RecordTypeClient, post["tipo"])
	assert.Equal(t, "Centro", post["escritorio"])
	assert.Equal(t, "gestor1", post["responsavel"])
	assert.Equal(t, "2026-10-16 12:00:00", post["cadastro"])

	rec = env.do(http.MethodPost, "/api/clients", `{"nome":"Fábio"}`, manager)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOffices(t *testing.T) {
	env := newTestEnv(t)
	owner := env.loginAs(t, ownerID)

	rec := env.do(http.MethodGet, "/api/offices", "", env.loginAs(t, managerID))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/offices", "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	offices, _ := decodeList[models.Office](t, rec)
	require.Len(t, offices, 2)
	assert.Equal(t, models.AreaList{"Cível", "Criminal"}, offices[0].Areas)

	body := `{"nome":"Norte","endereco":"Rua N","telefone":"1122","email":"norte@example.com","cnpj":"00.000.000/0003-00",` +
		`"responsavel_tecnico":"Rita","telefone_tecnico":"1111","email_tecnico":"rita@example.com","area_atuacao":["Tributário"]}`
	rec = env.do(http.MethodPost, "/api/offices", body, owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := env.store.lastPost()
	assert.Equal(t, "Norte", post["nome"])
	assert.Equal(t, "Rita", post["responsavel_tecnico"])
	assert.Equal(t, "Tributário", post["area_atuacao"])

	rec = env.do(http.MethodPost, "/api/offices", `{"nome":"Leste"}`, owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmployees(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/employees", "", env.loginAs(t, managerID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "senha")
	assert.NotContains(t, rec.Body.String(), "adv123")

	employees, _ := decodeList[map[string]any](t, rec)
	require.Len(t, employees, 2)
	assert.Equal(t, "gestor1", employees[0]["usuario"])
	assert.Equal(t, "adv1", employees[1]["usuario"])
}

func TestCreateEmployee(t *testing.T) {
	const lawyerBody = `{"nome":"Nova","email":"nova@example.com","telefone":"9","usuario":"nova","senha":"nova123","papel":"Lawyer","escritorio":"Sul","area":["Cível","Criminal"]}`

	tests := []struct {
		name     string
		identity models.Identity
		body     string
		want     int
	}{
		{"Lawyer cannot register staff", lawyerID, lawyerBody, http.StatusForbidden},
		{"Manager cannot register managers", managerID, `{"nome":"G2","email":"g2@example.com","telefone":"9","usuario":"g2","senha":"x","papel":"manager"}`, http.StatusForbidden},
		{"Unknown role", ownerID, `{"nome":"X","email":"x@example.com","telefone":"9","usuario":"x","senha":"x","papel":"admin"}`, http.StatusBadRequest},
		{"Unknown area", ownerID, `{"nome":"X","email":"x@example.com","telefone":"9","usuario":"x","senha":"x","area":"Ambiental"}`, http.StatusBadRequest},
		{"Missing secret", ownerID, `{"nome":"X","email":"x@example.com","telefone":"9","usuario":"x"}`, http.StatusBadRequest},
		{"Owner registers a manager", ownerID, `{"nome":"G2","email":"g2@example.com","telefone":"9","usuario":"g2","senha":"x","papel":"manager","escritorio":"Sul"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodPost, "/api/employees", tt.body, env.loginAs(t, tt.identity))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	t.Run("Manager registers a lawyer in own office", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(http.MethodPost, "/api/employees", lawyerBody, env.loginAs(t, managerID))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		post := env.store.lastPost()
		assert.Equal(t, models.RecordTypeEmployee, post["tipo"])
		assert.Equal(t, "Centro", post["escritorio"])
		assert.Equal(t, "lawyer", post["papel"])
		assert.Equal(t, "Cível, Criminal", post["area"])
		assert.Equal(t, "gestor1", post["cadastrado_por"])
		assert.Equal(t, "nova123", post["senha"])

		var resp struct {
			Record map[string]any `json:"record"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "nova", resp.Record["usuario"])
		assert.NotContains(t, resp.Record, "senha")
		assert.NotContains(t, rec.Body.String(), "nova123")

		rec = env.do(http.MethodPost, "/login", loginForm("nova", "nova123"), nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})
}

func TestUpdateEmployeeAreas(t *testing.T) {
	t.Run("Owner updates areas and ends the employee's sessions", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.loginAs(t, ownerID)
		lawyer := env.loginAs(t, lawyerID)

		rec := env.do(http.MethodPut, "/api/employees/areas", `{"nome":"Advogada","area":["Criminal","Trabalhista"]}`, owner)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		post := env.store.lastPost()
		assert.Equal(t, true, post["atualizar"])
		assert.Equal(t, "Criminal, Trabalhista", post["area"])

		rec = env.do(http.MethodGet, "/api/cases", "", lawyer)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = env.do(http.MethodPost, "/login", loginForm("adv1", "adv123"), nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		rec = env.do(http.MethodGet, "/api/cases", "", sessionCookie(t, rec.Result()))
		cases, _ := decodeList[status.Annotated](t, rec)
		require.Len(t, cases, 2)
		assert.Equal(t, "0002", cases[0].Number)
		assert.Equal(t, "0004", cases[1].Number)

		rec = env.do(http.MethodGet, "/api/cases", "", owner)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	tests := []struct {
		name     string
		identity models.Identity
		body     string
		want     int
	}{
		{"Manager is forbidden", managerID, `{"nome":"Advogada","area":"Criminal"}`, http.StatusForbidden},
		{"Unknown employee", ownerID, `{"nome":"Fantasma","area":"Criminal"}`, http.StatusNotFound},
		{"Unknown area", ownerID, `{"nome":"Advogada","area":"Ambiental"}`, http.StatusBadRequest},
		{"Empty area list", ownerID, `{"nome":"Advogada","area":[]}`, http.StatusBadRequest},
		{"Missing name", ownerID, `{"area":"Criminal"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(http.MethodPut, "/api/employees/areas", tt.body, env.loginAs(t, tt.identity))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Zero(t, env.store.postCount())
		})
	}
}
