package judicial

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func casePage(rows int) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="tabelaUltimasMovimentacoes">`)
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, `<tr class="fundocinza1 containerMovimentacao">
			<td class="dataMovimentacao"> 0%d/10/2026 </td>
			<td class="descricaoMovimentacao">Movimento
				<span>%d</span></td></tr>`, i, i)
	}
	b.WriteString(`<tr class="fundoBranco"><td>ignorar</td></tr></table></body></html>`)
	return b.String()
}

func TestParseMovements(t *testing.T) {
	movements, err := ParseMovements([]byte(casePage(7)))
	require.NoError(t, err)
	require.Len(t, movements, MaxMovements)
	assert.Equal(t, "01/10/2026 Movimento 1", movements[0].Text)
	assert.Equal(t, "05/10/2026 Movimento 5", movements[4].Text)

	none, err := ParseMovements([]byte(`<html><body><p>Processo não encontrado</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEsajService_GetMovements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cpopg/show.do", r.URL.Path)
		assert.Equal(t, "1000123-45.2026.8.26.0100", r.URL.Query().Get("processo.codigo"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, casePage(2))
	}))
	defer server.Close()

	svc := NewEsajService(Options{BaseURL: server.URL})
	movements, err := svc.GetMovements(context.Background(), "1000123-45.2026.8.26.0100")
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestEsajService_Errors(t *testing.T) {
	t.Run("Error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewEsajService(Options{BaseURL: server.URL}).GetMovements(context.Background(), "1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("Timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		svc := NewEsajService(Options{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
		assert.Equal(t, []string{LookupFailedMessage}, RecentMovements(context.Background(), svc, "1"))
	})
}
