package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janonimox/actas-api/internal/application/acta"
	"github.com/janonimox/actas-api/internal/application/auth"
	"github.com/janonimox/actas-api/internal/application/dto"
	"github.com/janonimox/actas-api/internal/application/periodo"
	"github.com/janonimox/actas-api/internal/infrastructure/memory"
	"github.com/janonimox/actas-api/internal/infrastructure/pdf"
	"github.com/janonimox/actas-api/internal/infrastructure/storage"
	apphttp "github.com/janonimox/actas-api/internal/interfaces/http"
	"github.com/janonimox/actas-api/pkg/logger"
)

const (
	superID = "00000000-0000-0000-0000-0000000000aa"
	adminID = "00000000-0000-0000-0000-0000000000bb"
	otroID  = "00000000-0000-0000-0000-0000000000cc"
)

type testEnv struct {
	app    *fiber.App
	authUC *auth.AuthUseCase
	super  string
	admin  string
	otro   string
}

func newEnv(t *testing.T, today time.Time) testEnv {
	t.Helper()
	store := memory.NewStore()
	now := func() time.Time { return today }

	sig, err := storage.NewLocal(filepath.Join(t.TempDir(), "firmas"), 1<<20)
	require.NoError(t, err)

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:    authUC,
		PeriodUC:  periodo.NewPeriodUseCase(store.Periods(), store, now),
		ActaUC:    acta.NewActaUseCase(store.Actas(), store, sig, pdf.NewActaPDFGenerator(sig), now),
		JWTSecret: testJWTSecret,
		Logger:    logger.Nop(),
	})
	return testEnv{
		app:    app,
		authUC: authUC,
		super:  tokenFor(t, superID, "Departamento de Salud Coquimbo", "superusuario"),
		admin:  tokenFor(t, adminID, "CESFAM Tongoy", "administrativo"),
		otro:   tokenFor(t, otroID, "CESFAM San Juan", "administrativo"),
	}
}

func (e testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func actaBody() map[string]any {
	return map[string]any{
		"numero_correlativo": "2025-031",
		"fecha_acta":         "2025-07-10",
		"nombres":            "maría josé",
		"apellidos":          "ROJAS PIZARRO",
		"rut":                "12.345.678-5",
		"fecha_nacimiento":   "1990-03-14",
		"lugar_nacimiento":   "Coquimbo",
		"direccion":          "Av. Costanera 123",
		"telefono":           "+56 9 1234 5678",
		"email":              "mrojas@example.cl",
		"estado_civil":       "Soltero/a",
		"nacionalidad":       "Chilena",
		"categoria":          "C",
		"tipo_contrato":      "Plazo Fijo",
		"fecha_inicio":       "2025-07-01",
		"fecha_termino":      "2025-12-31",
		"lugar_trabajo":      "CESFAM Tongoy",
		"cargo":              "TENS",
		"jornada":            "44 horas",
		"salud":              "FONASA",
		"afp":                "AFP Modelo",
		"nombre_encargado":   "Ana Díaz",
		"cargo_encargado":    "Directora",
	}
}

func periodBody(mes, corte int) map[string]any {
	return map[string]any{
		"anio":         2025,
		"mes":          mes,
		"fecha_inicio": time.Date(2025, time.Month(mes), 1, 0, 0, 0, 0, time.UTC).Format(dto.DateLayout),
		"fecha_corte":  time.Date(2025, time.Month(mes), corte, 0, 0, 0, 0, time.UTC).Format(dto.DateLayout),
	}
}

func TestSinPeriodoActivo_AccionSegunRol(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))

	resp, raw := e.do(t, http.MethodPost, "/api/actas", e.admin, actaBody())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeError(t, raw)
	assert.Equal(t, "NO_ACTIVE_PERIOD", body.Code)
	assert.Equal(t, apphttp.AccionSoloLectura, body.Accion)

	resp, raw = e.do(t, http.MethodGet, "/api/periodos/vigente", e.super, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apphttp.AccionCrearPeriodo, decodeError(t, raw).Accion)
}

func TestPeriodos_SoloSuperusuario(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))

	resp, raw := e.do(t, http.MethodPost, "/api/periodos", e.admin, periodBody(7, 20))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)

	resp, _ = e.do(t, http.MethodGet, "/api/periodos", e.admin, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPeriodos_CrearDuplicarYEstado(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))

	resp, raw := e.do(t, http.MethodPost, "/api/periodos", e.super, periodBody(7, 20))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var created dto.PeriodResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	assert.Equal(t, "Julio 2025", created.Label)
	assert.True(t, created.Active)

	resp, raw = e.do(t, http.MethodPost, "/api/periodos", e.super, periodBody(7, 25))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_PERIOD", decodeError(t, raw).Code)

	resp, raw = e.do(t, http.MethodPatch, "/api/periodos/"+created.ID+"/estado", e.super, map[string]string{"estado": "pausado"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", decodeError(t, raw).Code)

	resp, raw = e.do(t, http.MethodPatch, "/api/periodos/no-existe/estado", e.super, map[string]string{"estado": "cerrado"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)

	resp, raw = e.do(t, http.MethodPatch, "/api/periodos/"+created.ID+"/estado", e.super, map[string]string{"estado": "cerrado"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = e.do(t, http.MethodGet, "/api/periodos/vigente", e.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var vigente dto.ResolvedPeriodResponse
	require.NoError(t, json.Unmarshal(raw, &vigente))
	assert.True(t, vigente.RolledForward)
	assert.Equal(t, "Agosto 2025", vigente.Period.Label)
	assert.NotEmpty(t, vigente.Notice)
}

func TestPeriodos_ActivoVacioDevuelve204(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
	resp, _ := e.do(t, http.MethodGet, "/api/periodos/activo", e.super, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func createActa(t *testing.T, e testEnv) dto.CreateActaResponse {
	t.Helper()
	resp, raw := e.do(t, http.MethodPost, "/api/periodos", e.super, periodBody(7, 20))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	resp, raw = e.do(t, http.MethodPost, "/api/actas", e.admin, actaBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var out dto.CreateActaResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestActas_CrearYAcceso(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
	created := createActa(t, e)

	assert.Equal(t, "Julio 2025", created.Acta.PeriodLabel)
	assert.Equal(t, "borrador", created.Acta.Status)
	assert.Equal(t, "María José", created.Acta.FirstNames)
	assert.False(t, created.RolledForward)

	resp, raw := e.do(t, http.MethodGet, "/api/actas/"+created.Acta.ID, e.otro, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)

	resp, raw = e.do(t, http.MethodGet, "/api/actas/no-existe", e.otro, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)

	resp, _ = e.do(t, http.MethodGet, "/api/actas/"+created.Acta.ID, e.super, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, "/api/actas", e.otro, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ActaListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Zero(t, list.Page.Total)
}

func TestActas_ValidacionPorCampo(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
	body := actaBody()
	body["rut"] = "12.345.678-9"
	body["afp"] = "AFP Inventada"
	body["fecha_termino"] = "31/12/2025"

	resp, raw := e.do(t, http.MethodPost, "/api/actas", e.admin, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	er := decodeError(t, raw)
	assert.Equal(t, "VALIDATION", er.Code)
	assert.Contains(t, er.Fields, "rut")
	assert.Contains(t, er.Fields, "afp")
	assert.Contains(t, er.Fields, "fecha_termino")
}

func TestActas_ReglasDeContrato(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
	resp, _ := e.do(t, http.MethodPost, "/api/periodos", e.super, periodBody(7, 20))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := actaBody()
	body["tipo_contrato"] = "Reemplazo"
	resp, raw := e.do(t, http.MethodPost, "/api/actas", e.admin, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	er := decodeError(t, raw)
	assert.Equal(t, "VALIDATION", er.Code)
	assert.Contains(t, er.Message, "reemplazado")
}

func TestActas_EnvioFisicoYCierre(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
	created := createActa(t, e)
	id := created.Acta.ID

	resp, raw := e.do(t, http.MethodPut, "/api/actas/"+id+"/envio-fisico", e.admin, map[string]string{"fecha_envio": "2025-07-12"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var sent dto.ActaResponse
	require.NoError(t, json.Unmarshal(raw, &sent))
	assert.Equal(t, "enviado", sent.Status)
	assert.Equal(t, "2025-07-12", sent.MailedAt)

	resp, _ = e.do(t, http.MethodPost, "/api/actas/"+id+"/cerrar", e.admin, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/actas/"+id+"/cerrar", e.super, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = e.do(t, http.MethodPut, "/api/actas/"+id+"/correlativo", e.admin, map[string]string{"numero_correlativo": "2025-099"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decodeError(t, raw).Code)
}

func TestActas_FirmaYPDF(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
	created := createActa(t, e)
	id := created.Acta.ID

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("firma", "firma.png")
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/actas/"+id+"/firma", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", e.admin)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var withSig dto.ActaResponse
	require.NoError(t, json.Unmarshal(raw, &withSig))
	assert.Contains(t, withSig.SignaturePath, "firmas/")

	resp, raw = e.do(t, http.MethodGet, "/api/actas/"+id+"/pdf", e.otro, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))
}

func TestActas_PDFSinFirma(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))
	created := createActa(t, e)

	resp, raw := e.do(t, http.MethodGet, "/api/actas/"+created.Acta.ID+"/pdf", e.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "acta-2025-031.pdf")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestLoginYCrearUsuario(t *testing.T) {
	e := newEnv(t, time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC))

	resp, raw := e.do(t, http.MethodPost, "/api/usuarios", e.super, map[string]string{
		"username": "mrojas", "password": "clave-segura", "cesfam": "CESFAM Tongoy",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = e.do(t, http.MethodPost, "/api/usuarios", e.super, map[string]string{
		"username": "mrojas", "password": "otra-clave-1", "cesfam": "CESFAM Tongoy",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "USERNAME_EXISTS", decodeError(t, raw).Code)

	resp, _ = e.do(t, http.MethodPost, "/api/usuarios", e.admin, map[string]string{
		"username": "otro", "password": "clave-segura", "cesfam": "CESFAM Tongoy",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = e.do(t, http.MethodGet, "/api/usuarios", e.super, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users dto.UserListResponse
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users.Items, 1)
	assert.Equal(t, "mrojas", users.Items[0].Username)
	assert.Equal(t, 20, users.Limit)

	resp, raw = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "mrojas", "password": "clave-segura"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "administrativo", login.User.Role)

	resp, raw = e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "mrojas", "password": "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, raw).Code)
}

func TestHealth(t *testing.T) {
	e := newEnv(t, time.Now())
	resp, _ := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
