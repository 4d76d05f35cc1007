package server

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
	apperrors "github.com/feliciofc-debug/amz-ofertas-site/internal/errors"
)

// Action selectors accepted by the WhatsApp endpoint. The Portuguese names are
// the wire contract with the affiliate dashboard.
const (
	actionStatus     = "status"
	actionClaim      = "criar-instancia"
	actionConnect    = "conectar"
	actionDisconnect = "desconectar"
	actionRelease    = "liberar"
	actionDiagnose   = "diagnostico"
)

type actionRequest struct {
	Action string `json:"action"`
}

// instanceSummary is the instance shape embedded in status responses.
type instanceSummary struct {
	Nome  string `json:"nome"`
	Token string `json:"token"`
}

// instanceDetail is the full instance shape returned by claims and diagnostics.
type instanceDetail struct {
	ID                uuid.UUID `json:"id"`
	Numero            int       `json:"numero"`
	Nome              string    `json:"nome"`
	Porta             int       `json:"porta"`
	Status            string    `json:"status"`
	TelefoneConectado *string   `json:"telefone_conectado,omitempty"`
}

func toInstanceDetail(inst *domain.Instance) *instanceDetail {
	if inst == nil {
		return nil
	}
	return &instanceDetail{
		ID:                inst.ID,
		Numero:            inst.Number,
		Nome:              inst.Name,
		Porta:             inst.Port,
		Status:            string(inst.Status),
		TelefoneConectado: inst.ConnectedPhone,
	}
}

func (s *Server) handleWhatsApp(c echo.Context) error {
	user, ok := c.Get("user").(domain.User)
	if !ok {
		return apperrors.InternalError("invalid user in context", nil)
	}

	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("Corpo da requisição inválido")
	}

	switch req.Action {
	case actionStatus:
		return s.handleStatus(c, user)
	case actionClaim:
		return s.handleClaim(c, user)
	case actionConnect:
		return s.handleConnect(c, user)
	case actionDisconnect:
		return s.handleDisconnect(c, user)
	case actionRelease:
		return s.handleRelease(c, user)
	case actionDiagnose:
		return s.handleDiagnose(c, user)
	default:
		return apperrors.ValidationError("Ação inválida").WithField("action", req.Action)
	}
}

func (s *Server) handleStatus(c echo.Context, user domain.User) error {
	result, err := s.app.Status(c.Request().Context(), user.ID)
	if err != nil {
		return apperrors.InternalError("failed to check instance status", err).
			WithField("user_id", user.ID.String())
	}

	resp := map[string]any{
		"success":     true,
		"hasInstance": result.HasInstance,
		"connected":   result.Connected,
	}
	if result.HasInstance {
		resp["instancia"] = instanceSummary{
			Nome:  result.Instance.Name,
			Token: result.Instance.Token,
		}
		if result.Phone != nil {
			resp["phone"] = *result.Phone
		}
		if result.CheckError != "" {
			resp["error"] = result.CheckError
		}
	}

	return c.JSON(200, resp)
}

func (s *Server) handleClaim(c echo.Context, user domain.User) error {
	result, err := s.app.Claim(c.Request().Context(), user.ID)
	if err != nil {
		return apperrors.InternalError("Erro ao alocar instância", err).
			WithField("user_id", user.ID.String())
	}

	if result.PoolExhausted {
		return c.JSON(200, map[string]any{
			"success": false,
			"error":   result.Message,
		})
	}

	return c.JSON(200, map[string]any{
		"success":   true,
		"message":   result.Message,
		"instancia": toInstanceDetail(result.Instance),
	})
}

func (s *Server) handleConnect(c echo.Context, user domain.User) error {
	result, err := s.app.Connect(c.Request().Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return c.JSON(200, map[string]any{
				"success": false,
				"error":   "Você não tem uma instância alocada",
			})
		}
		if resp, ok := upstreamFailure(err); ok {
			return c.JSON(200, resp)
		}
		return err
	}

	return c.JSON(200, map[string]any{
		"success": true,
		"qrCode":  result.QRCode,
		"message": result.Message,
	})
}

func (s *Server) handleDisconnect(c echo.Context, user domain.User) error {
	err := s.app.Disconnect(c.Request().Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return c.JSON(200, map[string]any{
				"success": false,
				"error":   "Instância não encontrada",
			})
		}
		if resp, ok := upstreamFailure(err); ok {
			return c.JSON(200, resp)
		}
		return err
	}

	return c.JSON(200, map[string]any{
		"success": true,
		"message": "WhatsApp desconectado com sucesso",
	})
}

func (s *Server) handleRelease(c echo.Context, user domain.User) error {
	err := s.app.Release(c.Request().Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return c.JSON(200, map[string]any{
				"success": false,
				"error":   "Instância não encontrada",
			})
		}
		return err
	}

	return c.JSON(200, map[string]any{
		"success": true,
		"message": "Instância liberada com sucesso",
	})
}

func (s *Server) handleDiagnose(c echo.Context, user domain.User) error {
	diag, err := s.app.Diagnostics(c.Request().Context(), user)
	if err != nil {
		return apperrors.InternalError("failed to assemble diagnostics", err).
			WithField("user_id", user.ID.String())
	}

	historico := make([]map[string]any, 0, len(diag.History))
	for _, entry := range diag.History {
		historico = append(historico, map[string]any{
			"instancia_id": entry.InstanceID,
			"data_inicio":  entry.StartedAt,
		})
	}

	resp := map[string]any{
		"success": true,
		"user": map[string]any{
			"id":    diag.User.ID,
			"email": diag.User.Email,
		},
		"instancia_atual":         toInstanceDetail(diag.Current),
		"instancias_disponiveis":  diag.AvailableCount,
		"primeira_disponivel":     toInstanceDetail(diag.FirstAvailable),
		"historico":               historico,
	}

	return c.JSON(200, resp)
}

// upstreamFailure converts a surfaced gateway error into the HTTP 200 business
// envelope the dashboard expects. Transport-level failure codes are reserved
// for auth and internal faults.
func upstreamFailure(err error) (map[string]any, bool) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Type != apperrors.TypeExternal {
		return nil, false
	}

	resp := map[string]any{
		"success": false,
		"error":   appErr.Message,
	}
	if appErr.Cause != nil {
		resp["details"] = appErr.Cause.Error()
	}
	return resp, true
}
