package app

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
	apperrors "github.com/feliciofc-debug/amz-ofertas-site/internal/errors"
	"github.com/feliciofc-debug/amz-ofertas-site/internal/metrics"
)

// qrSettleDelay gives the bridge time to tear down a prior session before a
// fresh QR code is requested. A settling wait, not a retry.
const qrSettleDelay = 1 * time.Second

// Service is the application layer — the only component that references
// multiple domain components. It orchestrates all use cases.
//
// Gateway failure policy, per operation:
//
//	status check        swallowed — reported as "not connected"
//	logout (connect)    swallowed — a prior session may not exist
//	qr image            surfaced  — carries the upstream status
//	logout (disconnect) surfaced
//	logout (release)    swallowed — the seat is being freed regardless
type Service struct {
	instances  domain.InstanceRepository
	history    domain.HistoryRepository
	gateway    domain.GatewayClient
	clock      clockwork.Clock
	claimGroup singleflight.Group
}

// NewService creates the application layer service.
func NewService(instances domain.InstanceRepository, history domain.HistoryRepository, gateway domain.GatewayClient, clock clockwork.Clock) *Service {
	return &Service{
		instances: instances,
		history:   history,
		gateway:   gateway,
		clock:     clock,
	}
}

// Status reports whether the caller owns an instance and whether its WhatsApp
// session is connected. The gateway is never called when the caller owns
// nothing, and a gateway failure degrades to "not connected" instead of
// propagating.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*domain.StatusResult, error) {
	inst, err := s.instances.GetByOwner(ctx, userID)
	if errors.Is(err, domain.ErrInstanceNotFound) {
		return &domain.StatusResult{HasInstance: false, Connected: false}, nil
	}
	if err != nil {
		return nil, err
	}

	status, err := s.gateway.Status(ctx, inst.Token)
	if err != nil {
		slog.Warn("Gateway status check failed", "instance_number", inst.Number, "error", err)
		return &domain.StatusResult{
			HasInstance: true,
			Connected:   false,
			Instance:    inst,
			CheckError:  "Erro ao verificar status",
		}, nil
	}

	// Cache the reported phone on the row, best-effort
	if err := s.instances.SetConnectedPhone(ctx, inst.ID, status.Phone); err != nil {
		slog.Warn("Failed to cache connected phone", "instance_number", inst.Number, "error", err)
	}

	return &domain.StatusResult{
		HasInstance: true,
		Connected:   status.Connected,
		Phone:       status.Phone,
		Instance:    inst,
	}, nil
}

// Claim binds a free instance to the caller. Idempotent: a caller that already
// owns an instance gets it back unchanged, with no new history entry. When the
// pool is empty the result says so — that is a business outcome, not an error.
func (s *Service) Claim(ctx context.Context, userID uuid.UUID) (*domain.ClaimResult, error) {
	// Collapse concurrent claims by the same user; the conditional update in
	// the repository already protects distinct users racing for one row.
	result, err, _ := s.claimGroup.Do(userID.String(), func() (any, error) {
		return s.claim(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.ClaimResult), nil
}

func (s *Service) claim(ctx context.Context, userID uuid.UUID) (*domain.ClaimResult, error) {
	existing, err := s.instances.GetByOwner(ctx, userID)
	if err == nil {
		metrics.ClaimsTotal.WithLabelValues("already_allocated").Inc()
		return &domain.ClaimResult{
			Instance:         existing,
			AlreadyAllocated: true,
			Message:          "Instância já alocada",
		}, nil
	}
	if !errors.Is(err, domain.ErrInstanceNotFound) {
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	now := s.clock.Now().UTC()
	inst, err := s.instances.Claim(ctx, userID, now)
	if errors.Is(err, domain.ErrPoolExhausted) {
		metrics.ClaimsTotal.WithLabelValues("exhausted").Inc()
		slog.Info("Instance pool exhausted", "user_id", userID.String())
		return &domain.ClaimResult{
			PoolExhausted: true,
			Message:       "Todas as instâncias estão em uso. Tente novamente em alguns minutos.",
		}, nil
	}
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	// The audit log is best-effort; a failed insert must not roll back the claim.
	if err := s.history.Create(ctx, inst.ID, userID, now); err != nil {
		slog.Error("Failed to record allocation history", "instance_number", inst.Number, "user_id", userID.String(), "error", err)
	}

	metrics.ClaimsTotal.WithLabelValues("allocated").Inc()
	slog.Info("Instance allocated", "instance_number", inst.Number, "user_id", userID.String())

	return &domain.ClaimResult{
		Instance: inst,
		Message:  "Instância alocada com sucesso!",
	}, nil
}

// Connect generates a fresh pairing QR code for the caller's instance. Any
// existing session is logged out first (failure ignored), the bridge is given
// a moment to settle, then the QR image is fetched and base64-encoded.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID) (*domain.ConnectResult, error) {
	inst, err := s.instances.GetByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.Logout(ctx, inst.Token); err != nil {
		slog.Debug("Pre-connect logout failed (expected when no session exists)", "instance_number", inst.Number, "error", err)
	}

	select {
	case <-s.clock.After(qrSettleDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	qr, err := s.gateway.QRImage(ctx, inst.Token)
	if err != nil {
		return nil, apperrors.ExternalError("Erro ao conectar com servidor WhatsApp", err)
	}

	slog.Info("QR code generated", "instance_number", inst.Number, "user_id", userID.String(), "size", len(qr))

	return &domain.ConnectResult{
		QRCode:  base64.StdEncoding.EncodeToString(qr),
		Message: "Escaneie o QR Code com o WhatsApp",
	}, nil
}

// Disconnect logs the caller's WhatsApp session out and clears the cached
// phone number. Ownership is retained: the affiliate keeps the seat and can
// re-pair later. Logout failures are surfaced, unlike in Connect.
func (s *Service) Disconnect(ctx context.Context, userID uuid.UUID) error {
	inst, err := s.instances.GetByOwner(ctx, userID)
	if err != nil {
		return err
	}

	logoutErr := s.gateway.Logout(ctx, inst.Token)

	if err := s.instances.SetConnectedPhone(ctx, inst.ID, nil); err != nil {
		slog.Error("Failed to clear connected phone", "instance_number", inst.Number, "error", err)
	}

	if logoutErr != nil {
		return apperrors.ExternalError("Erro ao desconectar", logoutErr)
	}

	slog.Info("WhatsApp session disconnected", "instance_number", inst.Number, "user_id", userID.String())
	return nil
}

// Release returns the caller's instance to the pool. The gateway logout is
// best-effort — the seat is freed regardless of what the bridge says.
func (s *Service) Release(ctx context.Context, userID uuid.UUID) error {
	inst, err := s.instances.GetByOwner(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.gateway.Logout(ctx, inst.Token); err != nil {
		slog.Warn("Logout before release failed", "instance_number", inst.Number, "error", err)
	}

	if _, err := s.instances.Release(ctx, userID); err != nil {
		return err
	}

	metrics.ReleasesTotal.Inc()
	slog.Info("Instance released", "instance_number", inst.Number, "user_id", userID.String())
	return nil
}

// Diagnostics assembles a read-only snapshot of the pool from the caller's
// point of view: current instance, free capacity, and allocation history.
func (s *Service) Diagnostics(ctx context.Context, user domain.User) (*domain.Diagnostics, error) {
	diag := &domain.Diagnostics{User: user}

	current, err := s.instances.GetByOwner(ctx, user.ID)
	if err != nil && !errors.Is(err, domain.ErrInstanceNotFound) {
		return nil, err
	}
	diag.Current = current

	count, err := s.instances.CountAvailable(ctx)
	if err != nil {
		return nil, err
	}
	diag.AvailableCount = count

	first, err := s.instances.FirstAvailable(ctx)
	if err != nil && !errors.Is(err, domain.ErrInstanceNotFound) {
		return nil, err
	}
	diag.FirstAvailable = first

	history, err := s.history.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	diag.History = history

	return diag, nil
}
