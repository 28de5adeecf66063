package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avlko/HBP-SchedulingService/internal/domain"
	availRepo "github.com/avlko/HBP-SchedulingService/internal/infra/storage/availability"
	"github.com/avlko/HBP-SchedulingService/internal/infra/storage/host"
	"github.com/avlko/HBP-SchedulingService/internal/scheduling"
	"github.com/avlko/HBP-SchedulingService/internal/service/availability/models"
)

// Окно выборки исключений по умолчанию, когда период не задан
const defaultExceptionWindowDays = 90

// Service сервис управления доступностью хоста: еженедельные правила
// и исключения по датам. Некорректные правила отклоняются здесь, при
// записи - путь чтения слотов считает хранимые данные корректными.
type Service struct {
	availRepo AvailabilityRepository
	hostRepo  HostRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	availRepo AvailabilityRepository,
	hostRepo HostRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		availRepo: availRepo,
		hostRepo:  hostRepo,
		txManager: txManager,
		logger:    logger,
	}
}

// GetAvailability получает настройки доступности хоста: правила и
// исключения за период (по умолчанию - ближайшие 90 дней)
func (s *Service) GetAvailability(ctx context.Context, req *models.GetAvailabilityRequest) (*models.AvailabilityResponse, error) {
	s.logger.Info("GetAvailability: fetching availability for host=%d", req.HostID)

	settings, err := s.getHostSettings(ctx, req.HostID)
	if err != nil {
		return nil, err
	}

	dateFrom, dateTo, err := resolveExceptionRange(req.DateFrom, req.DateTo)
	if err != nil {
		s.logger.Warn("GetAvailability: invalid date range for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rules, err := s.availRepo.GetRulesByHost(ctx, req.HostID)
	if err != nil {
		s.logger.Error("GetAvailability: repository error for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: GetAvailability - repository error: %v", ErrInternal, err)
	}

	exceptions, err := s.availRepo.GetExceptionsByHost(ctx, req.HostID, dateFrom, dateTo)
	if err != nil {
		s.logger.Error("GetAvailability: repository error for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: GetAvailability - repository error: %v", ErrInternal, err)
	}

	return &models.AvailabilityResponse{
		HostID:     req.HostID,
		Timezone:   settings.Timezone,
		Rules:      models.FromDomainRules(rules),
		Exceptions: models.FromDomainExceptions(exceptions),
	}, nil
}

// UpdateRules заменяет весь набор еженедельных правил хоста.
// Каждое правило валидируется до записи; набор заменяется атомарно.
func (s *Service) UpdateRules(ctx context.Context, req *models.UpdateRulesRequest) (*models.AvailabilityResponse, error) {
	s.logger.Info("UpdateRules: updating %d rules for host=%d by user=%d", len(req.Rules), req.HostID, req.UserID)

	if err := s.checkHostAccess(req.HostID, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.getHostSettings(ctx, req.HostID); err != nil {
		return nil, err
	}

	rules := make([]*domain.WeeklyAvailabilityRule, 0, len(req.Rules))
	for _, ruleReq := range req.Rules {
		rule, err := ruleReq.ToDomainRule(req.HostID)
		if err != nil {
			s.logger.Warn("UpdateRules: malformed rule for host=%d: %v", req.HostID, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		if err := scheduling.ValidateRule(rule); err != nil {
			s.logger.Warn("UpdateRules: invalid rule for host=%d: %v", req.HostID, err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		rules = append(rules, rule)
	}

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.availRepo.ReplaceRules(txCtx, req.HostID, rules)
	})
	if err != nil {
		s.logger.Error("UpdateRules: repository error for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: UpdateRules - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateRules: replaced rules for host=%d, count=%d", req.HostID, len(rules))
	return s.GetAvailability(ctx, &models.GetAvailabilityRequest{UserID: req.UserID, HostID: req.HostID})
}

// UpsertException создает или обновляет исключение на дату.
// Исключение полностью замещает еженедельные правила для своей даты.
func (s *Service) UpsertException(ctx context.Context, req *models.UpsertExceptionRequest) (*models.ExceptionResponse, error) {
	s.logger.Info("UpsertException: host=%d, date=%s, unavailable=%t by user=%d",
		req.HostID, req.Date, req.Unavailable, req.UserID)

	if err := s.checkHostAccess(req.HostID, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.getHostSettings(ctx, req.HostID); err != nil {
		return nil, err
	}

	exc, err := req.ToDomainException()
	if err != nil {
		s.logger.Warn("UpsertException: malformed exception for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if err := scheduling.ValidateException(exc); err != nil {
		s.logger.Warn("UpsertException: invalid exception for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	saved, err := s.availRepo.UpsertException(ctx, exc)
	if err != nil {
		s.logger.Error("UpsertException: repository error for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: UpsertException - repository error: %v", ErrInternal, err)
	}

	responses := models.FromDomainExceptions([]*domain.DateException{saved})
	return &responses[0], nil
}

// DeleteException удаляет исключение на дату - дата снова подчиняется
// еженедельным правилам
func (s *Service) DeleteException(ctx context.Context, hostID, userID int64, date string) error {
	s.logger.Info("DeleteException: host=%d, date=%s by user=%d", hostID, date, userID)

	if err := s.checkHostAccess(hostID, userID); err != nil {
		return err
	}

	parsed, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		s.logger.Warn("DeleteException: invalid date %q for host=%d", date, hostID)
		return fmt.Errorf("%w: invalid date %q", ErrInvalidInput, date)
	}

	if err := s.availRepo.DeleteException(ctx, hostID, parsed); err != nil {
		if errors.Is(err, availRepo.ErrExceptionNotFound) {
			s.logger.Warn("DeleteException: exception not found for host=%d, date=%s", hostID, date)
			return ErrExceptionNotFound
		}
		s.logger.Error("DeleteException: repository error for host=%d: %v", hostID, err)
		return fmt.Errorf("%w: DeleteException - repository error: %v", ErrInternal, err)
	}

	return nil
}

// getHostSettings получает настройки хоста с маппингом ошибок
func (s *Service) getHostSettings(ctx context.Context, hostID int64) (*domain.HostSettings, error) {
	settings, err := s.hostRepo.GetByID(ctx, hostID)
	if err != nil {
		if errors.Is(err, host.ErrHostNotFound) {
			s.logger.Warn("getHostSettings: host id=%d not found", hostID)
			return nil, ErrHostNotFound
		}
		s.logger.Error("getHostSettings: repository error for host=%d: %v", hostID, err)
		return nil, fmt.Errorf("%w: getHostSettings - repository error: %v", ErrInternal, err)
	}
	return settings, nil
}

// checkHostAccess проверяет, что настройки меняет сам хост
func (s *Service) checkHostAccess(hostID, userID int64) error {
	if hostID != userID {
		s.logger.Warn("checkHostAccess: user=%d is not host=%d", userID, hostID)
		return ErrAccessDenied
	}
	return nil
}

// resolveExceptionRange возвращает период выборки исключений
func resolveExceptionRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	dateFrom := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dateTo := dateFrom.AddDate(0, 0, defaultExceptionWindowDays)

	if fromStr != "" {
		parsed, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			return dateFrom, dateTo, fmt.Errorf("invalid dateFrom %q", fromStr)
		}
		dateFrom = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			return dateFrom, dateTo, fmt.Errorf("invalid dateTo %q", toStr)
		}
		dateTo = parsed
	}
	if dateTo.Before(dateFrom) {
		return dateFrom, dateTo, fmt.Errorf("dateTo is before dateFrom")
	}
	return dateFrom, dateTo, nil
}
