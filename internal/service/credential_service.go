package service

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"
	"unicode"

	"paydocs-server/internal/apperr"
	"paydocs-server/internal/model"
	"paydocs-server/internal/ports"
	"paydocs-server/internal/security"
	"paydocs-server/internal/util"

	"github.com/google/uuid"
	"github.com/raulk/clock"
	"go.uber.org/zap"
)

type challengeService interface {
	IssueChallenge(username string) (string, time.Time, error)
	VerifyChallenge(challenge, username string) (string, time.Time, error)
}

// CredentialService : регистрация пользователей и проверка предъявленных учётных данных
type CredentialService struct {
	identities     ports.IdentityRepository
	challenges     challengeService
	usedChallenges ports.ChallengeRepository
	clock          clock.Clock
}

func NewCredentialService(
	identities ports.IdentityRepository,
	challenges challengeService,
	usedChallenges ports.ChallengeRepository,
	clk clock.Clock,
) *CredentialService {
	return &CredentialService{
		identities:     identities,
		challenges:     challenges,
		usedChallenges: usedChallenges,
		clock:          clk,
	}
}

// Register : ровно один из Password / PublicKey. Занятое имя -> conflict
func (s *CredentialService) Register(ctx context.Context, input model.RegisterInput) (*model.Identity, error) {
	if err := validateUsername(input.Username); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	credential, err := buildCredential(input)
	if err != nil {
		return nil, err
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	now := s.clock.Now().UTC()
	identity := &model.Identity{
		UUID:        uuid.NewString(),
		Username:    input.Username,
		DisplayName: displayName,
		Credential:  credential,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, ports.ErrAlreadyExists) {
			return nil, apperr.Conflict("пользователь с таким именем уже существует")
		}
		return nil, apperr.Internal("[CredentialService] ошибка создания пользователя", err)
	}

	zap.S().Infow("[CredentialService] зарегистрирован пользователь", "uuid", identity.UUID, "kind", credential.Kind)
	return identity, nil
}

// Verify : любая неудача (нет пользователя, другой тип данных, неверный пароль или подпись) -> bad_credentials
func (s *CredentialService) Verify(ctx context.Context, username string, presented model.Presentation) (*model.Identity, error) {
	identity, err := s.identities.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, apperr.Internal("[CredentialService] ошибка поиска пользователя", err)
	}

	if identity == nil || identity.Credential.Kind != presented.Kind {
		if presented.Kind == model.CredentialPassword {
			security.BurnPasswordCheck(presented.Password)
		}
		return nil, badCredentials()
	}

	switch presented.Kind {
	case model.CredentialPassword:
		if !security.CheckPassword(presented.Password, identity.Credential.PasswordHash) {
			return nil, badCredentials()
		}
	case model.CredentialPublicKey:
		nonce, expiresAt, err := s.challenges.VerifyChallenge(presented.Challenge, username)
		if err != nil {
			zap.S().Debugw("[CredentialService] невалидный вызов", "username", username, "error", err)
			return nil, badCredentials()
		}
		if !security.VerifySignature(identity.Credential.PublicKey, presented.Challenge, presented.Signature) {
			return nil, badCredentials()
		}
		// nonce тратится только после проверки подписи, чужой вызов без ключа не сжечь
		err = s.usedChallenges.ConsumeChallenge(ctx, nonce, expiresAt, s.clock.Now().UTC())
		if errors.Is(err, ports.ErrConflict) {
			zap.S().Warnw("[CredentialService] повторное использование вызова", "username", username)
			return nil, badCredentials()
		}
		if err != nil {
			return nil, apperr.Internal("[CredentialService] ошибка учёта вызова", err)
		}
	default:
		return nil, badCredentials()
	}

	return identity, nil
}

// RotateCredential : замена пароля на ключ и наоборот допускается
func (s *CredentialService) RotateCredential(ctx context.Context, identityUUID string, input model.RegisterInput) error {
	credential, err := buildCredential(input)
	if err != nil {
		return err
	}

	if err := s.identities.UpdateCredential(ctx, identityUUID, credential, s.clock.Now().UTC()); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("пользователь не найден")
		}
		return apperr.Internal("[CredentialService] ошибка обновления учётных данных", err)
	}
	return nil
}

// IssueChallenge : вызов выдаётся для любого имени, наличие пользователя не раскрывается
func (s *CredentialService) IssueChallenge(_ context.Context, username string) (string, time.Time, error) {
	if err := validateUsername(username); err != nil {
		return "", time.Time{}, apperr.Validation(err.Error())
	}
	challenge, expiresAt, err := s.challenges.IssueChallenge(username)
	if err != nil {
		return "", time.Time{}, apperr.Internal("[CredentialService] ошибка выдачи вызова", err)
	}
	return challenge, expiresAt, nil
}

// SeedAdmin : создаёт администратора при старте, если его ещё нет
func (s *CredentialService) SeedAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	_, err := s.identities.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return util.LogError("[CredentialService] ошибка поиска администратора", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	admin := &model.Identity{
		UUID:        uuid.NewString(),
		Username:    username,
		DisplayName: username,
		Credential:  model.PasswordCredential(hash),
		IsAdmin:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.identities.Create(ctx, admin); err != nil && !errors.Is(err, ports.ErrAlreadyExists) {
		return util.LogError("[CredentialService] ошибка создания администратора", err)
	}

	zap.S().Infow("[CredentialService] создан администратор", "username", username)
	return nil
}

func badCredentials() error {
	return apperr.Auth(apperr.ReasonBadCredentials, "неверное имя пользователя или учётные данные")
}

func buildCredential(input model.RegisterInput) (model.Credential, error) {
	hasPassword := input.Password != ""
	hasKey := len(input.PublicKey) > 0

	switch {
	case hasPassword && hasKey:
		return model.Credential{}, apperr.Validation("укажите либо пароль, либо открытый ключ")
	case hasPassword:
		if err := validatePassword(input.Password); err != nil {
			return model.Credential{}, apperr.Validation(err.Error())
		}
		hash, err := security.HashPassword(input.Password)
		if err != nil {
			return model.Credential{}, apperr.Internal("[CredentialService] ошибка хэширования пароля", err)
		}
		return model.PasswordCredential(hash), nil
	case hasKey:
		if len(input.PublicKey) != ed25519.PublicKeySize {
			return model.Credential{}, apperr.Validation(fmt.Sprintf("открытый ключ ed25519 должен быть длиной %d байт", ed25519.PublicKeySize))
		}
		return model.PublicKeyCredential(input.PublicKey), nil
	default:
		return model.Credential{}, apperr.Validation("не указаны учётные данные")
	}
}

func validateUsername(username string) error {
	length := len([]rune(username))
	if length < 3 || length > 32 {
		return fmt.Errorf("имя пользователя должно быть от 3 до 32 символов")
	}
	for _, c := range username {
		if c > unicode.MaxASCII || !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '-') {
			return fmt.Errorf("имя пользователя может содержать только латинские буквы, цифры, _ и -")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен содержать минимум 8 символов")
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return fmt.Errorf("пароль должен содержать буквы в разных регистрах")
	}
	if digitCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}
	if specialCount < 1 {
		return fmt.Errorf("пароль должен содержать хотя бы один специальный символ")
	}

	return nil
}
