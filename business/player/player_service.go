package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"playerEngagement/domain"
	redisrepo "playerEngagement/internal/repository/redis"
	"playerEngagement/pkg/cache"
	"playerEngagement/pkg/config"
	"playerEngagement/pkg/logger"
	"playerEngagement/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
	"gorm.io/gorm"
)

// PlayerRepository contract interface
type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	FindByID(ctx context.Context, id uint) (domain.Player, error)
	FindByEmail(ctx context.Context, email string) (domain.Player, error)
	Update(ctx context.Context, player *domain.Player) error
	UpdateEmailVerification(ctx context.Context, id uint, isVerified bool) error
	UpdateSegment(ctx context.Context, id uint, segment domain.Segment) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

// TokenStore mirrors issued JWTs in redis so sessions can be revoked.
type TokenStore interface {
	StoreToken(ctx context.Context, playerID, token string, data redisrepo.TokenData, ttl time.Duration) error
	ValidateToken(ctx context.Context, token string) (string, error)
	DeleteToken(ctx context.Context, playerID, token string) error
}

type playerService struct {
	playerRepo              PlayerRepository
	validate                *validator.Validate
	notifRepo               NotificationRepository
	tokens                  TokenStore
	cache                   *cache.Aside
	playerTTL               time.Duration
	appEmailVerificationKey string
	appDeploymentUrl        string
}

const (
	verificationCodeTTL      = 5
	SubjectRegisterAccount   = "Activate Your Account!"
	EmailBodyRegisterAccount = `Hello %v, activate your account by opening the link below</br></br>%v</br>note: the link is only valid for %v minutes`
)

func NewPlayerService(
	playerRepo PlayerRepository,
	validate *validator.Validate,
	notifRepo NotificationRepository,
	tokens TokenStore,
	aside *cache.Aside,
	cacheCfg config.CacheConfig,
	appEmailVerificationKey string,
	appDeploymentUrl string,
) *playerService {
	return &playerService{
		playerRepo:              playerRepo,
		validate:                validate,
		notifRepo:               notifRepo,
		tokens:                  tokens,
		cache:                   aside,
		playerTTL:               cacheCfg.PlayerTTL,
		appEmailVerificationKey: appEmailVerificationKey,
		appDeploymentUrl:        appDeploymentUrl,
	}
}

const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

var validRoles = map[string]bool{
	RolePlayer: true,
	RoleAdmin:  true,
}

func (s *playerService) Register(ctx context.Context, player *domain.Player) (domain.Player, error) {
	if err := s.validate.Var(player.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.Player{}, errors.New("invalid email format")
	}

	if err := s.validate.Var(player.Password, "required,min=6"); err != nil {
		logger.Error("Invalid player password", err)
		return domain.Player{}, errors.New("password must be at least 6 characters")
	}

	// Check if email already exists
	existingPlayer, err := s.playerRepo.FindByEmail(ctx, player.Email)
	if err == nil && existingPlayer.ID > 0 {
		logger.Error("Email already exists")
		return domain.Player{}, errors.New("email already exists")
	}

	passwordHash, err := utils.HashPassword(player.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.Player{}, errors.New("failed to hash password")
	}

	newPlayer := domain.Player{
		FullName:   player.FullName,
		Email:      player.Email,
		Password:   string(passwordHash),
		IsVerified: false,
		Role:       RolePlayer,
		Segment:    domain.SegmentNew,
	}

	if err := s.playerRepo.Create(ctx, &newPlayer); err != nil {
		logger.Error("Failed to create new player")
		return domain.Player{}, err
	}

	timeNow := time.Now()
	expAt := timeNow.Add(time.Duration(time.Minute * verificationCodeTTL)).Unix()

	verificationCode := fmt.Sprintf("%v|%v", newPlayer.Email, expAt)
	verificationCodeEncrypt, err := goshortcute.AESCBCEncrypt([]byte(verificationCode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Fatal("error when encrypt")
	}
	strEncode := goshortcute.StringtoBase64Encode(verificationCodeEncrypt)
	activationLink := s.appDeploymentUrl + "/api/v1/players/email-verification/" + strEncode

	err = s.notifRepo.SendEmail(newPlayer.FullName, newPlayer.Email, SubjectRegisterAccount, fmt.Sprintf(EmailBodyRegisterAccount, newPlayer.FullName, activationLink, verificationCodeTTL))
	if err != nil {
		logger.Warn("Failed to send verification email", err)
	}

	newPlayer.Password = ""
	return newPlayer, nil
}

func (s *playerService) Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.Player, error) {
	player, err := s.playerRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid player credentials", err)
		return "", domain.Player{}, err
	}

	ok := utils.CheckPassword(password, player.Password)
	if !ok {
		logger.Error("Player password incorrect")
		return "", domain.Player{}, errors.New("incorrect password")
	}

	if !player.IsVerified {
		logger.Error("Email address has not been verified")
		return "", domain.Player{}, errors.New("email address has not been verified")
	}

	playerIdStr := strconv.FormatUint(uint64(player.ID), 10)
	token, err := utils.GenerateJWT(playerIdStr, player.Role)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return "", domain.Player{}, errors.New("failed to generate token")
	}

	now := time.Now()
	err = s.tokens.StoreToken(ctx, playerIdStr, token, redisrepo.TokenData{
		PlayerID:  playerIdStr,
		Role:      player.Role,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(utils.TokenTTL()),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}, utils.TokenTTL())
	if err != nil {
		logger.Error("Failed to store session token", err)
		return "", domain.Player{}, errors.New("failed to store session token")
	}

	player.Password = ""
	return token, player, nil
}

// Logout drops the redis token mirror; the JWT itself stays valid until its
// expiry but no longer passes the session check.
func (s *playerService) Logout(ctx context.Context, playerID uint, token string) error {
	playerIdStr := strconv.FormatUint(uint64(playerID), 10)
	if err := s.tokens.DeleteToken(ctx, playerIdStr, token); err != nil {
		logger.Error("Failed to delete session token", err)
		return errors.New("failed to logout")
	}

	return nil
}

// ValidateSession checks the redis mirror for a token and returns the
// player ID it was issued to.
func (s *playerService) ValidateSession(ctx context.Context, token string) (string, error) {
	return s.tokens.ValidateToken(ctx, token)
}

func (s *playerService) VerifyEmail(ctx context.Context, verificationCodeEncrypt string) error {
	strDecode := goshortcute.StringtoBase64Decode(verificationCodeEncrypt)
	verificationCodeDecrypt, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(s.appEmailVerificationKey))
	if err != nil {
		logger.Error("Verifying email error", err)
		return errors.New("invalid or expired url")
	}

	verificationCode := strings.Split(verificationCodeDecrypt, "|")
	if len(verificationCode) != 2 {
		logger.Error("Verifying email error", "code", verificationCodeDecrypt)
		return errors.New("invalid or expired url")
	}

	email := verificationCode[0]
	expAtStr := verificationCode[1]

	ts, err := strconv.ParseInt(expAtStr, 10, 64)
	if err != nil {
		logger.Error("Verifying email error", "code", verificationCodeDecrypt)
		return errors.New("invalid or expired url")
	}
	expAt := time.Unix(ts, 0)
	if time.Now().After(expAt) {
		return errors.New("invalid or expired url")
	}

	getPlayer, err := s.playerRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Verifying email error", err)
		return errors.New("failed to get player by email")
	}

	if getPlayer.IsVerified {
		logger.Warn("verify email err", slog.Any("err", "email verified already"))
		return errors.New("invalid or expired url")
	}

	if err := s.playerRepo.UpdateEmailVerification(ctx, getPlayer.ID, true); err != nil {
		logger.Error("Verify email err", err)
		return err
	}

	return nil
}

// GetPlayerByID retrieves a player by ID, serving repeated profile reads
// from the cache.
func (s *playerService) GetPlayerByID(ctx context.Context, id uint) (domain.Player, error) {
	player, err := cache.GetOrCreate(ctx, s.cache, cache.PlayerKey(id), s.playerTTL,
		func(ctx context.Context) (domain.Player, error) {
			return s.playerRepo.FindByID(ctx, id)
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Player{}, ErrPlayerNotFound
		}
		logger.Error("Failed to get player by ID", err)
		return domain.Player{}, err
	}

	player.Password = ""
	return player, nil
}

// UpdatePlayer updates player profile information
func (s *playerService) UpdatePlayer(ctx context.Context, id uint, updateData *domain.Player) (domain.Player, error) {
	existingPlayer, err := s.playerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Player{}, ErrPlayerNotFound
		}
		logger.Error("Player not found for update", err)
		return domain.Player{}, err
	}

	if updateData.FullName != "" {
		existingPlayer.FullName = updateData.FullName
	}

	if updateData.Password != "" {
		if err := s.validate.Var(updateData.Password, "required,min=6"); err != nil {
			logger.Error("Invalid password", err)
			return domain.Player{}, errors.New("password must be at least 6 characters")
		}

		passwordHash, err := utils.HashPassword(updateData.Password)
		if err != nil {
			logger.Error("Failed to hash password", err)
			return domain.Player{}, errors.New("failed to hash password")
		}
		existingPlayer.Password = string(passwordHash)
	}

	if updateData.Role != "" && !validRoles[updateData.Role] {
		return domain.Player{}, errors.New("invalid role")
	}

	if err := s.playerRepo.Update(ctx, &existingPlayer); err != nil {
		logger.Error("Failed to update player", err)
		return domain.Player{}, err
	}

	s.cache.Invalidate(ctx, cache.PlayerKey(id))

	existingPlayer.Password = ""
	return existingPlayer, nil
}

// UpdateSegment reclassifies a player. The cached profile and feature
// snapshot both carry the segment, so both entries are dropped.
func (s *playerService) UpdateSegment(ctx context.Context, id uint, segment domain.Segment) error {
	if !segment.Valid() {
		return fmt.Errorf("invalid segment: %s", segment)
	}

	if err := s.playerRepo.UpdateSegment(ctx, id, segment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlayerNotFound
		}
		logger.Error("Failed to update segment", err)
		return err
	}

	s.cache.Invalidate(ctx, cache.PlayerKey(id), cache.PlayerFeaturesKey(id))

	return nil
}
