package auth

import (
	"context"
	"log"
	"strings"
	"time"

	"gadgethub/globals"
	"gadgethub/middleware"
	"gadgethub/models"
	"gadgethub/users"
	"gadgethub/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const codeLength = 6

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=7"`
	Password string `json:"password" validate:"required,min=6"`
}

type VerifyRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required"`
}

type ResendRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Method     string `json:"method" validate:"omitempty,oneof=email phone"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type Service struct {
	users    users.Store
	tokens   *middleware.Tokens
	notifier Notifier
	codeTTL  time.Duration
	now      func() time.Time
}

func NewService(store users.Store, tokens *middleware.Tokens, notifier Notifier, codeTTL time.Duration) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{users: store, tokens: tokens, notifier: notifier, codeTTL: codeTTL, now: time.Now}
}

// Register creates an unverified user and sends the first code by email.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeIdentifier(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	taken, err := s.users.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": in.Email},
		bson.M{"phone": in.Phone},
	}})
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, users.ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	code, expires := s.newCode(now)
	u := &models.User{
		ID:                      primitive.NewObjectID(),
		Name:                    in.Name,
		Email:                   in.Email,
		Phone:                   in.Phone,
		Password:                string(hash),
		Role:                    globals.RoleUser,
		VerificationCode:        code,
		VerificationCodeExpires: &expires,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}

	s.deliver(ctx, ChannelEmail, u.Email, code)
	return u, nil
}

func (s *Service) Verify(ctx context.Context, in VerifyRequest) (*models.User, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.lookup(ctx, in.Identifier)
	if err != nil {
		return nil, err
	}
	if u.IsVerified {
		return u, nil
	}

	now := s.now().UTC()
	if u.VerificationCode == "" || u.VerificationCode != strings.TrimSpace(in.Code) {
		return nil, utils.Validation("Invalid verification code")
	}
	if u.VerificationCodeExpires == nil || now.After(*u.VerificationCodeExpires) {
		return nil, utils.Validation("Verification code expired")
	}

	updated, err := s.users.UpdateOne(ctx, users.ByID(u.ID), bson.M{
		"isVerified":              true,
		"verifiedAt":              now,
		"verificationCode":        "",
		"verificationCodeExpires": nil,
		"updatedAt":               now,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, utils.NotFound("User not found")
	}
	return updated, nil
}

// ResendCode issues a fresh code, replacing any previous one.
func (s *Service) ResendCode(ctx context.Context, in ResendRequest) error {
	if err := utils.ValidateStruct(in); err != nil {
		return err
	}
	u, err := s.lookup(ctx, in.Identifier)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return utils.Validation("User is already verified")
	}

	now := s.now().UTC()
	code, expires := s.newCode(now)
	if _, err := s.users.UpdateOne(ctx, users.ByID(u.ID), bson.M{
		"verificationCode":        code,
		"verificationCodeExpires": expires,
		"updatedAt":               now,
	}); err != nil {
		return err
	}

	channel, to := ChannelEmail, u.Email
	if in.Method == ChannelPhone {
		channel, to = ChannelPhone, u.Phone
	}
	s.deliver(ctx, channel, to, code)
	return nil
}

func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResult, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.users.FindOne(ctx, users.ByIdentifier(normalizeIdentifier(in.Identifier)))
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		return nil, utils.Unauthorized("Invalid credentials")
	}
	if !u.IsVerified {
		return nil, utils.Forbidden("Account not verified")
	}

	token, exp, err := s.tokens.Issue(u.ID.Hex(), u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims *middleware.Claims) error {
	if claims == nil {
		return utils.Unauthorized("Missing token")
	}
	return s.tokens.Revoke(ctx, claims)
}

// CreateAdmin inserts a verified admin account. Used by the CLI.
func (s *Service) CreateAdmin(ctx context.Context, in RegisterRequest) (*models.User, error) {
	in.Email = normalizeIdentifier(in.Email)
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &models.User{
		ID:         primitive.NewObjectID(),
		Name:       strings.TrimSpace(in.Name),
		Email:      in.Email,
		Phone:      strings.TrimSpace(in.Phone),
		Password:   string(hash),
		Role:       globals.RoleAdmin,
		IsVerified: true,
		VerifiedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) lookup(ctx context.Context, identifier string) (*models.User, error) {
	u, err := s.users.FindOne(ctx, users.ByIdentifier(normalizeIdentifier(identifier)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, utils.NotFound("User not found")
	}
	return u, nil
}

func (s *Service) newCode(now time.Time) (string, time.Time) {
	return utils.GenerateRandomDigitString(codeLength), now.Add(s.codeTTL)
}

// deliver never fails the request; the user can ask for a resend.
func (s *Service) deliver(ctx context.Context, channel, to, code string) {
	if err := s.notifier.SendCode(ctx, channel, to, code); err != nil {
		log.Printf("verification code delivery to %s failed: %v", to, err)
	}
}

// emails are stored lowercased, phones as typed.
func normalizeIdentifier(id string) string {
	id = strings.TrimSpace(id)
	if strings.Contains(id, "@") {
		return strings.ToLower(id)
	}
	return id
}
