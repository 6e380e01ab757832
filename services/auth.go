package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/database"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/models"
	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgUserCreated = "User created successfully"
	MsgUserExists  = "User already exists"

	tokenIssuer = "table-reservations"
)

// Claims are carried by the access tokens issued on sign in.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService signs users up and issues HS256 access tokens.
type AuthService struct {
	store  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(store UserStore, secret string) *AuthService {
	return &AuthService{
		store:  store,
		secret: []byte(secret),
		ttl:    24 * time.Hour,
		now:    time.Now,
	}
}

type signUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignUp creates a user. An already registered email is not an error; the
// returned message says so instead.
func (a *AuthService) SignUp(ctx context.Context, firstName, lastName, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateStruct(signUpInput{Email: email, Password: password}); err != nil {
		return "", err
	}

	_, err := a.store.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return MsgUserExists, nil
	case !errors.Is(err, database.ErrRecordNotFound):
		return "", storeError("find user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     email,
		Password:  string(hashed),
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return MsgUserExists, nil
		}
		return "", storeError("create user", err)
	}

	utils.InfoLogger.WithField("user_id", user.ID).Info("New user registered")
	return MsgUserCreated, nil
}

// SignIn checks the credentials and returns a signed access token.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := a.store.FindUserByEmail(ctx, email)
	if errors.Is(err, database.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", storeError("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := a.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates signature, algorithm and expiry.
func (a *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
