/*
This file contains the account handlers: registration, login, and the
current-identity endpoint. Passwords are hashed with bcrypt and successful
authentication issues a signed JWT carrying the account identity.
*/
package handler

import (
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pairchat/internal/app/db"
	"pairchat/internal/app/user"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

const (
	// MinPasswordLength is the minimum allowed password length.
	MinPasswordLength = 6

	// MaxPasswordLength is the maximum allowed password length.
	MaxPasswordLength = 72
)

var (
	// usernameRegex restricts usernames to lowercase letters, digits and underscores.
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]{4,20}$`)

	// emailRegex performs a coarse shape check; the store's unique constraint is
	// the real gatekeeper.
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// registerRequest is the expected JSON body for the registration endpoint.
type registerRequest struct {
	Username     string `json:"userName"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Password     string `json:"password"`
	ProfileImage string `json:"profileImage"`
}

// loginRequest is the expected JSON body for the login endpoint.
type loginRequest struct {
	Username string `json:"userName"`
	Password string `json:"password"`
}

// authResponse is returned on successful registration or login.
type authResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func validatePassword(password string) *errs.CustomError {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return errs.NewError(errs.ErrInvalidPassword)
	}
	return nil
}

// HandleRegister creates a new account and returns a signed identity token.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input registerRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Username = strings.ToLower(strings.TrimSpace(input.Username))
		input.Email = strings.ToLower(strings.TrimSpace(input.Email))
		input.FullName = strings.TrimSpace(input.FullName)

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if !emailRegex.MatchString(input.Email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if customErr := validatePassword(input.Password); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.FullName == "" {
			input.FullName = input.Username
		}

		existing, err := deps.Users.FindByName(r.Context(), input.Username)
		if err != nil {
			logx.Error(err, "Failed to check username availability", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if existing != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			logx.Error(err, "Failed to hash password")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		created, err := deps.Users.Create(r.Context(), user.User{
			Username:     input.Username,
			Email:        input.Email,
			FullName:     input.FullName,
			ProfileImage: input.ProfileImage,
			Role:         user.RoleUser,
		}, string(hash))
		if err != nil {
			// The email (or a concurrently registered username) may still trip
			// the unique constraint after the availability check above.
			if db.IsUniqueViolation(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "Failed to create user", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		token, err := jwt.GenerateToken(&jwt.Payload{
			ID:       created.ID,
			Username: created.Username,
			Role:     created.Role,
		}, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to sign identity token", "user_id", created.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("User registered", "user_id", created.ID, "username", created.Username)

		resp.RespondSuccess(w, r, authResponse{Token: token, User: created})
	}
}

// HandleLogin verifies credentials and returns a signed identity token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input loginRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Username = strings.ToLower(strings.TrimSpace(input.Username))

		// Accept either the username or the registered email as the login name.
		var (
			account *user.User
			err     error
		)
		if strings.Contains(input.Username, "@") {
			account, err = deps.Users.FindByEmail(r.Context(), input.Username)
		} else {
			account, err = deps.Users.FindByName(r.Context(), input.Username)
		}
		if err != nil {
			logx.Error(err, "Failed to look up account for login", "login", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if account == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		hash, err := deps.Users.PasswordHash(r.Context(), account.ID)
		if err != nil {
			logx.Error(err, "Failed to load password hash", "user_id", account.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := jwt.GenerateToken(&jwt.Payload{
			ID:       account.ID,
			Username: account.Username,
			Role:     account.Role,
		}, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to sign identity token", "user_id", account.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("User logged in", "user_id", account.ID)

		resp.RespondSuccess(w, r, authResponse{Token: token, User: account})
	}
}

// HandleMe returns the account record for the authenticated identity.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		account, err := deps.Users.FindByID(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "Failed to load current account", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if account == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		account.ProfileImage = deps.FullAssetURL(account.ProfileImage)

		resp.RespondSuccess(w, r, account)
	}
}
