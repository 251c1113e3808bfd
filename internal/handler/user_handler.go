/*
Package handler provides the HTTP handlers and routing setup for the server.

This file holds the authenticated profile endpoints: reading and updating the
profile, and issuing presigned avatar upload URLs.
*/
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"pulsechat/internal/app/account"
	"pulsechat/internal/app/storage"
	"pulsechat/internal/pkg/auth/jwt"
	"pulsechat/internal/pkg/errs"
	"pulsechat/internal/pkg/logx"
	"pulsechat/internal/pkg/req"
	"pulsechat/internal/pkg/resp"
)

func profileResponse(d *AppDeps, r *http.Request, u account.User) map[string]any {
	return map[string]any{
		"username":  u.Username,
		"nickname":  u.Nickname,
		"avatar":    d.AvatarDownloadURL(r.Context(), u.AvatarKey),
		"createdAt": u.CreatedAt,
	}
}

// requireAccount resolves the authenticated request to its stored account.
func requireAccount(deps *AppDeps, w http.ResponseWriter, r *http.Request) (account.User, bool) {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
		return account.User{}, false
	}

	user, err := deps.Accounts.GetByUsername(r.Context(), identity.Username)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return account.User{}, false
		}

		logx.Error(err, "failed to load account", "username", identity.Username)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return account.User{}, false
	}

	return user, true
}

// HandleGetProfile returns the authenticated account's profile.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireAccount(deps, w, r)
		if !ok {
			return
		}

		resp.RespondSuccess(w, r, profileResponse(deps, r, user))
	}
}

type UpdateProfileInput struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

// HandleUpdateProfile updates the nickname and avatar of the authenticated
// account. The avatar value may be a stored key or the full public URL.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireAccount(deps, w, r)
		if !ok {
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		nickname := strings.TrimSpace(input.Nickname)
		if nickname == "" || utf8.RuneCountInString(nickname) > 30 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		avatarKey, err := deps.NormalizeAssetKey(input.Avatar)
		if err != nil {
			logx.Warn("profile update rejected: foreign avatar URL", "value", input.Avatar)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		updated, err := deps.Accounts.UpdateProfile(r.Context(), user.ID, nickname, avatarKey)
		if err != nil {
			logx.Error(err, "failed to update profile", "user_id", user.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		// An abandoned old avatar is garbage; removal failures only cost
		// bucket space.
		if user.AvatarKey != "" && user.AvatarKey != avatarKey {
			if err := deps.Storage.Delete(r.Context(), user.AvatarKey); err != nil {
				logx.Warn("failed to delete replaced avatar object", "key", user.AvatarKey, "error", err)
			}
		}

		resp.RespondSuccess(w, r, profileResponse(deps, r, updated))
	}
}

type PresignAvatarInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatar validates the declared upload and returns a short-lived
// presigned PUT URL together with the key the client should save back through
// the profile endpoint.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireAccount(deps, w, r)
		if !ok {
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateFileSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateFileType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		ext := strings.ToLower(filepath.Ext(input.FileName))
		key := fmt.Sprintf("avatars/%s/%s%s", user.ID, uuid.NewString(), ext)

		uploadURL, err := deps.Storage.PresignUpload(
			r.Context(),
			key,
			strings.ToLower(input.MimeType),
			input.FileSize,
			storage.PresignedURLDuration,
		)
		if err != nil {
			logx.Error(err, "failed to presign avatar upload", "user_id", user.ID, "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
			"expiresIn": int(storage.PresignedURLDuration.Seconds()),
		})
	}
}
