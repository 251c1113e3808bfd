package handler

import (
	"context"
	"fmt"
	"strings"

	"pulsechat/internal/app/account"
	"pulsechat/internal/app/chat"
	"pulsechat/internal/app/storage"
	"pulsechat/internal/configs"
	"pulsechat/internal/pkg/logx"
)

// AppDeps carries the shared dependencies injected into every handler.
type AppDeps struct {
	Config   *configs.AppConfig
	Chat     *chat.Service
	Accounts *account.Store
	Storage  storage.Service
}

// AvatarDownloadURL resolves a stored avatar key to a short-lived presigned
// GET URL. The bucket is private; clients never read objects directly. An
// empty key, or a presign failure, maps to an empty URL so profile reads
// degrade rather than fail.
func (d *AppDeps) AvatarDownloadURL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}

	url, err := d.Storage.PresignDownload(ctx, key, storage.AvatarURLDuration)
	if err != nil {
		logx.Warn("failed to presign avatar download", "key", key, "error", err)
		return ""
	}

	return url
}

// NormalizeAssetKey reduces a client-supplied avatar value to the stored key.
// Clients are expected to send back the bare key issued at presign time;
// URLs are rejected since the bucket has no stable public addresses.
func (d *AppDeps) NormalizeAssetKey(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	if strings.Contains(value, "://") {
		return "", fmt.Errorf("avatar must be referenced by its storage key, not a URL")
	}

	return strings.TrimLeft(value, "/"), nil
}
