/*
This file contains the image upload handlers. Clients never stream file bytes
through the server: they request a pre-signed URL, upload directly to object
storage, and reference the resulting public URL in a profile or image message.
*/
package handler

import (
	"net/http"

	"pairchat/internal/app/chat"
	"pairchat/internal/pkg/auth/jwt"
	"pairchat/internal/pkg/errs"
	"pairchat/internal/pkg/logx"
	"pairchat/internal/pkg/randx"
	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// Upload key prefixes by purpose.
const (
	uploadPrefixAvatar = "avatars"
	uploadPrefixChat   = "chat"
)

// presignUploadRequest is the expected JSON body for upload URL requests.
type presignUploadRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`

	// Purpose selects the storage prefix: "avatar" or "chat". Defaults to "chat".
	Purpose string `json:"purpose"`
}

// presignUploadResponse carries the minted upload URL and the key the client
// should reference once the upload completes.
type presignUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
	PublicURL string `json:"publicUrl"`
}

// HandlePresignUpload validates the declared file metadata and mints a
// pre-signed PUT URL for a direct-to-storage upload.
func HandlePresignUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input presignUploadRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := chat.ValidateImageSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := chat.ValidateImageType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		prefix := uploadPrefixChat
		if input.Purpose == "avatar" {
			prefix = uploadPrefixAvatar
		}

		key := randx.UploadKey(prefix, input.FileName)

		uploadURL, err := deps.StorageService.PresignUpload(
			r.Context(),
			key,
			input.MimeType,
			input.FileSize,
			chat.PresignedURLDuration,
		)
		if err != nil {
			logx.Error(err, "Failed to presign upload", "key", key, "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		logx.Info("Presigned upload URL issued", "key", key, "user_id", identity.ID)

		resp.RespondSuccess(w, r, presignUploadResponse{
			UploadURL: uploadURL,
			FileKey:   key,
			PublicURL: deps.FullAssetURL(key),
		})
	}
}

// HandlePresignDownload redirects the caller to a short-lived pre-signed GET
// URL for the requested object key.
func HandlePresignDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		key := r.URL.Query().Get("key")
		if key == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		downloadURL, err := deps.StorageService.PresignDownload(r.Context(), key, chat.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to presign download", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, downloadURL, http.StatusTemporaryRedirect)
	}
}
