package cursor

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/theplant/listing"
)

func seal(gcm cipher.AEAD, cursor string) (string, error) {
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "could not generate nonce")
	}
	sealed := gcm.Seal(nonce, nonce, []byte(cursor), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func open(gcm cipher.AEAD, sealed string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", &InvalidCursorError{Reason: "not base64url", Err: err}
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", &InvalidCursorError{Reason: "sealed cursor too short"}
	}
	nonce, cipherText := data[:nonceSize], data[nonceSize:]
	cursor, err := gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return "", &InvalidCursorError{Reason: "could not open sealed cursor", Err: err}
	}
	return string(cursor), nil
}

// NewGCM creates an AES-GCM cipher. key must be 16, 24 or 32 bytes.
// Concurrent safe: https://github.com/golang/go/issues/41689
func NewGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "could not create cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "could not create AEAD")
	}
	return gcm, nil
}

// GCM seals the cursors handed out so clients cannot read or forge them.
func GCM[T any](gcm cipher.AEAD) func(next listing.ApplyCursorsFunc[T]) listing.ApplyCursorsFunc[T] {
	return func(next listing.ApplyCursorsFunc[T]) listing.ApplyCursorsFunc[T] {
		return func(ctx context.Context, req *listing.ApplyCursorsRequest) (*listing.ApplyCursorsResponse[T], error) {
			if req.After != nil {
				cursor, err := open(gcm, *req.After)
				if err != nil {
					return nil, err
				}
				req.After = lo.ToPtr(cursor)
			}

			rsp, err := next(ctx, req)
			if err != nil {
				return nil, err
			}

			for _, edge := range rsp.LazyEdges {
				cursor := edge.Cursor
				edge.Cursor = func(ctx context.Context) (string, error) {
					c, err := cursor(ctx)
					if err != nil {
						return "", err
					}
					return seal(gcm, c)
				}
			}
			return rsp, nil
		}
	}
}

// Hooks returns the paginator hooks cfg asks for, including cursor sealing
// when a cursor key is configured.
func Hooks[T any](cfg *listing.Config) ([]func(next listing.Paginator[T]) listing.Paginator[T], error) {
	hooks := listing.Hooks[T](cfg)
	key, err := cfg.CursorKeyBytes()
	if err != nil {
		return nil, err
	}
	if key != nil {
		gcm, err := NewGCM(key)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, listing.PrependCursorHook(GCM[T](gcm)))
	}
	return hooks, nil
}
