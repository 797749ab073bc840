package cursor

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/theplant/listing"
)

func generateGCMKey(length int) ([]byte, error) {
	key := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Wrap(err, "could not generate key")
	}
	return key, nil
}

func TestSealOpen(t *testing.T) {
	gcmKey, err := generateGCMKey(32)
	require.NoError(t, err)
	gcm, err := NewGCM(gcmKey)
	require.NoError(t, err)

	plain, err := EncodeName(NameCursor{Name: "/YSS/SIMULATOR/Voltage"})
	require.NoError(t, err)

	sealed, err := seal(gcm, plain)
	require.NoError(t, err)
	require.NotEqual(t, plain, sealed)

	again, err := seal(gcm, plain)
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonce must differ between seals")

	opened, err := open(gcm, sealed)
	require.NoError(t, err)
	require.Equal(t, plain, opened)

	data, err := base64.RawURLEncoding.DecodeString(sealed)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	tests := []struct {
		name   string
		sealed string
		reason string
	}{
		{name: "tampered", sealed: base64.RawURLEncoding.EncodeToString(data), reason: "could not open sealed cursor"},
		{name: "too short", sealed: base64.RawURLEncoding.EncodeToString([]byte("abc")), reason: "sealed cursor too short"},
		{name: "not base64", sealed: "***", reason: "not base64url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := open(gcm, tt.sealed)
			var target *InvalidCursorError
			require.ErrorAs(t, err, &target)
			require.Equal(t, tt.reason, target.Reason)
		})
	}

	_, err = NewGCM([]byte("short"))
	require.Error(t, err)
}

func TestGCMHook(t *testing.T) {
	gcmKey, err := generateGCMKey(16)
	require.NoError(t, err)
	gcm, err := NewGCM(gcmKey)
	require.NoError(t, err)

	p := listing.New(
		NewNameAdapter(namedItems, namedKey, nil),
		listing.PrependCursorHook(GCM[namedItem](gcm)),
	)
	ctx := context.Background()

	conn, err := p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(2)})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)
	_, err = DecodeName(*conn.PageInfo.EndCursor)
	require.Error(t, err, "sealed cursors are opaque")

	conn, err = p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(2), After: conn.PageInfo.EndCursor})
	require.NoError(t, err)
	require.Equal(t, []string{"Altitude", "battery"}, names(conn.Nodes))

	plain, err := EncodeName(NameCursor{Name: "/YSS/SIMULATOR/Altitude"})
	require.NoError(t, err)
	_, err = p.Paginate(ctx, &listing.PaginateRequest[namedItem]{First: lo.ToPtr(2), After: &plain})
	var target *InvalidCursorError
	require.ErrorAs(t, err, &target)
}

func TestHooks(t *testing.T) {
	cfg := &listing.Config{DefaultLimit: 2, MaxLimit: 3}
	hooks, err := Hooks[namedItem](cfg)
	require.NoError(t, err)
	require.Len(t, hooks, 1)

	p := listing.New(NewNameAdapter(namedItems, namedKey, nil), hooks...)
	conn, err := p.Paginate(context.Background(), &listing.PaginateRequest[namedItem]{})
	require.NoError(t, err)
	require.Len(t, conn.Nodes, 2)
	_, err = DecodeName(*conn.PageInfo.EndCursor)
	require.NoError(t, err)

	gcmKey, err := generateGCMKey(32)
	require.NoError(t, err)
	cfg.CursorKey = base64.StdEncoding.EncodeToString(gcmKey)
	hooks, err = Hooks[namedItem](cfg)
	require.NoError(t, err)
	require.Len(t, hooks, 2)

	p = listing.New(NewNameAdapter(namedItems, namedKey, nil), hooks...)
	conn, err = p.Paginate(context.Background(), &listing.PaginateRequest[namedItem]{First: lo.ToPtr(10)})
	require.NoError(t, err)
	require.Len(t, conn.Nodes, 3)
	_, err = DecodeName(*conn.PageInfo.EndCursor)
	require.Error(t, err)

	cfg.CursorKey = base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = Hooks[namedItem](cfg)
	require.Error(t, err)
}
