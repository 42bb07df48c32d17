package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "versioned_with_folder",
			url:  "https://res.cloudinary.com/demo/image/upload/v1234567890/lostfound/items/abc123.jpg",
			want: "lostfound/items/abc123",
		},
		{
			name: "unversioned",
			url:  "https://res.cloudinary.com/demo/image/upload/lostfound/proofs/p1.png",
			want: "lostfound/proofs/p1",
		},
		{
			name: "file_named_like_version",
			url:  "https://res.cloudinary.com/demo/image/upload/v42.jpg",
			want: "v42",
		},
		{name: "not_cloudinary", url: "https://example.com/a/b.jpg", wantErr: true},
		{name: "nothing_after_upload", url: "https://res.cloudinary.com/demo/image/upload", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := extractPublicID(tc.url)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNoopImageStore(t *testing.T) {
	var store ImageStore = NoopImageStore{}

	_, err := store.Upload(context.Background(), strings.NewReader("x"), FolderItemImages)
	require.ErrorIs(t, err, ErrUploadsDisabled)
	require.NoError(t, store.Delete(context.Background(), "https://res.cloudinary.com/x/image/upload/a.jpg"))
}

func TestGenerateETag(t *testing.T) {
	id := primitive.NewObjectID()
	ts := time.Now()

	a := GenerateETag(id, ts)
	require.Equal(t, a, GenerateETag(id, ts))
	require.NotEqual(t, a, GenerateETag(id, ts.Add(time.Millisecond)))
	require.True(t, strings.HasPrefix(a, `W/"`))
	require.NotEqual(t, GenerateETag(id, ts, "active"), GenerateETag(id, ts, "expired"))
}

func TestTokenRefusesEmptySecret(t *testing.T) {
	_, err := GenerateToken("", "64b000000000000000000001", "admin")
	require.ErrorIs(t, err, ErrEmptySecret)

	// a token minted elsewhere with an empty HS256 key must not verify
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "64b000000000000000000001", Role: "admin"}).
		SignedString([]byte{})
	require.NoError(t, err)
	_, err = ValidateToken("", forged)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("test-secret", "64b000000000000000000001", "moderator")
	require.NoError(t, err)

	claims, err := ValidateToken("test-secret", token)
	require.NoError(t, err)
	require.Equal(t, "64b000000000000000000001", claims.UserID)
	require.Equal(t, "moderator", claims.Role)

	diff := time.Until(claims.ExpiresAt.Time) - TokenExpiry
	require.Less(t, diff.Abs(), 5*time.Second)
}

func TestValidateToken_Rejects(t *testing.T) {
	token, err := GenerateToken("secret1", "u1", "user")
	require.NoError(t, err)

	_, err = ValidateToken("secret2", token)
	require.Error(t, err)

	_, err = ValidateToken("secret1", "not-a-token")
	require.Error(t, err)
}
