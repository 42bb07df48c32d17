package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateETag derives a weak validator from a document id, its revision timestamp and any
// extra state the representation depends on.
func GenerateETag(id primitive.ObjectID, updatedAt time.Time, extra ...string) string {
	src := fmt.Sprintf("%s:%d", id.Hex(), updatedAt.UnixNano())
	if len(extra) > 0 {
		src += ":" + strings.Join(extra, ":")
	}
	sum := sha1.Sum([]byte(src))
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}
