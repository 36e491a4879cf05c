package planner

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// namespace scopes generated object IDs to this tool.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Cortexa-LLC/mcp/src/slidesmith"))

// fingerprint returns the hex BLAKE3 digest of v's JSON encoding.
func fingerprint(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(err.Error())
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// idGen derives stable object IDs for one slide.
type idGen struct {
	base string
}

func newIDGen(salt string, index int, slideFingerprint string) idGen {
	return idGen{base: strings.Join([]string{salt, strconv.Itoa(index), slideFingerprint}, "/")}
}

// id returns an object ID valid for the presentation service: a letter
// prefix and 32 hex digits.
func (g idGen) id(parts ...string) string {
	u := uuid.NewSHA1(namespace, []byte(g.base+"/"+strings.Join(parts, "/")))
	return "sm_" + strings.ReplaceAll(u.String(), "-", "")
}
