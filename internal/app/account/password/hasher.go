package password

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/errors"
	"github.com/alexedwards/argon2id"
)

var DefaultParams = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type Hasher interface {
	Hash(plain string) (string, error)

	// Verify reports whether plain matches hash. Legacy unsalted MD5 hex
	// digests are still accepted so old rows can log in once.
	Verify(plain, hash string) (bool, error)

	// NeedsUpgrade is true for any hash not produced by Hash.
	NeedsUpgrade(hash string) bool
}

type Argon2Hasher struct {
	pepper string
	params *argon2id.Params
}

func NewArgon2Hasher(pepper string, params *argon2id.Params) *Argon2Hasher {
	if params == nil {
		params = DefaultParams
	}
	return &Argon2Hasher{pepper: pepper, params: params}
}

func (h *Argon2Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", customErrors.NewInvalidArgument("password cannot be empty")
	}

	hash, err := argon2id.CreateHash(plain+h.pepper, h.params)
	if err != nil {
		return "", customErrors.WrapInternal(err, "hash password")
	}
	return hash, nil
}

func (h *Argon2Hasher) Verify(plain, hash string) (bool, error) {
	if isLegacy(hash) {
		sum := md5.Sum([]byte(plain))
		want := strings.ToLower(hash)
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(want)) == 1, nil
	}

	ok, err := argon2id.ComparePasswordAndHash(plain+h.pepper, hash)
	if err != nil {
		return false, customErrors.WrapInternal(err, "compare password")
	}
	return ok, nil
}

func (h *Argon2Hasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, "$argon2id$")
}

func isLegacy(hash string) bool {
	if len(hash) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
